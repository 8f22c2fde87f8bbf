package entity

import (
	"context"
	"fmt"
	"log"

	"github.com/looplab/fsm"
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/component"
)

// StateEvent はユニットのライフサイクル状態機械のイベント名です。
const (
	EventSelect        = "select"
	EventChargeFull    = "charge_full"
	EventExecute       = "execute"
	EventCancel        = "cancel"
	EventAbandon       = "abandon"
	EventCooldownFull  = "cooldown_full"
	EventInitialSelect = "initial_select"
	EventBreak         = "break"
)

// newLifecycleFSM はユニット1機分のライフサイクル状態機械を生成します。
// 破壊(broken)は終端状態で、どの状態からでも遷移できます。
func newLifecycleFSM(initial core.StateType) *fsm.FSM {
	return fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: EventSelect, Src: []string{string(core.StateReadySelect), string(core.StateCooldownComplete)}, Dst: string(core.StateSelectedCharging)},
			{Name: EventChargeFull, Src: []string{string(core.StateSelectedCharging)}, Dst: string(core.StateReadyExecute)},
			{Name: EventExecute, Src: []string{string(core.StateReadyExecute)}, Dst: string(core.StateCharging)},
			{Name: EventCancel, Src: []string{string(core.StateSelectedCharging), string(core.StateReadyExecute)}, Dst: string(core.StateCharging)},
			{Name: EventAbandon, Src: []string{string(core.StateReadySelect), string(core.StateCooldownComplete)}, Dst: string(core.StateCharging)},
			{Name: EventCooldownFull, Src: []string{string(core.StateCharging)}, Dst: string(core.StateCooldownComplete)},
			{Name: EventInitialSelect, Src: []string{string(core.StateCharging)}, Dst: string(core.StateReadySelect)},
			{Name: EventBreak, Src: []string{
				string(core.StateCharging),
				string(core.StateReadySelect),
				string(core.StateSelectedCharging),
				string(core.StateReadyExecute),
				string(core.StateCooldownComplete),
			}, Dst: string(core.StateBroken)},
		},
		fsm.Callbacks{},
	)
}

// FireStateEvent はユニットの状態遷移イベントを発火します。
func FireStateEvent(entry *donburi.Entry, event string) error {
	state := component.StateComponent.Get(entry)
	if err := state.FSM.Event(context.Background(), event); err != nil {
		name := component.SettingsComponent.Get(entry).Name
		return fmt.Errorf("%s の状態遷移 %s に失敗しました (現在: %s): %w", name, event, state.FSM.Current(), err)
	}
	return nil
}

// InitializeBattleWorld は戦闘ワールドのECSエンティティを初期化します。
// playerTeam に core.TeamNone を渡すと全ユニットがAI制御になります。
func InitializeBattleWorld(world donburi.World, gameData *core.GameData, gdm *data.GameDataManager, playerTeam core.TeamID) error {
	EnsureWorldStateEntity(world)
	return CreateUnitEntities(world, gameData, gdm, playerTeam)
}

// CreateUnitEntities は編成データからユニットエンティティを生成します。
func CreateUnitEntities(world donburi.World, gameData *core.GameData, gdm *data.GameDataManager, playerTeam core.TeamID) error {
	for _, loadout := range gameData.Units {
		entry := world.Entry(world.Create(
			component.SettingsComponent,
			component.PartsComponent,
			component.MedalComponent,
			component.StateComponent,
			component.GaugeComponent,
			component.BattleLogComponent,
			component.ActionIntentComponent,
			component.TargetComponent,
		))
		component.SettingsComponent.SetValue(entry, component.Settings{
			ID:        loadout.ID,
			Name:      loadout.Name,
			Team:      loadout.Team,
			IsLeader:  loadout.IsLeader,
			DrawIndex: loadout.DrawIndex,
		})

		partsInstanceMap := make(map[core.PartSlotKey]*core.PartInstanceData)
		partIDMap := map[core.PartSlotKey]string{
			core.PartSlotHead:     loadout.HeadID,
			core.PartSlotRightArm: loadout.RightArmID,
			core.PartSlotLeftArm:  loadout.LeftArmID,
			core.PartSlotLegs:     loadout.LegsID,
		}
		for slot, partID := range partIDMap {
			partDef, defFound := gdm.GetPartDefinition(partID)
			if !defFound {
				return fmt.Errorf("ユニット %s のパーツ定義 %s が見つかりません", loadout.ID, partID)
			}
			partsInstanceMap[slot] = &core.PartInstanceData{
				DefinitionID:   partDef.ID,
				CurrentHP:      partDef.MaxHP,
				GuardRemaining: partDef.GuardCount,
			}
		}
		component.PartsComponent.SetValue(entry, component.PartsData{Map: partsInstanceMap})

		medalDef, medalFound := gdm.GetMedalDefinition(loadout.MedalID)
		if !medalFound {
			return fmt.Errorf("ユニット %s のメダル定義 %s が見つかりません", loadout.ID, loadout.MedalID)
		}
		component.MedalComponent.SetValue(entry, component.Medal{
			ID:          medalDef.ID,
			Name:        medalDef.Name,
			Personality: medalDef.Personality,
		})

		speed := loadout.SpeedMultiplier
		if speed <= 0 {
			speed = 1.0
		}
		component.StateComponent.SetValue(entry, component.State{FSM: newLifecycleFSM(core.StateCharging)})
		component.GaugeComponent.SetValue(entry, component.Gauge{Max: 100, SpeedMultiplier: speed})
		component.BattleLogComponent.SetValue(entry, component.BattleLog{})
		component.ActionIntentComponent.SetValue(entry, component.ActionIntent{})
		component.TargetComponent.SetValue(entry, component.Target{})

		if loadout.Team == playerTeam {
			donburi.Add(entry, component.PlayerControlComponent, &component.PlayerControl{})
		}
	}
	log.Printf("%d体のユニットエンティティを生成しました。", len(gameData.Units))
	return nil
}
