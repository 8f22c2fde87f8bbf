package system

import (
	"testing"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/component"
	"medasim/ecs/entity"
)

type testUnit struct {
	id       string
	team     core.TeamID
	leader   bool
	medal    string
	head     string
	rightArm string
	leftArm  string
	legs     string
}

func testMasterData(t *testing.T) *data.GameDataManager {
	t.Helper()
	gdm := data.NewGameDataManager()
	parts := []*core.PartDefinition{
		{ID: "t_head", PartName: "テストヘッド", Type: core.PartTypeHead, Category: core.CategoryShoot, Might: 10, Success: 80, Armor: 5, MaxHP: 40, Charge: 2, Cooldown: 2},
		{ID: "t_repair", PartName: "テストリペア", Type: core.PartTypeHead, Category: core.CategoryHeal, Might: 25, Success: 60, Armor: 5, MaxHP: 40, Charge: 2, Cooldown: 2},
		{ID: "t_rifle", PartName: "テストライフル", Type: core.PartTypeRArm, Category: core.CategoryShoot, Might: 20, Success: 80, Armor: 5, MaxHP: 30, Charge: 3, Cooldown: 2},
		{ID: "t_pierce", PartName: "テストピアス", Type: core.PartTypeRArm, Category: core.CategoryShoot, Might: 12, Success: 60, Armor: 5, MaxHP: 30, Charge: 3, Cooldown: 2, Penetrates: true},
		{ID: "t_sword", PartName: "テストソード", Type: core.PartTypeLArm, Category: core.CategoryMelee, Might: 30, Success: 55, Armor: 5, MaxHP: 30, Charge: 2, Cooldown: 3},
		{ID: "t_shield", PartName: "テストシールド", Type: core.PartTypeLArm, Category: core.CategoryDefend, Might: 0, Success: 50, Armor: 10, MaxHP: 60, Charge: 2, Cooldown: 2, GuardCount: 2},
		{ID: "t_legs", PartName: "テストレッグ", Type: core.PartTypeLegs, Category: core.CategoryNone, Might: 0, Success: 0, Armor: 10, Mobility: 10, Propulsion: 5, MaxHP: 50},
	}
	for _, p := range parts {
		if err := gdm.AddPartDefinition(p); err != nil {
			t.Fatalf("AddPartDefinition(%s): %v", p.ID, err)
		}
	}
	medals := []*core.MedalDefinition{
		{ID: "m_hunter", Name: "ハンター", Personality: core.PersonalityHunter},
		{ID: "m_crusher", Name: "クラッシャー", Personality: core.PersonalityCrusher},
		{ID: "m_counter", Name: "カウンター", Personality: core.PersonalityCounter},
		{ID: "m_focus", Name: "フォーカス", Personality: core.PersonalityFocus},
		{ID: "m_random", Name: "ランダム", Personality: core.PersonalityRandom},
		{ID: "m_unknown", Name: "未知", Personality: core.Personality("のんびり")},
	}
	for _, m := range medals {
		if err := gdm.AddMedalDefinition(m); err != nil {
			t.Fatalf("AddMedalDefinition(%s): %v", m.ID, err)
		}
	}
	return gdm
}

// newTestContext は、指定の編成で戦闘ワールドを構築します。
// mutate で確率を 0/100 に固定すると判定を決定的にできます。
func newTestContext(t *testing.T, units []testUnit, mutate func(cfg *data.Config)) (*BattleContext, map[string]*donburi.Entry) {
	t.Helper()
	gdm := testMasterData(t)
	cfg := data.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	gameData := &core.GameData{}
	for i, u := range units {
		if u.medal == "" {
			u.medal = "m_random"
		}
		if u.head == "" {
			u.head = "t_head"
		}
		if u.rightArm == "" {
			u.rightArm = "t_rifle"
		}
		if u.leftArm == "" {
			u.leftArm = "t_sword"
		}
		if u.legs == "" {
			u.legs = "t_legs"
		}
		gameData.Units = append(gameData.Units, core.UnitData{
			ID:         u.id,
			Name:       u.id,
			Team:       u.team,
			IsLeader:   u.leader,
			MedalID:    u.medal,
			HeadID:     u.head,
			RightArmID: u.rightArm,
			LeftArmID:  u.leftArm,
			LegsID:     u.legs,
			DrawIndex:  i,
		})
	}

	world := donburi.NewWorld()
	if err := entity.InitializeBattleWorld(world, gameData, gdm, core.TeamNone); err != nil {
		t.Fatalf("InitializeBattleWorld: %v", err)
	}
	ctx := NewBattleContext(world, &cfg, gdm, data.NewRand(1), &NopBattleLogger{})

	entries := make(map[string]*donburi.Entry)
	query.NewQuery(filter.Contains(component.SettingsComponent)).Each(world, func(e *donburi.Entry) {
		entries[component.SettingsComponent.Get(e).ID] = e
	})
	return ctx, entries
}

// alwaysHit は命中を確定、クリティカルと防御を不発にします。
func alwaysHit(cfg *data.Config) {
	cfg.Hit.MinChance = 100
	cfg.Hit.MaxChance = 100
	cfg.Critical.MinChance = 0
	cfg.Critical.MaxChance = 0
	cfg.Defense.MinChance = 0
	cfg.Defense.MaxChance = 0
}

func setPartHP(t *testing.T, e *donburi.Entry, slot core.PartSlotKey, hp int) {
	t.Helper()
	inst := component.PartsComponent.Get(e).Map[slot]
	if inst == nil {
		t.Fatalf("スロット %s のパーツがありません", slot)
	}
	inst.CurrentHP = hp
}

func breakPart(t *testing.T, e *donburi.Entry, slot core.PartSlotKey) {
	t.Helper()
	inst := component.PartsComponent.Get(e).Map[slot]
	if inst == nil {
		t.Fatalf("スロット %s のパーツがありません", slot)
	}
	inst.CurrentHP = 0
	inst.IsBroken = true
}

// primeIntent は行動パーツとターゲットを直接設定します。
// フェーズ機械を介さずに ActionExecutor を試験するためのものです。
func primeIntent(e *donburi.Entry, partKey core.PartSlotKey, target *donburi.Entry, targetSlot core.PartSlotKey) {
	intent := component.ActionIntentComponent.Get(e)
	intent.SelectedPartKey = partKey
	tgt := component.TargetComponent.Get(e)
	if target != nil {
		tgt.TargetEntity = target.Entity()
		tgt.TargetPartSlot = targetSlot
	} else {
		tgt.TargetEntity = donburi.Entity(0)
		tgt.TargetPartSlot = ""
	}
}
