package system

import (
	"sort"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"medasim/core"
	"medasim/ecs/component"
)

// TargetSelector は、ターゲット候補の列挙と攻撃対象パーツの選定を担当します。
type TargetSelector struct {
	PartInfoProvider *PartInfoProvider
}

// GetOpponentTeam は、自チームの敵チーム ID を返します。
func (ts *TargetSelector) GetOpponentTeam(actingEntry *donburi.Entry) core.TeamID {
	settings := component.SettingsComponent.Get(actingEntry)
	if settings.Team == core.Team1 {
		return core.Team2
	}
	return core.Team1
}

// GetTargetableEnemies は、機能停止していない敵ユニットを描画順で返します。
// 描画順に固定することで、同シードでの再現性を保証します。
func (ts *TargetSelector) GetTargetableEnemies(ctx *BattleContext, actingEntry *donburi.Entry) []*donburi.Entry {
	opponentTeam := ts.GetOpponentTeam(actingEntry)
	return ts.collectTeamUnits(ctx, opponentTeam, nil)
}

// GetTargetableAllies は、機能停止していない味方ユニット(自分自身を含む)を
// 描画順で返します。支援・回復行動の対象候補です。
func (ts *TargetSelector) GetTargetableAllies(ctx *BattleContext, actingEntry *donburi.Entry) []*donburi.Entry {
	settings := component.SettingsComponent.Get(actingEntry)
	return ts.collectTeamUnits(ctx, settings.Team, nil)
}

func (ts *TargetSelector) collectTeamUnits(ctx *BattleContext, team core.TeamID, exclude *donburi.Entry) []*donburi.Entry {
	var entries []*donburi.Entry
	query.NewQuery(filter.Contains(component.SettingsComponent, component.StateComponent)).Each(ctx.World, func(entry *donburi.Entry) {
		if exclude != nil && entry.Entity() == exclude.Entity() {
			return
		}
		settings := component.SettingsComponent.Get(entry)
		if settings.Team != team {
			return
		}
		state := component.StateComponent.Get(entry)
		if state.Is(core.StateBroken) {
			return
		}
		entries = append(entries, entry)
	})
	sort.Slice(entries, func(i, j int) bool {
		return component.SettingsComponent.Get(entries[i]).DrawIndex < component.SettingsComponent.Get(entries[j]).DrawIndex
	})
	return entries
}

// TargetablePart は、攻撃対象になり得るパーツとその所持ユニットの組です。
type TargetablePart struct {
	Entry *donburi.Entry
	Slot  core.PartSlotKey
	HP    int
}

// EnumerateAttackableParts は、敵全体の破壊されていない非脚部パーツを列挙します。
// 順序はユニットの描画順、ユニット内はスロット固定順です。
func (ts *TargetSelector) EnumerateAttackableParts(ctx *BattleContext, actingEntry *donburi.Entry) []TargetablePart {
	var parts []TargetablePart
	for _, enemy := range ts.GetTargetableEnemies(ctx, actingEntry) {
		partsComp := component.PartsComponent.Get(enemy)
		for _, slot := range core.AllPartSlots {
			if slot == core.PartSlotLegs {
				continue
			}
			inst, ok := partsComp.Map[slot]
			if !ok || inst == nil || inst.IsBroken {
				continue
			}
			parts = append(parts, TargetablePart{Entry: enemy, Slot: slot, HP: inst.CurrentHP})
		}
	}
	return parts
}

// SelectRandomPartToDamage は、対象ユニットの破壊されていない非脚部パーツから
// 無作為に 1 つ選びます。候補がなければ空文字を返します。
func (ts *TargetSelector) SelectRandomPartToDamage(ctx *BattleContext, target *donburi.Entry) core.PartSlotKey {
	return ts.randomPart(ctx, target, false)
}

// SelectMeleePartToDamage は、格闘攻撃の着弾パーツを無作為に選びます。
// 射撃と異なり脚部も対象に含まれます。
func (ts *TargetSelector) SelectMeleePartToDamage(ctx *BattleContext, target *donburi.Entry) core.PartSlotKey {
	return ts.randomPart(ctx, target, true)
}

func (ts *TargetSelector) randomPart(ctx *BattleContext, target *donburi.Entry, includeLegs bool) core.PartSlotKey {
	partsComp := component.PartsComponent.Get(target)
	var candidates []core.PartSlotKey
	for _, slot := range core.AllPartSlots {
		if slot == core.PartSlotLegs && !includeLegs {
			continue
		}
		inst, ok := partsComp.Map[slot]
		if !ok || inst == nil || inst.IsBroken {
			continue
		}
		candidates = append(candidates, slot)
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[ctx.Rand.Intn(len(candidates))]
}

// SelectDefensePart は、防御発動時に身代わりとなるパーツを選びます。
// 頭部以外で残り HP が最大のパーツです。候補がなければ空文字を返します。
func (ts *TargetSelector) SelectDefensePart(target *donburi.Entry) core.PartSlotKey {
	partsComp := component.PartsComponent.Get(target)
	best := core.PartSlotKey("")
	bestHP := -1
	for _, slot := range core.AllPartSlots {
		if slot == core.PartSlotHead {
			continue
		}
		inst, ok := partsComp.Map[slot]
		if !ok || inst == nil || inst.IsBroken {
			continue
		}
		if inst.CurrentHP > bestHP {
			best = slot
			bestHP = inst.CurrentHP
		}
	}
	return best
}

// IsValidTarget は、指定ターゲットが現時点で有効かを判定します。
// ユニットが機能停止していればパーツに関わらず無効、スロット指定がある場合は
// そのパーツが存在しかつ破壊されていないことが条件です。
func IsValidTarget(targetEntry *donburi.Entry, slot core.PartSlotKey) bool {
	if targetEntry == nil || !targetEntry.Valid() {
		return false
	}
	state := component.StateComponent.Get(targetEntry)
	if state.Is(core.StateBroken) {
		return false
	}
	if slot == "" {
		return true
	}
	partsComp := component.PartsComponent.Get(targetEntry)
	inst, ok := partsComp.Map[slot]
	return ok && inst != nil && !inst.IsBroken
}
