package system

import (
	"sort"

	"github.com/yohamta/donburi"

	"medasim/ecs/component"
	"medasim/ecs/entity"
)

// 各性格のターゲット戦略です。戦略は候補の列挙のみを行い、候補が空の場合の
// フォールバックは TargetingEngine が担当します。

// HunterStrategy は、敵全体で最も残り HP の低いパーツを狙います。
// 同値の場合は列挙順(描画順・スロット順)の先のものを優先します。
type HunterStrategy struct{}

func (s *HunterStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	parts := ctx.TargetSelector.EnumerateAttackableParts(ctx, actingEntry)
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].HP < parts[j].HP })
	return toCandidates(parts)
}

// CrusherStrategy は、敵全体で最も残り HP の高いパーツを狙います。
type CrusherStrategy struct{}

func (s *CrusherStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	parts := ctx.TargetSelector.EnumerateAttackableParts(ctx, actingEntry)
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].HP > parts[j].HP })
	return toCandidates(parts)
}

// JokerStrategy は、敵全体の攻撃可能パーツから無作為に 1 つ選びます。
type JokerStrategy struct{}

func (s *JokerStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	parts := ctx.TargetSelector.EnumerateAttackableParts(ctx, actingEntry)
	if len(parts) == 0 {
		return nil
	}
	p := parts[ctx.Rand.Intn(len(parts))]
	return []component.TargetCandidate{{Entry: p.Entry, Slot: p.Slot}}
}

// CounterStrategy は、自分を最後に攻撃してきた敵に反撃します。
type CounterStrategy struct{}

func (s *CounterStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	battleLog := component.BattleLogComponent.Get(actingEntry)
	attacker := resolveEntry(ctx, battleLog.LastAttackedBy)
	if attacker == nil || !IsValidTarget(attacker, "") {
		return nil
	}
	slot := ctx.TargetSelector.SelectRandomPartToDamage(ctx, attacker)
	if slot == "" {
		return nil
	}
	return []component.TargetCandidate{{Entry: attacker, Slot: slot}}
}

// GuardStrategy は、味方リーダーを最後に攻撃した敵を狙います。
type GuardStrategy struct{}

func (s *GuardStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	settings := component.SettingsComponent.Get(actingEntry)
	teamCtx := getTeamContext(ctx)
	record := teamCtx.Record(settings.Team)
	attacker := resolveEntry(ctx, record.LeaderLastAttackedBy)
	if attacker == nil || !IsValidTarget(attacker, "") {
		return nil
	}
	slot := ctx.TargetSelector.SelectRandomPartToDamage(ctx, attacker)
	if slot == "" {
		return nil
	}
	return []component.TargetCandidate{{Entry: attacker, Slot: slot}}
}

// FocusStrategy は、自分が前回攻撃したのと同じパーツを狙い続けます。
type FocusStrategy struct{}

func (s *FocusStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	battleLog := component.BattleLogComponent.Get(actingEntry)
	target := resolveEntry(ctx, battleLog.LastAttackTarget)
	if target == nil || !IsValidTarget(target, battleLog.LastAttackPartSlot) {
		return nil
	}
	return []component.TargetCandidate{{Entry: target, Slot: battleLog.LastAttackPartSlot}}
}

// AssistStrategy は、チームが最後に攻撃したパーツに追撃します。
type AssistStrategy struct{}

func (s *AssistStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	settings := component.SettingsComponent.Get(actingEntry)
	teamCtx := getTeamContext(ctx)
	record := teamCtx.Record(settings.Team)
	target := resolveEntry(ctx, record.LastAttackTarget)
	if target == nil || !IsValidTarget(target, record.LastAttackPartSlot) {
		return nil
	}
	return []component.TargetCandidate{{Entry: target, Slot: record.LastAttackPartSlot}}
}

// LeaderFocusStrategy は、敵リーダーを集中攻撃します。
type LeaderFocusStrategy struct{}

func (s *LeaderFocusStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	opponentTeam := ctx.TargetSelector.GetOpponentTeam(actingEntry)
	for _, enemy := range ctx.TargetSelector.GetTargetableEnemies(ctx, actingEntry) {
		settings := component.SettingsComponent.Get(enemy)
		if settings.Team != opponentTeam || !settings.IsLeader {
			continue
		}
		slot := ctx.TargetSelector.SelectRandomPartToDamage(ctx, enemy)
		if slot == "" {
			return nil
		}
		return []component.TargetCandidate{{Entry: enemy, Slot: slot}}
	}
	return nil
}

// RandomStrategy は、無作為な敵の無作為な非脚部パーツを狙います。
// 未知の性格のフォールバック先でもあります。
type RandomStrategy struct{}

func (s *RandomStrategy) SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate {
	enemies := ctx.TargetSelector.GetTargetableEnemies(ctx, actingEntry)
	if len(enemies) == 0 {
		return nil
	}
	target := enemies[ctx.Rand.Intn(len(enemies))]
	slot := ctx.TargetSelector.SelectRandomPartToDamage(ctx, target)
	if slot == "" {
		return nil
	}
	return []component.TargetCandidate{{Entry: target, Slot: slot}}
}

func toCandidates(parts []TargetablePart) []component.TargetCandidate {
	candidates := make([]component.TargetCandidate, 0, len(parts))
	for _, p := range parts {
		candidates = append(candidates, component.TargetCandidate{Entry: p.Entry, Slot: p.Slot})
	}
	return candidates
}

func getTeamContext(ctx *BattleContext) *component.TeamContextData {
	return entity.GetTeamContext(ctx.World)
}
