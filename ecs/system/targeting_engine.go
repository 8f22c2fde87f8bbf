package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/ecs/component"
)

// PersonalityConfig は、性格ごとのターゲット戦略とパーツ選択方針の組です。
type PersonalityConfig struct {
	Targeting         TargetingStrategy
	EnemyPartStrategy core.PartStrategyKey
	AllyPartStrategy  core.PartStrategyKey
}

// PersonalityRegistry は、メダルの性格名から振る舞いを引くためのレジストリです。
// 未登録の性格は「ランダム」として扱われます。
var PersonalityRegistry = map[core.Personality]PersonalityConfig{
	core.PersonalityHunter:      {Targeting: &HunterStrategy{}, EnemyPartStrategy: core.PartStrategyPowerFocus, AllyPartStrategy: core.PartStrategyNone},
	core.PersonalityCrusher:     {Targeting: &CrusherStrategy{}, EnemyPartStrategy: core.PartStrategyPowerFocus, AllyPartStrategy: core.PartStrategyNone},
	core.PersonalityJoker:       {Targeting: &JokerStrategy{}, EnemyPartStrategy: core.PartStrategyRandom, AllyPartStrategy: core.PartStrategyRandom},
	core.PersonalityCounter:     {Targeting: &CounterStrategy{}, EnemyPartStrategy: core.PartStrategyPowerFocus, AllyPartStrategy: core.PartStrategyNone},
	core.PersonalityGuard:       {Targeting: &GuardStrategy{}, EnemyPartStrategy: core.PartStrategyPowerFocus, AllyPartStrategy: core.PartStrategyHealFocus},
	core.PersonalityFocus:       {Targeting: &FocusStrategy{}, EnemyPartStrategy: core.PartStrategyPowerFocus, AllyPartStrategy: core.PartStrategyNone},
	core.PersonalityAssist:      {Targeting: &AssistStrategy{}, EnemyPartStrategy: core.PartStrategyRandom, AllyPartStrategy: core.PartStrategyHealFocus},
	core.PersonalityLeaderFocus: {Targeting: &LeaderFocusStrategy{}, EnemyPartStrategy: core.PartStrategyPowerFocus, AllyPartStrategy: core.PartStrategyNone},
	core.PersonalityRandom:      {Targeting: &RandomStrategy{}, EnemyPartStrategy: core.PartStrategyRandom, AllyPartStrategy: core.PartStrategyRandom},
}

// TargetingEngine は、性格戦略とフォールバックを束ねてターゲットを決定します。
type TargetingEngine struct {
	TargetSelector *TargetSelector
	fallback       TargetingStrategy
}

func NewTargetingEngine(ts *TargetSelector) *TargetingEngine {
	return &TargetingEngine{TargetSelector: ts, fallback: &RandomStrategy{}}
}

// ResolvePersonality は、性格名に対応する設定を返します。
// 未知の性格は診断ログを残したうえでランダムにフォールバックします。
func (te *TargetingEngine) ResolvePersonality(ctx *BattleContext, personality core.Personality) PersonalityConfig {
	cfg, ok := PersonalityRegistry[personality]
	if !ok {
		ctx.Logger.Log("未知の性格 '%s' です。ランダム戦略で代替します。", personality)
		return PersonalityRegistry[core.PersonalityRandom]
	}
	return cfg
}

// DetermineTarget は、行動スコープに応じてターゲットを決定します。
// 敵スコープでは性格戦略を適用し、有効な候補が得られなければスコープ内の
// ランダム選択に切り替えます。それでも候補がなければ nil を返します。
func (te *TargetingEngine) DetermineTarget(ctx *BattleContext, actingEntry *donburi.Entry, scope core.TargetScope) (*donburi.Entry, core.PartSlotKey) {
	switch scope {
	case core.ScopeEnemy:
		medal := component.MedalComponent.Get(actingEntry)
		cfg := te.ResolvePersonality(ctx, medal.Personality)
		if target, slot, ok := firstValidCandidate(cfg.Targeting.SelectCandidates(ctx, actingEntry)); ok {
			return target, slot
		}
		if target, slot, ok := firstValidCandidate(te.fallback.SelectCandidates(ctx, actingEntry)); ok {
			return target, slot
		}
		return nil, ""
	case core.ScopeAlly:
		return te.randomAlly(ctx, actingEntry)
	}
	return nil, ""
}

// randomAlly は、味方スコープのランダムターゲットを返します。
// 支援はユニット単位、回復は損傷パーツ単位の対象になります。
func (te *TargetingEngine) randomAlly(ctx *BattleContext, actingEntry *donburi.Entry) (*donburi.Entry, core.PartSlotKey) {
	allies := te.TargetSelector.GetTargetableAllies(ctx, actingEntry)
	if len(allies) == 0 {
		return nil, ""
	}
	ally := allies[ctx.Rand.Intn(len(allies))]
	return ally, ""
}

func firstValidCandidate(candidates []component.TargetCandidate) (*donburi.Entry, core.PartSlotKey, bool) {
	for _, c := range candidates {
		if IsValidTarget(c.Entry, c.Slot) {
			return c.Entry, c.Slot, true
		}
	}
	return nil, "", false
}
