package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/ecs/component"
	"medasim/event"
)

// BuildActionPlans は、使用可能な各パーツについて実行可能な行動計画を組み立てます。
// 射撃・支援・回復はこの時点でターゲットを解決し、解決できない計画は除外します。
// 格闘はターゲット未解決のまま計画になります(実行時に解決)。
func BuildActionPlans(ctx *BattleContext, actingEntry *donburi.Entry) []component.ActionPlan {
	var plans []component.ActionPlan
	for _, part := range ctx.PartInfoProvider.GetAvailableActionParts(actingEntry) {
		scope := part.PartDef.Category.TargetScope()
		plan := component.ActionPlan{
			PartKey: part.Slot,
			PartDef: part.PartDef,
			Scope:   scope,
		}
		switch part.PartDef.Category {
		case core.CategoryShoot:
			target, slot := ctx.TargetingEngine.DetermineTarget(ctx, actingEntry, scope)
			if target == nil {
				continue
			}
			plan.Target = target
			plan.TargetSlot = slot
		case core.CategoryMelee:
			// 実行時解決。敵が1体もいなければ計画として成立しない。
			if len(ctx.TargetSelector.GetTargetableEnemies(ctx, actingEntry)) == 0 {
				continue
			}
		case core.CategorySupport, core.CategoryHeal:
			target, slot := ctx.TargetingEngine.DetermineTarget(ctx, actingEntry, scope)
			if target == nil {
				continue
			}
			if part.PartDef.Category == core.CategoryHeal {
				slot = selectHealSlot(ctx, target)
				if slot == "" {
					continue
				}
			}
			plan.Target = target
			plan.TargetSlot = slot
		case core.CategoryDefend:
			// 自己完結行動。ターゲット不要。
		default:
			ctx.Logger.Log("未知のパーツカテゴリ '%s' です。計画から除外します。", part.PartDef.Category)
			continue
		}
		plans = append(plans, plan)
	}
	return plans
}

// selectHealSlot は、回復対象ユニットの損傷パーツから無作為に1つ選びます。
// 破壊済みパーツは回復できないため候補に含まれません。
func selectHealSlot(ctx *BattleContext, target *donburi.Entry) core.PartSlotKey {
	partsComp := component.PartsComponent.Get(target)
	var damaged []core.PartSlotKey
	for _, slot := range core.AllPartSlots {
		inst, ok := partsComp.Map[slot]
		if !ok || inst == nil || inst.IsBroken {
			continue
		}
		def, defFound := ctx.GameDataManager.GetPartDefinition(inst.DefinitionID)
		if !defFound || inst.CurrentHP >= def.MaxHP {
			continue
		}
		damaged = append(damaged, slot)
	}
	if len(damaged) == 0 {
		return ""
	}
	return damaged[ctx.Rand.Intn(len(damaged))]
}

// ActionPlanner は、性格のパーツ選択方針に従って計画を1つに絞り込みます。
type ActionPlanner struct{}

// SelectPlan は、性格に応じた計画を選びます。敵向け方針を先に適用し、
// 成立しなければ味方向け方針、それでも決まらなければ無作為に選びます。
func (ap *ActionPlanner) SelectPlan(ctx *BattleContext, actingEntry *donburi.Entry, plans []component.ActionPlan) *component.ActionPlan {
	if len(plans) == 0 {
		return nil
	}
	medal := component.MedalComponent.Get(actingEntry)
	cfg := ctx.TargetingEngine.ResolvePersonality(ctx, medal.Personality)

	if plan := applyPartStrategy(ctx, cfg.EnemyPartStrategy, filterByScope(plans, core.ScopeEnemy)); plan != nil {
		return plan
	}
	if plan := applyPartStrategy(ctx, cfg.AllyPartStrategy, filterByScope(plans, core.ScopeAlly)); plan != nil {
		return plan
	}
	return &plans[ctx.Rand.Intn(len(plans))]
}

func filterByScope(plans []component.ActionPlan, scope core.TargetScope) []component.ActionPlan {
	var filtered []component.ActionPlan
	for _, p := range plans {
		if p.Scope == scope {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func applyPartStrategy(ctx *BattleContext, strategy core.PartStrategyKey, plans []component.ActionPlan) *component.ActionPlan {
	if len(plans) == 0 {
		return nil
	}
	switch strategy {
	case core.PartStrategyPowerFocus:
		best := -1
		for i, p := range plans {
			if p.PartDef.Category.IsOffensive() && (best < 0 || p.PartDef.Might > plans[best].PartDef.Might) {
				best = i
			}
		}
		if best < 0 {
			return nil
		}
		return &plans[best]
	case core.PartStrategyHealFocus:
		best := -1
		for i, p := range plans {
			if p.PartDef.Category == core.CategoryHeal && (best < 0 || p.PartDef.Might > plans[best].PartDef.Might) {
				best = i
			}
		}
		if best < 0 {
			return nil
		}
		return &plans[best]
	case core.PartStrategyRandom:
		return &plans[ctx.Rand.Intn(len(plans))]
	}
	return nil
}

// AISelectAction は、AI制御ユニットの行動選択を1件処理します。
// 計画が1つも成立しない場合は行動を中止してクールダウンに入ります。
// チャージ開始に失敗した場合は retry が true になり、呼び出し側は
// ユニットをキュー先頭に戻して次のtickで再試行します。
func AISelectAction(ctx *BattleContext, actingEntry *donburi.Entry) (events []event.GameEvent, retry bool) {
	settings := component.SettingsComponent.Get(actingEntry)
	plans := BuildActionPlans(ctx, actingEntry)
	if len(plans) == 0 {
		ctx.Logger.Log("%s に実行可能な行動がありません。行動を中止します。", settings.Name)
		ctx.ChargeSystem.StartCooldown(ctx, actingEntry)
		return []event.GameEvent{event.ActionCanceledGameEvent{
			ActingEntry: actingEntry,
			UnitName:    settings.Name,
			Reason:      "有効な行動がありません",
		}}, false
	}
	plan := ctx.ActionPlanner.SelectPlan(ctx, actingEntry, plans)
	if plan == nil || !ctx.ChargeSystem.StartCharge(ctx, actingEntry, plan) {
		return nil, true
	}
	committed := event.ActionCommittedGameEvent{
		ActingEntry: actingEntry,
		UnitName:    settings.Name,
		PartKey:     plan.PartKey,
		Category:    plan.PartDef.Category,
	}
	if plan.Target != nil {
		committed.TargetEntity = plan.Target.Entity()
		committed.TargetPartSlot = plan.TargetSlot
	}
	return []event.GameEvent{committed}, false
}
