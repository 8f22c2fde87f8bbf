package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/ecs/component"
)

// ActionExecutor は、READY_EXECUTE に達したユニットの行動を解決します。
// パーツカテゴリごとのハンドラに処理を委譲します。
type ActionExecutor struct {
	handlers map[core.PartCategory]ActionHandler
}

func NewActionExecutor() *ActionExecutor {
	attack := &AttackHandler{}
	return &ActionExecutor{
		handlers: map[core.PartCategory]ActionHandler{
			core.CategoryShoot:   attack,
			core.CategoryMelee:   attack,
			core.CategorySupport: &SupportHandler{},
			core.CategoryHeal:    &HealHandler{},
			core.CategoryDefend:  &DefendHandler{},
		},
	}
}

// ExecuteAction は、行動ユニットの選択済みパーツに基づき行動を解決します。
// 必要なコンポーネントやパーツが失われている場合、行動は中止として完結します。
func (ae *ActionExecutor) ExecuteAction(ctx *BattleContext, actingEntry *donburi.Entry) component.ActionResult {
	settings := component.SettingsComponent.Get(actingEntry)
	intent := component.ActionIntentComponent.Get(actingEntry)

	result := component.ActionResult{
		ActingEntry:  actingEntry,
		AttackerName: settings.Name,
	}

	partDef, ok := ctx.PartInfoProvider.GetPartDefinition(actingEntry, intent.SelectedPartKey)
	if !ok {
		ctx.Logger.Log("%s の行動パーツ %s が見つかりません。行動を中止します。", settings.Name, intent.SelectedPartKey)
		result.Canceled = true
		return result
	}
	partsComp := component.PartsComponent.Get(actingEntry)
	if inst := partsComp.Map[intent.SelectedPartKey]; inst == nil || inst.IsBroken {
		// チャージ中に使用パーツが破壊されたケース。
		ctx.Logger.Log("%s の行動パーツ %s は破壊されています。行動を中止します。", settings.Name, intent.SelectedPartKey)
		result.Canceled = true
		return result
	}

	result.ActionName = partDef.PartName
	result.ActionCategory = partDef.Category

	handler, found := ae.handlers[partDef.Category]
	if !found {
		ctx.Logger.Log("カテゴリ '%s' のハンドラが登録されていません。行動を中止します。", partDef.Category)
		result.Canceled = true
		return result
	}
	handled := handler.Execute(ctx, actingEntry, intent, partDef)
	handled.ActingEntry = actingEntry
	handled.AttackerName = settings.Name
	handled.ActionName = partDef.PartName
	handled.ActionCategory = partDef.Category
	return handled
}

// AttackHandler は射撃・格闘の攻撃行動を解決します。
type AttackHandler struct{}

func (h *AttackHandler) Execute(ctx *BattleContext, actingEntry *donburi.Entry, intent *component.ActionIntent, partDef *core.PartDefinition) component.ActionResult {
	var result component.ActionResult

	targetEntry, targetSlot := h.resolveTarget(ctx, actingEntry, intent, partDef)
	if targetEntry == nil {
		result.Canceled = true
		return result
	}

	// ガーディアンによる割り込み。命中判定より先に対象を差し替える。
	if guardian, guardSlot := findGuardian(ctx, actingEntry, targetEntry); guardian != nil {
		result.WasIntercepted = true
		result.GuardianEntry = guardian
		targetEntry = guardian
		targetSlot = guardSlot
		consumeGuard(guardian, guardSlot)
	}

	result.TargetEntry = targetEntry
	result.TargetPartSlot = targetSlot
	result.DefenderName = component.SettingsComponent.Get(targetEntry).Name

	result.ActionDidHit = ctx.HitCalculator.CalculateHit(ctx, actingEntry, targetEntry, partDef)
	if !result.ActionDidHit {
		return result
	}

	result.IsCritical = ctx.HitCalculator.CalculateCritical(ctx, partDef)

	// 自動防御。頭部以外で最も HP の高いパーツが身代わりになる。
	hitSlot := targetSlot
	if defenseSlot := ctx.TargetSelector.SelectDefensePart(targetEntry); defenseSlot != "" && defenseSlot != targetSlot {
		if ctx.HitCalculator.CalculateDefense(ctx, targetEntry, defenseSlot, partDef) {
			result.IsDefended = true
			hitSlot = defenseSlot
		}
	}
	result.ActualHitPartSlot = hitSlot

	damage := ctx.DamageCalculator.CalculateDamage(actingEntry, targetEntry, partDef, result.IsCritical)
	partBroken, unitBroken := ctx.DamageCalculator.ApplyDamage(ctx, targetEntry, hitSlot, damage)
	result.DamageEvents = append(result.DamageEvents, component.DamageEvent{PartSlot: hitSlot, Damage: damage, PartBroken: partBroken})
	result.TargetUnitBroken = unitBroken

	// 貫通特性。同一ターゲットの別パーツに二次ダメージ。
	if partDef.Penetrates {
		if secondSlot := selectPenetrationSlot(ctx, targetEntry, hitSlot); secondSlot != "" {
			secondDamage := ctx.DamageCalculator.CalculateDamage(actingEntry, targetEntry, partDef, result.IsCritical)
			secondBroken, secondUnitBroken := ctx.DamageCalculator.ApplyDamage(ctx, targetEntry, secondSlot, secondDamage)
			result.DamageEvents = append(result.DamageEvents, component.DamageEvent{PartSlot: secondSlot, Damage: secondDamage, PartBroken: secondBroken})
			result.TargetUnitBroken = result.TargetUnitBroken || secondUnitBroken
		}
	}
	return result
}

// resolveTarget は、攻撃対象を確定します。射撃は選択時の事前指定、
// 格闘は実行時に無作為な敵を選びます(脚部も着弾対象)。
func (h *AttackHandler) resolveTarget(ctx *BattleContext, actingEntry *donburi.Entry, intent *component.ActionIntent, partDef *core.PartDefinition) (*donburi.Entry, core.PartSlotKey) {
	if partDef.Category == core.CategoryMelee {
		enemies := ctx.TargetSelector.GetTargetableEnemies(ctx, actingEntry)
		if len(enemies) == 0 {
			return nil, ""
		}
		target := enemies[ctx.Rand.Intn(len(enemies))]
		slot := ctx.TargetSelector.SelectMeleePartToDamage(ctx, target)
		if slot == "" {
			return nil, ""
		}
		return target, slot
	}

	targetComp := component.TargetComponent.Get(actingEntry)
	target := resolveEntry(ctx, targetComp.TargetEntity)
	if target == nil || !IsValidTarget(target, targetComp.TargetPartSlot) {
		name := component.SettingsComponent.Get(actingEntry).Name
		ctx.Logger.Log("%s のターゲットはすでに無効です。行動を中止します。", name)
		return nil, ""
	}
	return target, targetComp.TargetPartSlot
}

// findGuardian は、ターゲットのチームからガード特性が有効なユニットを探します。
// ターゲット自身は対象外です。描画順で最初に見つかったユニットを返します。
func findGuardian(ctx *BattleContext, actingEntry, targetEntry *donburi.Entry) (*donburi.Entry, core.PartSlotKey) {
	targetTeam := component.SettingsComponent.Get(targetEntry).Team
	for _, unit := range ctx.TargetSelector.collectTeamUnits(ctx, targetTeam, targetEntry) {
		partsComp := component.PartsComponent.Get(unit)
		for _, slot := range core.AllPartSlots {
			inst, ok := partsComp.Map[slot]
			if !ok || inst == nil || inst.IsBroken || inst.GuardRemaining <= 0 {
				continue
			}
			return unit, slot
		}
	}
	return nil, ""
}

func consumeGuard(guardian *donburi.Entry, slot core.PartSlotKey) {
	partsComp := component.PartsComponent.Get(guardian)
	if inst, ok := partsComp.Map[slot]; ok && inst != nil && inst.GuardRemaining > 0 {
		inst.GuardRemaining--
	}
}

// selectPenetrationSlot は、貫通の二次ダメージ先を選びます。
// 一次着弾パーツ以外の破壊されていないパーツから無作為に1つ選びます。
func selectPenetrationSlot(ctx *BattleContext, targetEntry *donburi.Entry, primarySlot core.PartSlotKey) core.PartSlotKey {
	partsComp := component.PartsComponent.Get(targetEntry)
	var candidates []core.PartSlotKey
	for _, slot := range core.AllPartSlots {
		if slot == primarySlot {
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

// SupportHandler は支援行動を解決します。チームに命中補正を付与します。
type SupportHandler struct{}

func (h *SupportHandler) Execute(ctx *BattleContext, actingEntry *donburi.Entry, intent *component.ActionIntent, partDef *core.PartDefinition) component.ActionResult {
	var result component.ActionResult
	multiplier := 1.0 + float64(partDef.Might)/100.0
	addTeamBuff(ctx, actingEntry, intent.SelectedPartKey, multiplier)
	result.ActionDidHit = true
	return result
}

// HealHandler は回復行動を解決します。破壊済みパーツは回復できません。
type HealHandler struct{}

func (h *HealHandler) Execute(ctx *BattleContext, actingEntry *donburi.Entry, intent *component.ActionIntent, partDef *core.PartDefinition) component.ActionResult {
	var result component.ActionResult
	targetComp := component.TargetComponent.Get(actingEntry)
	target := resolveEntry(ctx, targetComp.TargetEntity)
	if target == nil || !IsValidTarget(target, targetComp.TargetPartSlot) {
		result.Canceled = true
		return result
	}
	result.TargetEntry = target
	result.TargetPartSlot = targetComp.TargetPartSlot
	result.ActualHitPartSlot = targetComp.TargetPartSlot
	result.DefenderName = component.SettingsComponent.Get(target).Name
	result.HealAmount = ctx.DamageCalculator.ApplyHeal(target, targetComp.TargetPartSlot, partDef.Might)
	result.ActionDidHit = true
	return result
}

// DefendHandler は防御行動を解決します。使用パーツのガード回数を再装填します。
type DefendHandler struct{}

func (h *DefendHandler) Execute(ctx *BattleContext, actingEntry *donburi.Entry, intent *component.ActionIntent, partDef *core.PartDefinition) component.ActionResult {
	var result component.ActionResult
	partsComp := component.PartsComponent.Get(actingEntry)
	if inst, ok := partsComp.Map[intent.SelectedPartKey]; ok && inst != nil && !inst.IsBroken {
		count := partDef.GuardCount
		if count < 1 {
			count = 1
		}
		inst.GuardRemaining = count
	}
	result.ActionDidHit = true
	return result
}
