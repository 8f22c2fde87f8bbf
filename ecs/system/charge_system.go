package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/ecs/component"
	"medasim/ecs/entity"
)

// ChargeInitiationSystem は、行動確定からチャージ開始までの処理を担当します。
type ChargeInitiationSystem struct {
	PartInfoProvider *PartInfoProvider
}

// StartCharge は、選択された計画に基づきチャージを開始します。
// 選択可能状態でない、またはパーツが使用できない場合は false を返します。
func (cs *ChargeInitiationSystem) StartCharge(ctx *BattleContext, actingEntry *donburi.Entry, plan *component.ActionPlan) bool {
	state := component.StateComponent.Get(actingEntry)
	if !state.Current().IsSelectable() {
		return false
	}
	partsComp := component.PartsComponent.Get(actingEntry)
	inst, ok := partsComp.Map[plan.PartKey]
	if !ok || inst == nil || inst.IsBroken {
		return false
	}

	intent := component.ActionIntentComponent.Get(actingEntry)
	intent.SelectedPartKey = plan.PartKey
	intent.Scope = plan.Scope

	target := component.TargetComponent.Get(actingEntry)
	if plan.Target != nil {
		target.TargetEntity = plan.Target.Entity()
		target.TargetPartSlot = plan.TargetSlot
	} else {
		target.TargetEntity = donburi.Entity(0)
		target.TargetPartSlot = ""
	}

	cs.resetGauge(actingEntry, float64(plan.PartDef.Charge))
	if err := entity.FireStateEvent(actingEntry, entity.EventSelect); err != nil {
		ctx.Logger.Log("チャージ開始の状態遷移に失敗しました: %v", err)
		return false
	}
	return true
}

// StartCooldown は、行動後(または行動中止後)のクールダウンを開始します。
func (cs *ChargeInitiationSystem) StartCooldown(ctx *BattleContext, actingEntry *donburi.Entry) {
	intent := component.ActionIntentComponent.Get(actingEntry)
	baseSeconds := 1.0
	if def, ok := cs.PartInfoProvider.GetPartDefinition(actingEntry, intent.SelectedPartKey); ok {
		baseSeconds = float64(def.Cooldown)
	}
	cs.resetGauge(actingEntry, baseSeconds)

	state := component.StateComponent.Get(actingEntry)
	var ev string
	switch state.Current() {
	case core.StateReadyExecute:
		ev = entity.EventExecute
	case core.StateSelectedCharging:
		ev = entity.EventCancel
	case core.StateReadySelect, core.StateCooldownComplete:
		ev = entity.EventAbandon
	default:
		return
	}
	if err := entity.FireStateEvent(actingEntry, ev); err != nil {
		ctx.Logger.Log("クールダウン開始の状態遷移に失敗しました: %v", err)
	}
}

func (cs *ChargeInitiationSystem) resetGauge(actingEntry *donburi.Entry, baseSeconds float64) {
	gauge := component.GaugeComponent.Get(actingEntry)
	gauge.TotalDuration = cs.PartInfoProvider.CalculateGaugeDuration(baseSeconds, actingEntry)
	gauge.ProgressCounter = 0
	gauge.Value = 0
}
