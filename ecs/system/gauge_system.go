package system

import (
	"sort"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"medasim/core"
	"medasim/ecs/component"
	"medasim/ecs/entity"
)

// UpdateGaugeSystem は、全ユニットのゲージを1tick分進行させます。
// クールダウン完了ユニットは選択キューへ、チャージ完了ユニットは実行キューへ
// 送られます。READY_EXECUTE を同時に占有できるのは1機のみのため、
// チャージ完了の昇格は1tickにつき1機(推進の高い順)に制限されます。
func UpdateGaugeSystem(ctx *BattleContext) {
	var chargeFilled []*donburi.Entry

	query.NewQuery(filter.Contains(component.StateComponent, component.GaugeComponent)).Each(ctx.World, func(e *donburi.Entry) {
		state := component.StateComponent.Get(e)
		current := state.Current()
		if current != core.StateCharging && current != core.StateSelectedCharging {
			return
		}
		gauge := component.GaugeComponent.Get(e)
		gauge.ProgressCounter += gauge.SpeedMultiplier * ctx.Config.Time.TickInterval
		if gauge.TotalDuration > 0 {
			gauge.Value = gauge.ProgressCounter / gauge.TotalDuration * gauge.Max
		} else {
			gauge.Value = gauge.Max
		}
		if gauge.Value < gauge.Max {
			return
		}
		gauge.Value = gauge.Max

		switch current {
		case core.StateCharging:
			if err := entity.FireStateEvent(e, entity.EventCooldownFull); err != nil {
				ctx.Logger.Log("クールダウン完了の遷移に失敗しました: %v", err)
				return
			}
			entity.GetSelectionQueue(ctx.World).Push(e)
		case core.StateSelectedCharging:
			chargeFilled = append(chargeFilled, e)
		}
	})

	if len(chargeFilled) == 0 {
		return
	}
	if anyUnitReadyToExecute(ctx.World) {
		// 実行中のユニットが解決されるまで満了状態で待機する。
		return
	}
	sort.SliceStable(chargeFilled, func(i, j int) bool {
		pi := ctx.PartInfoProvider.GetLegsPropulsion(chargeFilled[i])
		pj := ctx.PartInfoProvider.GetLegsPropulsion(chargeFilled[j])
		if pi != pj {
			return pi > pj
		}
		return component.SettingsComponent.Get(chargeFilled[i]).DrawIndex < component.SettingsComponent.Get(chargeFilled[j]).DrawIndex
	})
	promoted := chargeFilled[0]
	if err := entity.FireStateEvent(promoted, entity.EventChargeFull); err != nil {
		ctx.Logger.Log("チャージ完了の遷移に失敗しました: %v", err)
		return
	}
	entity.GetExecutionQueue(ctx.World).Push(promoted)
}

func anyUnitReadyToExecute(world donburi.World) bool {
	found := false
	query.NewQuery(filter.Contains(component.StateComponent)).Each(world, func(e *donburi.Entry) {
		state := component.StateComponent.Get(e)
		if state.Is(core.StateReadyExecute) {
			found = true
		}
	})
	return found
}
