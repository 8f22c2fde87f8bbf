package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/data"
)

// HitCalculator は、命中・クリティカル・防御発動の確率判定を担当します。
type HitCalculator struct {
	Config           *data.Config
	PartInfoProvider *PartInfoProvider
}

// CalculateHit は、攻撃が命中するかを判定します。
// 攻撃パーツの成功度と対象脚部の機動の差で基本確率を補正します。
func (hc *HitCalculator) CalculateHit(ctx *BattleContext, actingEntry, targetEntry *donburi.Entry, partDef *core.PartDefinition) bool {
	success := float64(partDef.Success) * teamAccuracyMultiplier(ctx, actingEntry)
	mobility := float64(hc.PartInfoProvider.GetLegsMobility(targetEntry))
	chance := hc.Config.Hit.BaseChance + success - mobility
	chance = clampChance(chance, hc.Config.Hit.MinChance, hc.Config.Hit.MaxChance)
	return ctx.Rand.Float64()*100 < chance
}

// CalculateCritical は、クリティカルが発生するかを判定します。
// パーツのクリティカル補正特性が確率に加算されます。
func (hc *HitCalculator) CalculateCritical(ctx *BattleContext, partDef *core.PartDefinition) bool {
	chance := hc.Config.Critical.BaseChance + float64(partDef.Success)*hc.Config.Critical.SuccessRateFactor
	chance += float64(partDef.CriticalBonus)
	chance = clampChance(chance, hc.Config.Critical.MinChance, hc.Config.Critical.MaxChance)
	return ctx.Rand.Float64()*100 < chance
}

// CalculateDefense は、対象が自動防御に成功するかを判定します。
// 身代わりパーツの防御性能と攻撃の成功度の差で補正します。
func (hc *HitCalculator) CalculateDefense(ctx *BattleContext, targetEntry *donburi.Entry, defenseSlot core.PartSlotKey, partDef *core.PartDefinition) bool {
	defense := hc.PartInfoProvider.GetPartParameterValue(targetEntry, defenseSlot, core.Defense)
	chance := hc.Config.Defense.BaseChance + defense - float64(partDef.Success)
	chance = clampChance(chance, hc.Config.Defense.MinChance, hc.Config.Defense.MaxChance)
	return ctx.Rand.Float64()*100 < chance
}

func clampChance(chance, min, max float64) float64 {
	if chance < min {
		return min
	}
	if chance > max {
		return max
	}
	return chance
}
