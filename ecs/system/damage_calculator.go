package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/component"
	"medasim/ecs/entity"
)

// DamageCalculator は、ダメージ量の算出とパーツへの適用を担当します。
type DamageCalculator struct {
	Config           *data.Config
	PartInfoProvider *PartInfoProvider
}

// CalculateDamage は、攻撃パーツの性能と対象脚部の防御性能からダメージを算出します。
// 機動と装甲値は着弾パーツに関わらず常に脚部から読み取ります(脚部破壊時は 0)。
// 式: floor(max(0, 成功 - 機動 - 装甲値) / 補正除数) + 威力
func (dc *DamageCalculator) CalculateDamage(actingEntry, targetEntry *donburi.Entry, partDef *core.PartDefinition, isCritical bool) int {
	mobility := dc.PartInfoProvider.GetLegsMobility(targetEntry)
	if isCritical {
		// クリティカル時は機動による回避分を無効化する。
		mobility = 0
	}
	armor := dc.PartInfoProvider.GetLegsArmor(targetEntry)
	adjusted := partDef.Success - mobility - armor
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted/dc.Config.Damage.AdjustmentDivisor + partDef.Might
}

// ApplyDamage は、指定パーツにダメージを適用します。
// パーツの HP が 0 になれば破壊され、頭部破壊はユニットの機能停止を意味します。
// 戻り値はパーツ破壊の有無とユニット機能停止の有無です。
func (dc *DamageCalculator) ApplyDamage(ctx *BattleContext, targetEntry *donburi.Entry, slot core.PartSlotKey, damage int) (partBroken, unitBroken bool) {
	partsComp := component.PartsComponent.Get(targetEntry)
	inst, ok := partsComp.Map[slot]
	if !ok || inst == nil || inst.IsBroken {
		return false, false
	}
	inst.CurrentHP -= damage
	if inst.CurrentHP > 0 {
		return false, false
	}
	inst.CurrentHP = 0
	inst.IsBroken = true
	inst.GuardRemaining = 0
	removeTeamBuffsFromPart(ctx, targetEntry, slot)
	if slot != core.PartSlotHead {
		return true, false
	}
	// 頭部破壊はユニットの機能停止。
	if err := entity.FireStateEvent(targetEntry, entity.EventBreak); err != nil {
		ctx.Logger.Log("機能停止への遷移に失敗しました: %v", err)
	}
	return true, true
}

// ApplyHeal は、指定パーツの HP を回復します。破壊済みパーツは回復できません。
// 実際に回復した量を返します。
func (dc *DamageCalculator) ApplyHeal(targetEntry *donburi.Entry, slot core.PartSlotKey, amount int) int {
	partsComp := component.PartsComponent.Get(targetEntry)
	inst, ok := partsComp.Map[slot]
	if !ok || inst == nil || inst.IsBroken {
		return 0
	}
	def, defFound := dc.PartInfoProvider.GameDataManager.GetPartDefinition(inst.DefinitionID)
	if !defFound {
		return 0
	}
	before := inst.CurrentHP
	inst.CurrentHP += amount
	if inst.CurrentHP > def.MaxHP {
		inst.CurrentHP = def.MaxHP
	}
	return inst.CurrentHP - before
}
