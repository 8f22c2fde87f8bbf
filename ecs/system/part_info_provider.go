package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/component"
)

// PartInfoProvider は、エンティティのパーツ情報への問い合わせを担当します。
type PartInfoProvider struct {
	GameDataManager *data.GameDataManager
	Config          *data.Config
}

// GetPartDefinition は、指定スロットのパーツ定義を返します。
// パーツが装備されていない場合は false を返します。
func (pip *PartInfoProvider) GetPartDefinition(entry *donburi.Entry, slot core.PartSlotKey) (*core.PartDefinition, bool) {
	partsComp := component.PartsComponent.Get(entry)
	inst, ok := partsComp.Map[slot]
	if !ok || inst == nil {
		return nil, false
	}
	return pip.GameDataManager.GetPartDefinition(inst.DefinitionID)
}

// GetPartParameterValue は、指定パーツの性能値を返します。
// パーツが存在しないか破壊されている場合は 0 を返します。
func (pip *PartInfoProvider) GetPartParameterValue(entry *donburi.Entry, slot core.PartSlotKey, param core.PartParameter) float64 {
	partsComp := component.PartsComponent.Get(entry)
	inst, ok := partsComp.Map[slot]
	if !ok || inst == nil || inst.IsBroken {
		return 0
	}
	def, ok := pip.GameDataManager.GetPartDefinition(inst.DefinitionID)
	if !ok {
		return 0
	}
	switch param {
	case core.Might:
		return float64(def.Might)
	case core.Success:
		return float64(def.Success)
	case core.Mobility:
		return float64(def.Mobility)
	case core.Propulsion:
		return float64(def.Propulsion)
	case core.Stability:
		return float64(def.Stability)
	case core.Defense:
		return float64(def.Defense)
	case core.Armor:
		return float64(def.Armor)
	}
	return 0
}

// GetLegsMobility は脚部パーツの機動を返します。脚部破壊時は 0 です。
func (pip *PartInfoProvider) GetLegsMobility(entry *donburi.Entry) int {
	return int(pip.GetPartParameterValue(entry, core.PartSlotLegs, core.Mobility))
}

// GetLegsArmor は脚部パーツの装甲値を返します。脚部破壊時は 0 です。
func (pip *PartInfoProvider) GetLegsArmor(entry *donburi.Entry) int {
	return int(pip.GetPartParameterValue(entry, core.PartSlotLegs, core.Armor))
}

// GetLegsPropulsion は脚部パーツの推進を返します。実行順の決定に使用します。
func (pip *PartInfoProvider) GetLegsPropulsion(entry *donburi.Entry) int {
	return int(pip.GetPartParameterValue(entry, core.PartSlotLegs, core.Propulsion))
}

// FindPartSlot は、パーツインスタンスが装備されているスロットを返します。
// 見つからない場合は空文字を返します。
func (pip *PartInfoProvider) FindPartSlot(entry *donburi.Entry, partToFind *core.PartInstanceData) core.PartSlotKey {
	partsComp := component.PartsComponent.Get(entry)
	for slot, inst := range partsComp.Map {
		if inst == partToFind {
			return slot
		}
	}
	return ""
}

// GetAvailableActionParts は、行動に使用可能なパーツ(頭部・右腕・左腕のうち
// 破壊されていないもの)を返します。脚部は行動パーツではありません。
func (pip *PartInfoProvider) GetAvailableActionParts(entry *donburi.Entry) []core.AvailablePart {
	partsComp := component.PartsComponent.Get(entry)
	var available []core.AvailablePart
	slots := []core.PartSlotKey{core.PartSlotHead, core.PartSlotRightArm, core.PartSlotLeftArm}
	for _, slot := range slots {
		inst, ok := partsComp.Map[slot]
		if !ok || inst == nil || inst.IsBroken {
			continue
		}
		def, defFound := pip.GameDataManager.GetPartDefinition(inst.DefinitionID)
		if !defFound {
			continue
		}
		available = append(available, core.AvailablePart{PartDef: def, Slot: slot})
	}
	return available
}

// CalculateGaugeDuration は、基準秒数を脚部推進で補正したゲージ満了時間を返します。
// 推進が高いほど短くなります。下限は基準の 10% です。
func (pip *PartInfoProvider) CalculateGaugeDuration(baseSeconds float64, entry *donburi.Entry) float64 {
	if baseSeconds <= 0 {
		baseSeconds = 1
	}
	propulsion := pip.GetPartParameterValue(entry, core.PartSlotLegs, core.Propulsion)
	factor := 1.0 - propulsion*pip.Config.Time.PropulsionEffectRate
	if factor < 0.1 {
		factor = 0.1
	}
	return baseSeconds * factor
}
