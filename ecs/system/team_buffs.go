package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/ecs/component"
)

// チーム命中補正の管理です。支援カテゴリの行動が補正を登録し、
// 発生源パーツの破壊で解除されます。補正は重複せず最大値のみが有効です。

// teamAccuracyMultiplier は、行動ユニットのチームに有効な命中倍率を返します。
func teamAccuracyMultiplier(ctx *BattleContext, actingEntry *donburi.Entry) float64 {
	settings := component.SettingsComponent.Get(actingEntry)
	record := getTeamContext(ctx).Record(settings.Team)
	multiplier := 1.0
	for _, buff := range record.AccuracyBuffs {
		if buff.Multiplier > multiplier {
			multiplier = buff.Multiplier
		}
	}
	return multiplier
}

// addTeamBuff は、支援行動による命中補正を登録します。
// 同一パーツからの補正は上書きされます。
func addTeamBuff(ctx *BattleContext, sourceEntry *donburi.Entry, sourceSlot core.PartSlotKey, multiplier float64) {
	settings := component.SettingsComponent.Get(sourceEntry)
	record := getTeamContext(ctx).Record(settings.Team)
	for i, buff := range record.AccuracyBuffs {
		if buff.SourceEntity == sourceEntry.Entity() && buff.SourceSlot == sourceSlot {
			record.AccuracyBuffs[i].Multiplier = multiplier
			return
		}
	}
	record.AccuracyBuffs = append(record.AccuracyBuffs, component.TeamBuff{
		SourceEntity: sourceEntry.Entity(),
		SourceSlot:   sourceSlot,
		Multiplier:   multiplier,
	})
}

// removeTeamBuffsFromPart は、破壊されたパーツ由来の命中補正を解除します。
func removeTeamBuffsFromPart(ctx *BattleContext, ownerEntry *donburi.Entry, slot core.PartSlotKey) {
	settings := component.SettingsComponent.Get(ownerEntry)
	record := getTeamContext(ctx).Record(settings.Team)
	kept := record.AccuracyBuffs[:0]
	for _, buff := range record.AccuracyBuffs {
		if buff.SourceEntity == ownerEntry.Entity() && buff.SourceSlot == slot {
			continue
		}
		kept = append(kept, buff)
	}
	record.AccuracyBuffs = kept
}

// resolveEntry は、エンティティ ID を現在も有効な Entry に解決します。
// 既に消滅している場合は nil を返します。
func resolveEntry(ctx *BattleContext, e donburi.Entity) *donburi.Entry {
	if !ctx.World.Valid(e) {
		return nil
	}
	return ctx.World.Entry(e)
}
