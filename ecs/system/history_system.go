package system

import (
	"medasim/ecs/component"
)

// UpdateHistorySystem は、解決済みの行動結果を攻撃履歴に記録します。
// BattleLog / TeamRecord への書き込みはこのシステムだけが行います。
// ターゲットが確定しなかった行動(中止・対象なし)は記録されません。
func UpdateHistorySystem(ctx *BattleContext, result *component.ActionResult) {
	if result.Canceled || result.TargetEntry == nil || !result.ActionCategory.IsOffensive() {
		return
	}
	slot := result.ActualHitPartSlot
	if slot == "" {
		slot = result.TargetPartSlot
	}

	// 攻撃側: 自分の直近攻撃(フォーカスが参照)。
	attackerLog := component.BattleLogComponent.Get(result.ActingEntry)
	attackerLog.LastAttackTarget = result.TargetEntry.Entity()
	attackerLog.LastAttackPartSlot = slot

	// 被弾側: 直近に自分を攻撃した敵(カウンターが参照)。
	targetLog := component.BattleLogComponent.Get(result.TargetEntry)
	targetLog.LastAttackedBy = result.ActingEntry.Entity()

	teamCtx := getTeamContext(ctx)

	// 攻撃側チーム: チームの直近攻撃(アシストが参照)。
	attackerTeam := component.SettingsComponent.Get(result.ActingEntry).Team
	attackerRecord := teamCtx.Record(attackerTeam)
	attackerRecord.LastAttackTarget = result.TargetEntry.Entity()
	attackerRecord.LastAttackPartSlot = slot

	// 被弾側チーム: リーダーを攻撃した敵(ガードが参照)。
	targetSettings := component.SettingsComponent.Get(result.TargetEntry)
	if targetSettings.IsLeader {
		teamCtx.Record(targetSettings.Team).LeaderLastAttackedBy = result.ActingEntry.Entity()
	}
}
