package system

import (
	"testing"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/component"
)

func TestAttackHitsPreselectedPart(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
	}, alwaysHit)
	primeIntent(entries["attacker"], core.PartSlotRightArm, entries["target"], core.PartSlotHead)

	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if result.Canceled || !result.ActionDidHit {
		t.Fatalf("攻撃が成立しませんでした: %+v", result)
	}
	if result.ActualHitPartSlot != core.PartSlotHead {
		t.Fatalf("着弾スロット = %s, want head", result.ActualHitPartSlot)
	}
	if len(result.DamageEvents) != 1 {
		t.Fatalf("ダメージイベント数 = %d, want 1", len(result.DamageEvents))
	}
	// t_rifle: success 80, might 20 / t_legs: mobility 10, armor 10 → 35
	if result.DamageEvents[0].Damage != 35 {
		t.Fatalf("ダメージ = %d, want 35", result.DamageEvents[0].Damage)
	}
}

func TestAttackMissYieldsNoDamage(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
	}, func(cfg *data.Config) {
		cfg.Hit.MinChance = 0
		cfg.Hit.MaxChance = 0
	})
	primeIntent(entries["attacker"], core.PartSlotRightArm, entries["target"], core.PartSlotHead)

	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if result.Canceled || result.ActionDidHit {
		t.Fatalf("外れるはずの攻撃が命中しました: %+v", result)
	}
	if len(result.DamageEvents) != 0 {
		t.Fatalf("外れた攻撃にダメージイベントがあります: %d件", len(result.DamageEvents))
	}
}

func TestCriticalHitIncreasesDamage(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
	}, func(cfg *data.Config) {
		alwaysHit(cfg)
		cfg.Critical.MinChance = 100
		cfg.Critical.MaxChance = 100
	})
	primeIntent(entries["attacker"], core.PartSlotRightArm, entries["target"], core.PartSlotHead)

	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if !result.IsCritical {
		t.Fatalf("クリティカルが発生しませんでした: %+v", result)
	}
	// 機動 10 が無効になり、(80-0-10)/4+20 = 37。通常時は 35。
	if result.DamageEvents[0].Damage != 37 {
		t.Fatalf("クリティカルダメージ = %d, want 37", result.DamageEvents[0].Damage)
	}
}

func TestGuardianInterceptsAttack(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
		{id: "guardian", team: core.Team2, leftArm: "t_shield"},
	}, alwaysHit)
	guardian := entries["guardian"]
	// ガード回数を有効化する(防御行動の実行と同じ状態)。
	component.PartsComponent.Get(guardian).Map[core.PartSlotLeftArm].GuardRemaining = 2

	primeIntent(entries["attacker"], core.PartSlotRightArm, entries["target"], core.PartSlotHead)
	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])

	if !result.WasIntercepted || result.GuardianEntry != guardian {
		t.Fatalf("ガーディアンが割り込みませんでした: %+v", result)
	}
	if result.TargetEntry != guardian {
		t.Fatal("記録されたターゲットがガーディアンに差し替わっていません")
	}
	shieldInst := component.PartsComponent.Get(guardian).Map[core.PartSlotLeftArm]
	// t_shield: MaxHP 60 - ダメージ35 → 耐えてガード回数のみ消費される。
	if shieldInst.IsBroken || shieldInst.CurrentHP != 25 {
		t.Fatalf("シールドが割り込みに耐えていません: HP %d, broken=%v", shieldInst.CurrentHP, shieldInst.IsBroken)
	}
	if shieldInst.GuardRemaining != 1 {
		t.Fatalf("ガード残回数 = %d, want 1", shieldInst.GuardRemaining)
	}
	// 元のターゲットは無傷。
	headInst := component.PartsComponent.Get(entries["target"]).Map[core.PartSlotHead]
	if headInst.CurrentHP != 40 {
		t.Fatalf("元ターゲットにダメージが入っています: HP %d", headInst.CurrentHP)
	}
}

func TestNoInterceptWithoutActiveGuard(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
		{id: "bystander", team: core.Team2, leftArm: "t_shield"},
	}, alwaysHit)
	// GuardRemaining は初期値(t_shield の guard_count=2)のまま有効なので、
	// ここでは明示的に 0 にして不発を確認する。
	component.PartsComponent.Get(entries["bystander"]).Map[core.PartSlotLeftArm].GuardRemaining = 0

	primeIntent(entries["attacker"], core.PartSlotRightArm, entries["target"], core.PartSlotHead)
	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if result.WasIntercepted {
		t.Fatal("ガード残回数 0 で割り込みが発生しました")
	}
}

func TestPenetrationProducesTwoDamageEvents(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1, rightArm: "t_pierce"},
		{id: "target", team: core.Team2},
	}, alwaysHit)
	primeIntent(entries["attacker"], core.PartSlotRightArm, entries["target"], core.PartSlotHead)

	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if len(result.DamageEvents) != 2 {
		t.Fatalf("貫通攻撃のダメージイベント数 = %d, want 2", len(result.DamageEvents))
	}
	if result.DamageEvents[0].PartSlot == result.DamageEvents[1].PartSlot {
		t.Fatal("二次ダメージが同じパーツに入っています")
	}
}

func TestPenetrationWithSinglePartYieldsOneEvent(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1, rightArm: "t_pierce"},
		{id: "target", team: core.Team2},
	}, alwaysHit)
	target := entries["target"]
	breakPart(t, target, core.PartSlotRightArm)
	breakPart(t, target, core.PartSlotLeftArm)
	breakPart(t, target, core.PartSlotLegs)

	primeIntent(entries["attacker"], core.PartSlotRightArm, target, core.PartSlotHead)
	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if len(result.DamageEvents) != 1 {
		t.Fatalf("残り1パーツへの貫通イベント数 = %d, want 1", len(result.DamageEvents))
	}
}

func TestDefenseSubstitutesHighestHPNonHeadPart(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
	}, func(cfg *data.Config) {
		alwaysHit(cfg)
		cfg.Defense.MinChance = 100
		cfg.Defense.MaxChance = 100
	})
	target := entries["target"]
	setPartHP(t, target, core.PartSlotLeftArm, 30)
	setPartHP(t, target, core.PartSlotRightArm, 10)
	setPartHP(t, target, core.PartSlotLegs, 20)

	primeIntent(entries["attacker"], core.PartSlotRightArm, target, core.PartSlotHead)
	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if !result.IsDefended {
		t.Fatalf("防御が発動しませんでした: %+v", result)
	}
	if result.ActualHitPartSlot != core.PartSlotLeftArm {
		t.Fatalf("身代わりパーツ = %s, want l_arm (非頭部で最大HP)", result.ActualHitPartSlot)
	}
}

func TestAttackCanceledWhenTargetInvalid(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
	}, alwaysHit)
	target := entries["target"]
	primeIntent(entries["attacker"], core.PartSlotRightArm, target, core.PartSlotHead)
	breakPart(t, target, core.PartSlotHead)

	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if !result.Canceled {
		t.Fatal("無効ターゲットへの攻撃が中止されませんでした")
	}
}

func TestMeleeResolvesTargetAtExecution(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "attacker", team: core.Team1},
		{id: "target", team: core.Team2},
	}, alwaysHit)
	// 格闘はターゲット未指定で実行時に解決される。脚部も着弾対象。
	primeIntent(entries["attacker"], core.PartSlotLeftArm, nil, "")

	result := ctx.Executor.ExecuteAction(ctx, entries["attacker"])
	if result.Canceled || !result.ActionDidHit {
		t.Fatalf("格闘攻撃が成立しませんでした: %+v", result)
	}
	if result.TargetEntry != entries["target"] {
		t.Fatal("格闘のターゲットが敵ユニットではありません")
	}
}

func TestSupportAddsTeamAccuracyBuff(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "supporter", team: core.Team1},
		{id: "e1", team: core.Team2},
	}, nil)
	supporter := entries["supporter"]

	addTeamBuff(ctx, supporter, core.PartSlotHead, 1.2)
	if got := teamAccuracyMultiplier(ctx, supporter); got != 1.2 {
		t.Fatalf("命中倍率 = %v, want 1.2", got)
	}
	// 発生源パーツの破壊で解除される。
	removeTeamBuffsFromPart(ctx, supporter, core.PartSlotHead)
	if got := teamAccuracyMultiplier(ctx, supporter); got != 1.0 {
		t.Fatalf("解除後の命中倍率 = %v, want 1.0", got)
	}
}

func TestHealRestoresTargetPart(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "healer", team: core.Team1, head: "t_repair"},
		{id: "ally", team: core.Team1},
		{id: "e1", team: core.Team2},
	}, nil)
	ally := entries["ally"]
	setPartHP(t, ally, core.PartSlotRightArm, 5)

	primeIntent(entries["healer"], core.PartSlotHead, ally, core.PartSlotRightArm)
	result := ctx.Executor.ExecuteAction(ctx, entries["healer"])
	if result.Canceled || result.HealAmount != 25 {
		t.Fatalf("回復量 = %d, want 25 (%+v)", result.HealAmount, result)
	}
	if hp := component.PartsComponent.Get(ally).Map[core.PartSlotRightArm].CurrentHP; hp != 30 {
		t.Fatalf("回復後HP = %d, want 30", hp)
	}
}

func TestDefendRearmsGuardCount(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "defender", team: core.Team1, leftArm: "t_shield"},
		{id: "e1", team: core.Team2},
	}, nil)
	defender := entries["defender"]
	inst := component.PartsComponent.Get(defender).Map[core.PartSlotLeftArm]
	inst.GuardRemaining = 0

	primeIntent(defender, core.PartSlotLeftArm, nil, "")
	result := ctx.Executor.ExecuteAction(ctx, defender)
	if result.Canceled {
		t.Fatalf("防御行動が中止されました: %+v", result)
	}
	if inst.GuardRemaining != 2 {
		t.Fatalf("再装填後のガード回数 = %d, want 2", inst.GuardRemaining)
	}
}
