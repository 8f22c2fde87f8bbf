package system

import (
	"testing"

	"medasim/core"
	"medasim/ecs/component"
	"medasim/ecs/entity"
)

func TestHunterPrefersLowestHPPart(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "hunter", team: core.Team1, medal: "m_hunter"},
		{id: "e1", team: core.Team2},
		{id: "e2", team: core.Team2},
	}, nil)
	setPartHP(t, entries["e1"], core.PartSlotHead, 30)
	setPartHP(t, entries["e1"], core.PartSlotRightArm, 5)
	setPartHP(t, entries["e1"], core.PartSlotLeftArm, 50)
	setPartHP(t, entries["e2"], core.PartSlotHead, 40)
	setPartHP(t, entries["e2"], core.PartSlotRightArm, 30)
	setPartHP(t, entries["e2"], core.PartSlotLeftArm, 30)

	candidates := (&HunterStrategy{}).SelectCandidates(ctx, entries["hunter"])
	if len(candidates) == 0 {
		t.Fatal("候補が空です")
	}
	first := candidates[0]
	if first.Entry != entries["e1"] || first.Slot != core.PartSlotRightArm {
		t.Fatalf("先頭候補 = %s/%s, want e1/r_arm",
			component.SettingsComponent.Get(first.Entry).ID, first.Slot)
	}
}

func TestCrusherPrefersHighestHPPart(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "crusher", team: core.Team1, medal: "m_crusher"},
		{id: "e1", team: core.Team2},
	}, nil)
	setPartHP(t, entries["e1"], core.PartSlotHead, 30)
	setPartHP(t, entries["e1"], core.PartSlotRightArm, 5)
	setPartHP(t, entries["e1"], core.PartSlotLeftArm, 50)

	candidates := (&CrusherStrategy{}).SelectCandidates(ctx, entries["crusher"])
	if len(candidates) == 0 {
		t.Fatal("候補が空です")
	}
	if first := candidates[0]; first.Slot != core.PartSlotLeftArm {
		t.Fatalf("先頭候補 = %s, want l_arm", first.Slot)
	}
}

func TestHunterTieBreaksByEncounterOrder(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "hunter", team: core.Team1, medal: "m_hunter"},
		{id: "e1", team: core.Team2},
		{id: "e2", team: core.Team2},
	}, nil)
	// 全パーツ同値。描画順・スロット固定順の先頭(e1の頭部)が選ばれる。
	for _, id := range []string{"e1", "e2"} {
		setPartHP(t, entries[id], core.PartSlotHead, 30)
		setPartHP(t, entries[id], core.PartSlotRightArm, 30)
		setPartHP(t, entries[id], core.PartSlotLeftArm, 30)
	}
	candidates := (&HunterStrategy{}).SelectCandidates(ctx, entries["hunter"])
	if first := candidates[0]; first.Entry != entries["e1"] || first.Slot != core.PartSlotHead {
		t.Fatalf("先頭候補 = %s/%s, want e1/head",
			component.SettingsComponent.Get(first.Entry).ID, first.Slot)
	}
}

func TestStrategiesNeverTargetLegsOrBrokenParts(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "hunter", team: core.Team1, medal: "m_hunter"},
		{id: "e1", team: core.Team2},
	}, nil)
	breakPart(t, entries["e1"], core.PartSlotRightArm)
	// 脚部のHPを最小にしても候補に現れない。
	setPartHP(t, entries["e1"], core.PartSlotLegs, 1)

	for _, strategy := range []TargetingStrategy{&HunterStrategy{}, &CrusherStrategy{}, &JokerStrategy{}, &RandomStrategy{}} {
		for _, c := range strategy.SelectCandidates(ctx, entries["hunter"]) {
			if c.Slot == core.PartSlotLegs {
				t.Fatalf("%T が脚部を候補にしました", strategy)
			}
			inst := component.PartsComponent.Get(c.Entry).Map[c.Slot]
			if inst == nil || inst.IsBroken {
				t.Fatalf("%T が破壊済みパーツを候補にしました", strategy)
			}
		}
	}
}

func TestCounterFallsBackToRandomWithoutHistory(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "counter", team: core.Team1, medal: "m_counter"},
		{id: "e1", team: core.Team2},
	}, nil)

	// 攻撃履歴なし: カウンター戦略自体は候補を返さない。
	if got := (&CounterStrategy{}).SelectCandidates(ctx, entries["counter"]); len(got) != 0 {
		t.Fatalf("履歴なしのカウンター候補 = %d件, want 0", len(got))
	}
	// エンジン経由ではランダムへフォールバックして必ず決まる。
	target, slot := ctx.TargetingEngine.DetermineTarget(ctx, entries["counter"], core.ScopeEnemy)
	if target == nil || !IsValidTarget(target, slot) {
		t.Fatal("フォールバックが有効なターゲットを返しませんでした")
	}
}

func TestCounterTargetsLastAttacker(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "counter", team: core.Team1, medal: "m_counter"},
		{id: "e1", team: core.Team2},
		{id: "e2", team: core.Team2},
	}, nil)
	battleLog := component.BattleLogComponent.Get(entries["counter"])
	battleLog.LastAttackedBy = entries["e2"].Entity()

	candidates := (&CounterStrategy{}).SelectCandidates(ctx, entries["counter"])
	if len(candidates) != 1 || candidates[0].Entry != entries["e2"] {
		t.Fatalf("カウンター候補が直近の攻撃者ではありません: %+v", candidates)
	}
}

func TestFocusIgnoresBrokenTargetPart(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "focus", team: core.Team1, medal: "m_focus"},
		{id: "e1", team: core.Team2},
	}, nil)
	battleLog := component.BattleLogComponent.Get(entries["focus"])
	battleLog.LastAttackTarget = entries["e1"].Entity()
	battleLog.LastAttackPartSlot = core.PartSlotRightArm
	breakPart(t, entries["e1"], core.PartSlotRightArm)

	if got := (&FocusStrategy{}).SelectCandidates(ctx, entries["focus"]); len(got) != 0 {
		t.Fatalf("破壊済みパーツへのフォーカス候補 = %d件, want 0", len(got))
	}
}

func TestJokerReturnsSingleValidCandidate(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "joker", team: core.Team1},
		{id: "e1", team: core.Team2},
		{id: "e2", team: core.Team2},
	}, nil)

	candidates := (&JokerStrategy{}).SelectCandidates(ctx, entries["joker"])
	if len(candidates) != 1 {
		t.Fatalf("ジョーカー候補 = %d件, want 1", len(candidates))
	}
	if c := candidates[0]; c.Slot == core.PartSlotLegs || !IsValidTarget(c.Entry, c.Slot) {
		t.Fatalf("ジョーカー候補が無効です: %s", c.Slot)
	}
}

func TestGuardTargetsLeaderAttacker(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "guard", team: core.Team1},
		{id: "leader", team: core.Team1, leader: true},
		{id: "e1", team: core.Team2},
		{id: "e2", team: core.Team2},
	}, nil)

	// リーダーへの攻撃履歴なし: ガード戦略自体は候補を返さない。
	if got := (&GuardStrategy{}).SelectCandidates(ctx, entries["guard"]); len(got) != 0 {
		t.Fatalf("履歴なしのガード候補 = %d件, want 0", len(got))
	}

	record := entity.GetTeamContext(ctx.World).Record(core.Team1)
	record.LeaderLastAttackedBy = entries["e2"].Entity()
	candidates := (&GuardStrategy{}).SelectCandidates(ctx, entries["guard"])
	if len(candidates) != 1 || candidates[0].Entry != entries["e2"] {
		t.Fatalf("ガード候補がリーダーを攻撃した敵ではありません: %+v", candidates)
	}
}

func TestAssistFollowsTeamLastAttack(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "assist", team: core.Team1},
		{id: "e1", team: core.Team2},
		{id: "e2", team: core.Team2},
	}, nil)
	record := entity.GetTeamContext(ctx.World).Record(core.Team1)
	record.LastAttackTarget = entries["e2"].Entity()
	record.LastAttackPartSlot = core.PartSlotRightArm

	candidates := (&AssistStrategy{}).SelectCandidates(ctx, entries["assist"])
	if len(candidates) != 1 || candidates[0].Entry != entries["e2"] || candidates[0].Slot != core.PartSlotRightArm {
		t.Fatalf("アシスト候補がチームの直前攻撃先ではありません: %+v", candidates)
	}

	// 追撃先パーツが破壊されたら候補を返さない(エンジンがフォールバックする)。
	breakPart(t, entries["e2"], core.PartSlotRightArm)
	if got := (&AssistStrategy{}).SelectCandidates(ctx, entries["assist"]); len(got) != 0 {
		t.Fatalf("破壊済みパーツへのアシスト候補 = %d件, want 0", len(got))
	}
}

func TestLeaderFocusTargetsEnemyLeader(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "lf", team: core.Team1},
		{id: "e1", team: core.Team2},
		{id: "boss", team: core.Team2, leader: true},
	}, nil)

	candidates := (&LeaderFocusStrategy{}).SelectCandidates(ctx, entries["lf"])
	if len(candidates) != 1 || candidates[0].Entry != entries["boss"] {
		t.Fatalf("リーダーフォーカス候補が敵リーダーではありません: %+v", candidates)
	}
}

func TestLeaderFocusEmptyWithoutEnemyLeader(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "lf", team: core.Team1},
		{id: "e1", team: core.Team2},
	}, nil)
	if got := (&LeaderFocusStrategy{}).SelectCandidates(ctx, entries["lf"]); len(got) != 0 {
		t.Fatalf("敵リーダー不在の候補 = %d件, want 0", len(got))
	}
}

func TestUnknownPersonalityFallsBackToRandom(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "odd", team: core.Team1, medal: "m_unknown"},
		{id: "e1", team: core.Team2},
	}, nil)
	target, slot := ctx.TargetingEngine.DetermineTarget(ctx, entries["odd"], core.ScopeEnemy)
	if target == nil || !IsValidTarget(target, slot) {
		t.Fatal("未知の性格がランダムへフォールバックしませんでした")
	}
}

func TestDetermineTargetReturnsNilWhenNoEnemies(t *testing.T) {
	ctx, entries := newTestContext(t, []testUnit{
		{id: "alone", team: core.Team1, medal: "m_hunter"},
	}, nil)
	if target, _ := ctx.TargetingEngine.DetermineTarget(ctx, entries["alone"], core.ScopeEnemy); target != nil {
		t.Fatal("敵不在でもターゲットが返りました")
	}
}
