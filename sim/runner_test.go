package sim

import (
	"testing"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/system"
	"medasim/event"
)

func testSetup(t *testing.T) (*data.Config, *core.GameData, *data.GameDataManager) {
	t.Helper()
	gdm := data.NewGameDataManager()
	parts := []*core.PartDefinition{
		{ID: "head", PartName: "ヘッド", Type: core.PartTypeHead, Category: core.CategoryShoot, Might: 12, Success: 70, Armor: 5, MaxHP: 40, Charge: 2, Cooldown: 2},
		{ID: "rifle", PartName: "ライフル", Type: core.PartTypeRArm, Category: core.CategoryShoot, Might: 18, Success: 65, Armor: 5, MaxHP: 30, Charge: 3, Cooldown: 2},
		{ID: "sword", PartName: "ソード", Type: core.PartTypeLArm, Category: core.CategoryMelee, Might: 28, Success: 50, Armor: 5, MaxHP: 30, Charge: 2, Cooldown: 3},
		{ID: "legs", PartName: "レッグ", Type: core.PartTypeLegs, Category: core.CategoryNone, Armor: 8, Mobility: 10, Propulsion: 4, MaxHP: 45},
	}
	for _, p := range parts {
		if err := gdm.AddPartDefinition(p); err != nil {
			t.Fatalf("AddPartDefinition: %v", err)
		}
	}
	medals := []*core.MedalDefinition{
		{ID: "hunter", Name: "ハンター", Personality: core.PersonalityHunter},
		{ID: "crusher", Name: "クラッシャー", Personality: core.PersonalityCrusher},
	}
	for _, m := range medals {
		if err := gdm.AddMedalDefinition(m); err != nil {
			t.Fatalf("AddMedalDefinition: %v", err)
		}
	}

	gameData := &core.GameData{Units: []core.UnitData{
		{ID: "a1", Name: "a1", Team: core.Team1, IsLeader: true, MedalID: "hunter", HeadID: "head", RightArmID: "rifle", LeftArmID: "sword", LegsID: "legs", DrawIndex: 0},
		{ID: "a2", Name: "a2", Team: core.Team1, MedalID: "crusher", HeadID: "head", RightArmID: "rifle", LeftArmID: "sword", LegsID: "legs", DrawIndex: 1},
		{ID: "b1", Name: "b1", Team: core.Team2, IsLeader: true, MedalID: "crusher", HeadID: "head", RightArmID: "rifle", LeftArmID: "sword", LegsID: "legs", DrawIndex: 2},
		{ID: "b2", Name: "b2", Team: core.Team2, MedalID: "hunter", HeadID: "head", RightArmID: "rifle", LeftArmID: "sword", LegsID: "legs", DrawIndex: 3},
	}}
	cfg := data.DefaultConfig()
	return &cfg, gameData, gdm
}

func newTestRunner(t *testing.T, seed int64) *Runner {
	t.Helper()
	cfg, gameData, gdm := testSetup(t)
	runner, err := New(Options{
		Config:     cfg,
		GameData:   gameData,
		MasterData: gdm,
		PlayerTeam: core.TeamNone,
		Seed:       seed,
		Logger:     &system.NopBattleLogger{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return runner
}

func TestRunToCompletionReachesGameOver(t *testing.T) {
	runner := newTestRunner(t, 7)
	events, err := runner.RunToCompletion(100000)
	if err != nil {
		t.Fatalf("RunToCompletion: %v", err)
	}
	if runner.Phase() != core.PhaseGameOver {
		t.Fatalf("フェーズ = %s, want GameOver", runner.Phase())
	}

	gameOverCount := 0
	for _, ev := range events {
		if _, ok := ev.(event.GameOverGameEvent); ok {
			gameOverCount++
		}
	}
	if gameOverCount != 1 {
		t.Fatalf("GameOverイベント数 = %d, want 1", gameOverCount)
	}
	result := runner.Result()
	if !result.IsGameOver {
		t.Fatal("勝敗が確定していません")
	}
}

func TestSameSeedIsDeterministic(t *testing.T) {
	r1 := newTestRunner(t, 42)
	r2 := newTestRunner(t, 42)
	if _, err := r1.RunToCompletion(100000); err != nil {
		t.Fatalf("1回目: %v", err)
	}
	if _, err := r2.RunToCompletion(100000); err != nil {
		t.Fatalf("2回目: %v", err)
	}
	if r1.Result().Winner != r2.Result().Winner {
		t.Fatalf("勝者が一致しません: %v vs %v", r1.Result().Winner, r2.Result().Winner)
	}
	if r1.Ticks() != r2.Ticks() {
		t.Fatalf("tick数が一致しません: %d vs %d", r1.Ticks(), r2.Ticks())
	}
	if r1.Turn() != r2.Turn() {
		t.Fatalf("ターン数が一致しません: %d vs %d", r1.Turn(), r2.Turn())
	}
}

func TestPausedRunnerDoesNotAdvance(t *testing.T) {
	runner := newTestRunner(t, 1)
	if _, err := runner.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	runner.SetPaused(true)
	for i := 0; i < 10; i++ {
		events, err := runner.Tick()
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if len(events) != 0 {
			t.Fatal("一時停止中にイベントが発生しました")
		}
	}
	if runner.Ticks() != 0 {
		t.Fatalf("一時停止中のtick数 = %d, want 0", runner.Ticks())
	}

	runner.SetPaused(false)
	if _, err := runner.Tick(); err != nil {
		t.Fatalf("再開後の Tick: %v", err)
	}
	if runner.Ticks() != 1 {
		t.Fatalf("再開後のtick数 = %d, want 1", runner.Ticks())
	}
}
