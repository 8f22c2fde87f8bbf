// medasim のヘッドレス実行コマンドです。
// 編成データで指定された戦闘をAI同士で複数回シミュレートし、
// 結果を SQLite に記録して集計を表示します。
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/system"
	"medasim/event"
	"medasim/sim"
	"medasim/store"
)

func main() {
	var (
		assetsDir = flag.String("assets", "assets", "マスターデータのディレクトリ")
		dbPath    = flag.String("db", "battles.db", "戦闘結果データベースのパス")
		battles   = flag.Int("n", 1, "実行する戦闘回数")
		seed      = flag.Int64("seed", 0, "乱数シード (0 は balance.yaml の値)")
		maxTicks  = flag.Int("max-ticks", 100000, "1戦闘あたりのtick上限")
		verbose   = flag.Bool("v", false, "イベントログを表示する")
	)
	flag.Parse()

	cfg, err := data.LoadConfig(filepath.Join(*assetsDir, "balance.yaml"))
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	gdm, err := data.LoadMasterData(*assetsDir)
	if err != nil {
		log.Fatalf("マスターデータの読み込みに失敗しました: %v", err)
	}
	gameData, err := data.LoadGameData(*assetsDir, gdm)
	if err != nil {
		log.Fatalf("編成データの読み込みに失敗しました: %v", err)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("データベースを開けませんでした: %v", err)
	}
	defer db.Close()

	baseSeed := *seed
	if baseSeed == 0 {
		baseSeed = cfg.Game.RandomSeed
	}

	for i := 0; i < *battles; i++ {
		battleSeed := baseSeed + int64(i)
		if err := runBattle(&cfg, gameData, gdm, db, battleSeed, *maxTicks, *verbose); err != nil {
			log.Fatalf("戦闘 %d の実行に失敗しました: %v", i+1, err)
		}
	}

	printSummary(db)
}

func runBattle(cfg *data.Config, gameData *core.GameData, gdm *data.GameDataManager, db *store.Store, seed int64, maxTicks int, verbose bool) error {
	var logger system.BattleLogger = &system.NopBattleLogger{}
	if verbose {
		logger = &system.StandardBattleLogger{}
	}
	runner, err := sim.New(sim.Options{
		Config:     cfg,
		GameData:   gameData,
		MasterData: gdm,
		PlayerTeam: core.TeamNone,
		Seed:       seed,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	startedAt := time.Now()
	events, err := runner.RunToCompletion(maxTicks)
	if err != nil {
		return err
	}
	if verbose {
		for _, ev := range events {
			printEvent(ev)
		}
	}

	result := runner.Result()
	rec := store.BattleRecord{
		StartedAt: startedAt,
		Seed:      seed,
		Winner:    result.Winner,
		Turns:     runner.Turn(),
		Ticks:     runner.Ticks(),
		Message:   result.Message,
	}
	if err := db.SaveRecord(&rec); err != nil {
		return err
	}
	fmt.Printf("seed=%d %s (%dターン, %dtick)\n", seed, result.Message, rec.Turns, rec.Ticks)
	return nil
}

func printEvent(ev event.GameEvent) {
	switch e := ev.(type) {
	case event.TurnStartedGameEvent:
		fmt.Printf("--- ターン %d ---\n", e.Turn)
	case event.ActionCommittedGameEvent:
		fmt.Printf("%s が %s で行動を開始\n", e.UnitName, e.PartKey)
	case event.ActionCanceledGameEvent:
		fmt.Printf("%s は行動を中止 (%s)\n", e.UnitName, e.Reason)
	case event.CombatOutcomeGameEvent:
		r := e.Result
		if !r.ActionDidHit {
			fmt.Printf("%s の %s は外れた\n", r.AttackerName, r.ActionName)
			return
		}
		fmt.Printf("%s の %s が %s に命中 (ダメージ %d)\n", r.AttackerName, r.ActionName, r.DefenderName, r.TotalDamage())
	case event.UnitBrokenGameEvent:
		fmt.Printf("%s は機能停止した\n", e.UnitName)
	case event.GameOverGameEvent:
		fmt.Printf("%s\n", e.Message)
	}
}

func printSummary(db *store.Store) {
	counts, err := db.WinCounts()
	if err != nil {
		log.Printf("集計の取得に失敗しました: %v", err)
		return
	}
	fmt.Printf("通算: チーム1 %d勝 / チーム2 %d勝 / 引き分け %d\n",
		counts[core.Team1], counts[core.Team2], counts[core.TeamNone])
}
