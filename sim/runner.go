// Package sim は、戦闘コアを外部から駆動するためのファサードです。
// ヘッドレスのバッチ実行と対話的な1tick駆動の両方に対応します。
package sim

import (
	"fmt"

	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/data"
	"medasim/ecs/entity"
	"medasim/ecs/system"
	"medasim/event"
)

// Runner は1戦闘分のワールドとフェーズ状態機械を束ねます。
type Runner struct {
	ctx   *system.BattleContext
	phase *system.PhaseMachine
	ticks int
}

// Options は戦闘の初期化パラメータです。
type Options struct {
	Config     *data.Config
	GameData   *core.GameData
	MasterData *data.GameDataManager

	// PlayerTeam に core.TeamNone を渡すと全ユニットがAI制御になります。
	PlayerTeam core.TeamID

	// Seed が 0 の場合は Config の random_seed を使用します。
	Seed int64

	Logger system.BattleLogger
}

// New は戦闘ワールドを構築し、開始待機状態の Runner を返します。
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		cfg := data.DefaultConfig()
		opts.Config = &cfg
	}
	if opts.MasterData == nil {
		return nil, fmt.Errorf("マスターデータが指定されていません")
	}
	if opts.GameData == nil {
		return nil, fmt.Errorf("編成データが指定されていません")
	}
	seed := opts.Seed
	if seed == 0 {
		seed = opts.Config.Game.RandomSeed
	}

	world := donburi.NewWorld()
	if err := entity.InitializeBattleWorld(world, opts.GameData, opts.MasterData, opts.PlayerTeam); err != nil {
		return nil, fmt.Errorf("戦闘ワールドの初期化に失敗しました: %w", err)
	}
	ctx := system.NewBattleContext(world, opts.Config, opts.MasterData, data.NewRand(seed), opts.Logger)
	return &Runner{ctx: ctx, phase: system.NewPhaseMachine()}, nil
}

// Context は内部の BattleContext を返します。テストと上位層が使用します。
func (r *Runner) Context() *system.BattleContext { return r.ctx }

// Phase は現在のゲームフェーズを返します。
func (r *Runner) Phase() core.GamePhase { return r.phase.Current() }

// Turn は現在のターン番号を返します。
func (r *Runner) Turn() int { return r.phase.Turn }

// Ticks は経過tick数を返します。
func (r *Runner) Ticks() int { return r.ticks }

// Result は確定済みの勝敗を返します。
func (r *Runner) Result() core.GameEndResult { return r.phase.Result() }

// Start は戦闘を開始します。
func (r *Runner) Start() ([]event.GameEvent, error) {
	return r.phase.Start(r.ctx)
}

// Tick はシミュレーションを1tick進め、発生した外部向けイベントを返します。
// 一時停止中は何もせず nil を返します。
func (r *Runner) Tick() ([]event.GameEvent, error) {
	if r.phase.Paused() {
		return nil, nil
	}
	r.ticks++
	return r.phase.Update(r.ctx)
}

// SetPaused は一時停止フラグを設定します。一時停止中はゲージが進行しません。
func (r *Runner) SetPaused(paused bool) { r.phase.SetPaused(paused) }

// Paused は一時停止中かを返します。
func (r *Runner) Paused() bool { return r.phase.Paused() }

// SubmitPlayerAction は、入力待ちのプレイヤーユニットへ行動を指示します。
// 対象を省略(nil)した場合はメダルの性格に基づいて自動解決します。
func (r *Runner) SubmitPlayerAction(partKey core.PartSlotKey, target *donburi.Entry, targetSlot core.PartSlotKey) ([]event.GameEvent, error) {
	return r.phase.SubmitPlayerAction(r.ctx, partKey, target, targetSlot)
}

// RunToCompletion は、決着が付くかtick上限に達するまでシミュレーションを
// 進め、発生した全イベントを返します。プレイヤー制御ユニットがいる場合は
// 使用できません(入力待ちで停止しなくなるため)。
func (r *Runner) RunToCompletion(maxTicks int) ([]event.GameEvent, error) {
	var all []event.GameEvent
	if r.phase.Current() == core.PhaseIdle {
		events, err := r.Start()
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	for i := 0; i < maxTicks; i++ {
		if r.phase.Current() == core.PhaseGameOver {
			break
		}
		events, err := r.Tick()
		if err != nil {
			return all, err
		}
		all = append(all, events...)
	}
	if r.phase.Current() != core.PhaseGameOver {
		return all, fmt.Errorf("tick上限 %d に達しましたが決着が付きませんでした", maxTicks)
	}
	return all, nil
}
