package system

import (
	"math/rand"

	"github.com/yohamta/donburi"

	"medasim/data"
)

// BattleContext は、戦闘コアの各システムが共有する依存関係の束です。
// フェーズ更新のたびに各システムへ渡されます。
type BattleContext struct {
	World           donburi.World
	Config          *data.Config
	GameDataManager *data.GameDataManager
	Rand            *rand.Rand
	Logger          BattleLogger

	PartInfoProvider *PartInfoProvider
	TargetSelector   *TargetSelector
	TargetingEngine  *TargetingEngine
	ActionPlanner    *ActionPlanner
	HitCalculator    *HitCalculator
	DamageCalculator *DamageCalculator
	ChargeSystem     *ChargeInitiationSystem
	Executor         *ActionExecutor
}

// NewBattleContext は、すべての協調システムを組み立てた BattleContext を生成します。
func NewBattleContext(world donburi.World, cfg *data.Config, gdm *data.GameDataManager, rnd *rand.Rand, logger BattleLogger) *BattleContext {
	if logger == nil {
		logger = &StandardBattleLogger{}
	}
	ctx := &BattleContext{
		World:           world,
		Config:          cfg,
		GameDataManager: gdm,
		Rand:            rnd,
		Logger:          logger,
	}
	ctx.PartInfoProvider = &PartInfoProvider{GameDataManager: gdm, Config: cfg}
	ctx.TargetSelector = &TargetSelector{PartInfoProvider: ctx.PartInfoProvider}
	ctx.TargetingEngine = NewTargetingEngine(ctx.TargetSelector)
	ctx.ActionPlanner = &ActionPlanner{}
	ctx.HitCalculator = &HitCalculator{Config: cfg, PartInfoProvider: ctx.PartInfoProvider}
	ctx.DamageCalculator = &DamageCalculator{Config: cfg, PartInfoProvider: ctx.PartInfoProvider}
	ctx.ChargeSystem = &ChargeInitiationSystem{PartInfoProvider: ctx.PartInfoProvider}
	ctx.Executor = NewActionExecutor()
	return ctx
}
