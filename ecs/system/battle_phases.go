package system

import (
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"medasim/core"
	"medasim/ecs/component"
	"medasim/ecs/entity"
	"medasim/event"
)

// PhaseState は、ゲームフェーズ1つ分の更新処理を定義します。
// フェーズ遷移は PhaseChangeRequestedGameEvent で要求し、PhaseMachine が処理します。
type PhaseState interface {
	Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error)
}

// PhaseMachine は、戦闘全体のフェーズ状態機械です。
// Idle → InitialSelection → BattleStart → (TurnStart → ActionSelection →
// ActionExecution → TurnEnd)* → GameOver と遷移します。
type PhaseMachine struct {
	current core.GamePhase
	states  map[core.GamePhase]PhaseState
	paused  bool

	// Turn は現在のターン番号です。TurnStart で加算されます。
	Turn int

	// pendingSelection はプレイヤー入力待ちのユニットです。
	// SubmitPlayerAction が成立するまでキュー処理は停止します。
	pendingSelection *donburi.Entry

	endResult       core.GameEndResult
	gameOverEmitted bool
}

func NewPhaseMachine() *PhaseMachine {
	return &PhaseMachine{
		current: core.PhaseIdle,
		states: map[core.GamePhase]PhaseState{
			core.PhaseIdle:             &IdlePhase{},
			core.PhaseInitialSelection: &InitialSelectionPhase{},
			core.PhaseBattleStart:      &BattleStartPhase{},
			core.PhaseTurnStart:        &TurnStartPhase{},
			core.PhaseActionSelection:  &ActionSelectionPhase{},
			core.PhaseActionExecution:  &ActionExecutionPhase{},
			core.PhaseTurnEnd:          &TurnEndPhase{},
			core.PhaseGameOver:         &GameOverPhase{},
		},
	}
}

// Current は現在のフェーズを返します。
func (pm *PhaseMachine) Current() core.GamePhase { return pm.current }

// Result は確定済みの勝敗を返します。ゲーム終了前はゼロ値です。
func (pm *PhaseMachine) Result() core.GameEndResult { return pm.endResult }

// SetPaused は一時停止フラグを設定します。一時停止中は Update が何もせず、
// ゲージ進行とフェーズ処理のすべてが停止します。
func (pm *PhaseMachine) SetPaused(paused bool) { pm.paused = paused }

// Paused は一時停止中かを返します。
func (pm *PhaseMachine) Paused() bool { return pm.paused }

// Start は戦闘を開始します。Idle 以外からの呼び出しはエラーです。
func (pm *PhaseMachine) Start(ctx *BattleContext) ([]event.GameEvent, error) {
	if pm.current != core.PhaseIdle {
		return nil, fmt.Errorf("フェーズ %s からは開始できません", pm.current)
	}
	return pm.transitionTo(ctx, core.PhaseInitialSelection), nil
}

// Update は1tick分のフェーズ処理を実行し、外部向けイベントを返します。
// フェーズ遷移要求は内部で消費され、遷移先の処理は次のtickで行われます。
func (pm *PhaseMachine) Update(ctx *BattleContext) ([]event.GameEvent, error) {
	if pm.paused {
		return nil, nil
	}
	state, ok := pm.states[pm.current]
	if !ok {
		return nil, fmt.Errorf("未定義のフェーズです: %s", pm.current)
	}
	events, err := state.Update(ctx, pm)
	if err != nil {
		return nil, err
	}
	var outward []event.GameEvent
	for _, ev := range events {
		if req, isReq := ev.(event.PhaseChangeRequestedGameEvent); isReq {
			outward = append(outward, pm.transitionTo(ctx, req.NextPhase)...)
			continue
		}
		outward = append(outward, ev)
	}
	return outward, nil
}

// transitionTo はフェーズを切り替え、遷移時処理のイベントを返します。
func (pm *PhaseMachine) transitionTo(ctx *BattleContext, next core.GamePhase) []event.GameEvent {
	pm.current = next
	switch next {
	case core.PhaseInitialSelection:
		pm.enterInitialSelection(ctx)
	case core.PhaseGameOver:
		if !pm.gameOverEmitted {
			pm.gameOverEmitted = true
			ctx.Logger.Log("ゲーム終了: %s", pm.endResult.Message)
			return []event.GameEvent{event.GameOverGameEvent{Winner: pm.endResult.Winner, Message: pm.endResult.Message}}
		}
	}
	return nil
}

// enterInitialSelection は、全ユニットをゲージ満タンの選択待ちにし、
// 描画順で選択キューへ登録します。
func (pm *PhaseMachine) enterInitialSelection(ctx *BattleContext) {
	queue := entity.GetSelectionQueue(ctx.World)
	for _, e := range entity.UnitsByDrawIndex(ctx.World) {
		state := component.StateComponent.Get(e)
		if state.Is(core.StateBroken) {
			continue
		}
		if err := entity.FireStateEvent(e, entity.EventInitialSelect); err != nil {
			ctx.Logger.Log("初期選択への遷移に失敗しました: %v", err)
			continue
		}
		gauge := component.GaugeComponent.Get(e)
		gauge.Value = gauge.Max
		queue.Push(e)
	}
}

// markGameOver は勝敗を記録し、GameOver への遷移要求イベントを返します。
func (pm *PhaseMachine) markGameOver(result core.GameEndResult) event.GameEvent {
	pm.endResult = result
	return event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseGameOver}
}

// SubmitPlayerAction は、入力待ちユニットへのプレイヤーの行動指示を適用します。
// 対象が必要なカテゴリで target が nil の場合、性格に基づくAI選択で補完します。
func (pm *PhaseMachine) SubmitPlayerAction(ctx *BattleContext, partKey core.PartSlotKey, target *donburi.Entry, targetSlot core.PartSlotKey) ([]event.GameEvent, error) {
	acting := pm.pendingSelection
	if acting == nil {
		return nil, fmt.Errorf("行動選択待ちのユニットがありません")
	}
	settings := component.SettingsComponent.Get(acting)
	partDef, ok := ctx.PartInfoProvider.GetPartDefinition(acting, partKey)
	if !ok {
		return nil, fmt.Errorf("%s はパーツ %s を使用できません", settings.Name, partKey)
	}
	inst := component.PartsComponent.Get(acting).Map[partKey]
	if inst == nil || inst.IsBroken {
		return nil, fmt.Errorf("%s のパーツ %s は破壊されています", settings.Name, partKey)
	}

	scope := partDef.Category.TargetScope()
	plan := component.ActionPlan{PartKey: partKey, PartDef: partDef, Scope: scope}
	switch {
	case partDef.Category == core.CategoryMelee || scope == core.ScopeNone:
		// 実行時解決または対象不要。
	case target != nil:
		if !IsValidTarget(target, targetSlot) {
			return nil, fmt.Errorf("指定されたターゲットは無効です")
		}
		plan.Target = target
		plan.TargetSlot = targetSlot
	default:
		resolved, slot := ctx.TargetingEngine.DetermineTarget(ctx, acting, scope)
		if resolved == nil {
			return nil, fmt.Errorf("%s の有効なターゲットがありません", settings.Name)
		}
		if partDef.Category == core.CategoryHeal {
			slot = selectHealSlot(ctx, resolved)
			if slot == "" {
				return nil, fmt.Errorf("回復できるパーツがありません")
			}
		}
		plan.Target = resolved
		plan.TargetSlot = slot
	}

	if !ctx.ChargeSystem.StartCharge(ctx, acting, &plan) {
		return nil, fmt.Errorf("%s はチャージを開始できませんでした", settings.Name)
	}
	pm.pendingSelection = nil
	committed := event.ActionCommittedGameEvent{
		ActingEntry: acting,
		UnitName:    settings.Name,
		PartKey:     plan.PartKey,
		Category:    partDef.Category,
	}
	if plan.Target != nil {
		committed.TargetEntity = plan.Target.Entity()
		committed.TargetPartSlot = plan.TargetSlot
	}
	return []event.GameEvent{committed}, nil
}

// processSelectionQueue は選択キューを先頭から処理します。
// プレイヤーユニットに到達すると入力要求を発行して停止し、
// AIユニットは即時に行動を決定します。
func processSelectionQueue(ctx *BattleContext, pm *PhaseMachine) []event.GameEvent {
	var events []event.GameEvent
	queue := entity.GetSelectionQueue(ctx.World)
	// 入力待ち中に機能停止したユニットはキュー処理を塞いだままになるため、
	// 選択不能になった時点で入力待ちを解除する。
	if pm.pendingSelection != nil {
		if state := component.StateComponent.Get(pm.pendingSelection); !state.Current().IsSelectable() {
			pm.pendingSelection = nil
		}
	}
	for pm.pendingSelection == nil {
		head := queue.Pop()
		if head == nil {
			break
		}
		state := component.StateComponent.Get(head)
		if !state.Current().IsSelectable() {
			continue
		}
		if head.HasComponent(component.PlayerControlComponent) {
			pm.pendingSelection = head
			settings := component.SettingsComponent.Get(head)
			events = append(events, event.SelectionRequiredGameEvent{
				ActingEntry: head,
				UnitID:      settings.ID,
				UnitName:    settings.Name,
			})
			break
		}
		aiEvents, retry := AISelectAction(ctx, head)
		events = append(events, aiEvents...)
		if retry {
			// 先頭に戻して次のtickで再試行する。
			queue.PushFront(head)
			break
		}
	}
	return events
}

// anySelectableUnit は、選択待ち状態のユニットが残っているかを返します。
func anySelectableUnit(world donburi.World) bool {
	found := false
	query.NewQuery(filter.Contains(component.StateComponent)).Each(world, func(e *donburi.Entry) {
		state := component.StateComponent.Get(e)
		if state.Current().IsSelectable() {
			found = true
		}
	})
	return found
}

// IdlePhase は開始待機フェーズです。Start の呼び出しを待ちます。
type IdlePhase struct{}

func (p *IdlePhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	return nil, nil
}

// InitialSelectionPhase は戦闘開始前の一斉行動選択フェーズです。
// 全ユニットが選択を終える(または中止する)まで保持されます。
type InitialSelectionPhase struct{}

func (p *InitialSelectionPhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	events := processSelectionQueue(ctx, pm)
	if pm.pendingSelection == nil && !anySelectableUnit(ctx.World) {
		events = append(events, event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseBattleStart})
	}
	return events, nil
}

// BattleStartPhase は戦闘開始の通知のみを行う遷移フェーズです。
type BattleStartPhase struct{}

func (p *BattleStartPhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	return []event.GameEvent{
		event.BattleStartedGameEvent{},
		event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseTurnStart},
	}, nil
}

// TurnStartPhase はターン番号を加算して行動選択フェーズへ移ります。
type TurnStartPhase struct{}

func (p *TurnStartPhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	pm.Turn++
	return []event.GameEvent{
		event.TurnStartedGameEvent{Turn: pm.Turn},
		event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseActionSelection},
	}, nil
}

// ActionSelectionPhase はゲージ進行と行動選択を行うフェーズです。
// 実行待ちユニットが現れると行動実行フェーズへ移ります。
// ターン終了へ直接移る枝は持ちません。行動可能なユニットが残る限り
// ゲージ進行がいずれ実行待ちを生み、全滅時は冒頭の決着判定が
// GameOver へ遷移させるため、このフェーズで停滞することはありません。
type ActionSelectionPhase struct{}

func (p *ActionSelectionPhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	if end := CheckGameEnd(ctx); end.IsGameOver {
		return []event.GameEvent{pm.markGameOver(end)}, nil
	}
	UpdateGaugeSystem(ctx)
	events := processSelectionQueue(ctx, pm)
	if len(entity.GetExecutionQueue(ctx.World).Queue) > 0 {
		events = append(events, event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseActionExecution})
	}
	return events, nil
}

// ActionExecutionPhase は実行キューの先頭ユニットの行動を解決します。
// 1回の更新で1機ずつ解決し、キューが空になるとターン終了へ移ります。
type ActionExecutionPhase struct{}

func (p *ActionExecutionPhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	queue := entity.GetExecutionQueue(ctx.World)
	acting := queue.Pop()
	if acting == nil {
		return []event.GameEvent{event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseTurnEnd}}, nil
	}
	state := component.StateComponent.Get(acting)
	if !state.Is(core.StateReadyExecute) {
		// チャージ中に機能停止したユニットはそのまま読み飛ばす。
		return nil, nil
	}

	var events []event.GameEvent
	result := ctx.Executor.ExecuteAction(ctx, acting)
	UpdateHistorySystem(ctx, &result)
	if !state.Is(core.StateBroken) {
		ctx.ChargeSystem.StartCooldown(ctx, acting)
	}

	if result.Canceled {
		events = append(events, event.ActionCanceledGameEvent{
			ActingEntry: acting,
			UnitName:    result.AttackerName,
			Reason:      "ターゲットが無効になりました",
		})
	} else {
		events = append(events, event.CombatOutcomeGameEvent{Result: result})
	}
	if result.TargetUnitBroken && result.TargetEntry != nil {
		targetSettings := component.SettingsComponent.Get(result.TargetEntry)
		events = append(events, event.UnitBrokenGameEvent{
			UnitID:   targetSettings.ID,
			UnitName: targetSettings.Name,
			Team:     targetSettings.Team,
		})
	}

	if end := CheckGameEnd(ctx); end.IsGameOver {
		events = append(events, pm.markGameOver(end))
		return events, nil
	}
	if len(queue.Queue) == 0 {
		events = append(events, event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseTurnEnd})
	}
	return events, nil
}

// TurnEndPhase はターン上限の判定を行い、次のターンへ移ります。
type TurnEndPhase struct{}

func (p *TurnEndPhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	if end := CheckGameEnd(ctx); end.IsGameOver {
		return []event.GameEvent{pm.markGameOver(end)}, nil
	}
	if ctx.Config.Game.MaxTurns > 0 && pm.Turn >= ctx.Config.Game.MaxTurns {
		return []event.GameEvent{pm.markGameOver(core.GameEndResult{
			IsGameOver: true,
			Winner:     core.TeamNone,
			Message:    "ターン上限に達したため引き分けです。",
		})}, nil
	}
	return []event.GameEvent{event.PhaseChangeRequestedGameEvent{NextPhase: core.PhaseTurnStart}}, nil
}

// GameOverPhase は終端フェーズです。以後の更新では何も起こりません。
type GameOverPhase struct{}

func (p *GameOverPhase) Update(ctx *BattleContext, pm *PhaseMachine) ([]event.GameEvent, error) {
	return nil, nil
}
