package event

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/ecs/component"
)

// GameEvent は、戦闘コアから発行されるすべての通知を示すマーカーインターフェースです。
// プレゼンテーション側の協調コンポーネントはこれらのイベントのみを受け取ります。
type GameEvent interface {
	isGameEvent()
}

// PhaseChangeRequestedGameEvent は、フェーズ遷移が要求されたことを示す内部イベントです。
// PhaseMachine が消費するため、外部には届きません。
type PhaseChangeRequestedGameEvent struct {
	NextPhase core.GamePhase
}

func (e PhaseChangeRequestedGameEvent) isGameEvent() {}

// BattleStartedGameEvent は戦闘が開始されたことを示すイベントです。
type BattleStartedGameEvent struct{}

func (e BattleStartedGameEvent) isGameEvent() {}

// TurnStartedGameEvent は新しいターンが開始されたことを示すイベントです。
type TurnStartedGameEvent struct {
	Turn int
}

func (e TurnStartedGameEvent) isGameEvent() {}

// SelectionRequiredGameEvent は、プレイヤー制御ユニットの行動選択が必要に
// なったことを示すイベントです。入力側は SubmitPlayerAction で応答します。
type SelectionRequiredGameEvent struct {
	ActingEntry *donburi.Entry
	UnitID      string
	UnitName    string
}

func (e SelectionRequiredGameEvent) isGameEvent() {}

// ActionCommittedGameEvent は、ユニットが行動を確定しチャージを開始したことを
// 示すイベントです。演出側はこれを受けてアニメーションを開始できます。
type ActionCommittedGameEvent struct {
	ActingEntry    *donburi.Entry
	UnitName       string
	PartKey        core.PartSlotKey
	Category       core.PartCategory
	TargetEntity   donburi.Entity
	TargetPartSlot core.PartSlotKey
}

func (e ActionCommittedGameEvent) isGameEvent() {}

// ActionCanceledGameEvent は、有効なターゲットが存在せず行動が中止されたことを
// 示すイベントです。ユニットは行動済みとしてクールダウンに入ります。
type ActionCanceledGameEvent struct {
	ActingEntry *donburi.Entry
	UnitName    string
	Reason      string
}

func (e ActionCanceledGameEvent) isGameEvent() {}

// CombatOutcomeGameEvent は、戦闘結果が確定したことを示すイベントです。
type CombatOutcomeGameEvent struct {
	Result component.ActionResult
}

func (e CombatOutcomeGameEvent) isGameEvent() {}

// UnitBrokenGameEvent は、ユニットの頭部が破壊され機能停止したことを示すイベントです。
type UnitBrokenGameEvent struct {
	UnitID   string
	UnitName string
	Team     core.TeamID
}

func (e UnitBrokenGameEvent) isGameEvent() {}

// GameOverGameEvent は、戦闘が終了したことを示すイベントです。一度だけ発行されます。
type GameOverGameEvent struct {
	Winner  core.TeamID
	Message string
}

func (e GameOverGameEvent) isGameEvent() {}
