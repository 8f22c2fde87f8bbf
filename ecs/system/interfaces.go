package system

import (
	"github.com/yohamta/donburi"

	"medasim/core"
	"medasim/ecs/component"
)

// TargetingStrategy は、性格ごとのターゲット候補列挙アルゴリズムを定義します。
// 戦略は候補を列挙するだけで、フォールバックは呼び出し側(TargetingEngine)が
// 一元的に担当します。
type TargetingStrategy interface {
	// SelectCandidates は、優先順に並んだターゲット候補を返します。
	// 有効な候補がない場合は空スライスを返します。
	SelectCandidates(ctx *BattleContext, actingEntry *donburi.Entry) []component.TargetCandidate
}

// ActionHandler は、パーツカテゴリごとの行動実行ロジックを定義します。
type ActionHandler interface {
	Execute(ctx *BattleContext, actingEntry *donburi.Entry, intent *component.ActionIntent, partDef *core.PartDefinition) component.ActionResult
}

// BattleLogger は、戦闘コアの診断ログ出力を抽象化します。
// 既定実装は標準の log パッケージに委譲します。
type BattleLogger interface {
	Log(format string, args ...interface{})
}
