package component

// ECSのCに相当するコンポーネント定義を集約します。
// coreパッケージおよびdonburiライブラリにのみ依存します。

import (
	"github.com/looplab/fsm"
	"github.com/yohamta/donburi"

	"medasim/core"
)

// Settings はユニットの不変的な設定を保持します。
type Settings struct {
	ID        string
	Name      string
	Team      core.TeamID
	IsLeader  bool
	DrawIndex int // ターゲット候補の安定ソートに使用されます。
}

// PartsData はユニットのパーツ一式を保持します。
type PartsData struct {
	Map map[core.PartSlotKey]*core.PartInstanceData
}

// State はユニットのライフサイクル状態機械を保持します。
type State struct {
	FSM *fsm.FSM
}

// Current は現在のライフサイクル状態を返します。
func (s *State) Current() core.StateType {
	return core.StateType(s.FSM.Current())
}

// Is は現在の状態が st かどうかを返します。
func (s *State) Is(st core.StateType) bool {
	return s.FSM.Is(string(st))
}

// Gauge はチャージ/クールダウンの進行状況を保持します。0-100で満タンです。
type Gauge struct {
	Value           float64
	Max             float64
	SpeedMultiplier float64
	// 現在の行動（チャージまたはクールダウン）の所要tick数です。
	TotalDuration   float64
	ProgressCounter float64
}

// ActionIntent は、AIまたはプレイヤーによって決定された行動の意図を表します。
type ActionIntent struct {
	SelectedPartKey core.PartSlotKey
	Scope           core.TargetScope
}

// Target は行動の対象となるユニットとパーツを表します。
// TargetEntity が 0 の場合、対象は未解決（格闘など実行時解決）です。
type Target struct {
	TargetEntity   donburi.Entity
	TargetPartSlot core.PartSlotKey
}

// BattleLog はユニットごとの直近の攻撃履歴です。
// HistorySystem だけが書き込み、ターゲティング戦略は読み取りのみを行います。
type BattleLog struct {
	LastAttackedBy     donburi.Entity
	LastAttackTarget   donburi.Entity
	LastAttackPartSlot core.PartSlotKey
}

// TeamRecord はチーム単位の攻撃履歴です。
type TeamRecord struct {
	LastAttackTarget     donburi.Entity
	LastAttackPartSlot   core.PartSlotKey
	LeaderLastAttackedBy donburi.Entity
	AccuracyBuffs        []TeamBuff
}

// TeamBuff は支援行動によるチーム命中補正です。
// 発生源パーツが破壊されると解除されます。
type TeamBuff struct {
	SourceEntity donburi.Entity
	SourceSlot   core.PartSlotKey
	Multiplier   float64
}

// TeamContextData はチーム履歴を保持するシングルトンコンポーネントです。
type TeamContextData struct {
	Records map[core.TeamID]*TeamRecord
}

// Record は指定チームの履歴レコードを返します。未登録なら作成します。
func (tc *TeamContextData) Record(team core.TeamID) *TeamRecord {
	rec, ok := tc.Records[team]
	if !ok {
		rec = &TeamRecord{}
		tc.Records[team] = rec
	}
	return rec
}

// PlayerControl はプレイヤーが操作するユニットであることを示すタグコンポーネントです。
// 付与されていないユニットはAIが行動を決定します。
type PlayerControl struct{}

// Medal はユニットに装着されたメダルです。性格がターゲティング戦略を決めます。
type Medal struct {
	ID          string
	Name        string
	Personality core.Personality
}

// --- 行動計画 ---

// ActionPlan は1つの行動候補（パーツとその解決済みターゲット）です。
type ActionPlan struct {
	PartKey    core.PartSlotKey
	PartDef    *core.PartDefinition
	Scope      core.TargetScope
	Target     *donburi.Entry // nilの場合は実行時解決
	TargetSlot core.PartSlotKey
}

// TargetCandidate はターゲティング戦略が返す候補です。
type TargetCandidate struct {
	Entry *donburi.Entry
	Slot  core.PartSlotKey
}

// --- キュー ---

// SelectionQueueData は行動選択待ちユニットのFIFOキューです。
// 選択に失敗したユニットは先頭に再挿入されます（優先リトライ）。
type SelectionQueueData struct {
	Queue []*donburi.Entry
}

// Push は末尾に追加します。既にキューにある場合は何もしません。
func (q *SelectionQueueData) Push(entry *donburi.Entry) {
	for _, e := range q.Queue {
		if e == entry {
			return
		}
	}
	q.Queue = append(q.Queue, entry)
}

// PushFront は先頭に挿入します。無効な選択をしたユニットの優先リトライに使用します。
func (q *SelectionQueueData) PushFront(entry *donburi.Entry) {
	for i, e := range q.Queue {
		if e == entry {
			q.Queue = append(q.Queue[:i], q.Queue[i+1:]...)
			break
		}
	}
	q.Queue = append([]*donburi.Entry{entry}, q.Queue...)
}

// Pop は先頭を取り出します。空の場合は nil を返します。
func (q *SelectionQueueData) Pop() *donburi.Entry {
	if len(q.Queue) == 0 {
		return nil
	}
	head := q.Queue[0]
	q.Queue = q.Queue[1:]
	return head
}

// ExecutionQueueData は実行準備完了ユニットのキューです。
// 同時に実行状態に入れるユニットは1機のみです。
type ExecutionQueueData struct {
	Queue []*donburi.Entry
}

// Push は末尾に追加します。既にキューにある場合は何もしません。
func (q *ExecutionQueueData) Push(entry *donburi.Entry) {
	for _, e := range q.Queue {
		if e == entry {
			return
		}
	}
	q.Queue = append(q.Queue, entry)
}

// Pop は先頭要素を取り出します。空の場合は nil を返します。
func (q *ExecutionQueueData) Pop() *donburi.Entry {
	if len(q.Queue) == 0 {
		return nil
	}
	entry := q.Queue[0]
	q.Queue = q.Queue[1:]
	return entry
}

// --- 戦闘結果 ---

// DamageEvent は1回のダメージ適用を表します。貫通時は複数発生します。
type DamageEvent struct {
	PartSlot   core.PartSlotKey
	Damage     int
	PartBroken bool
}

// ActionResult はアクション実行の詳細な結果を保持します。
type ActionResult struct {
	ActingEntry    *donburi.Entry
	TargetEntry    *donburi.Entry
	TargetPartSlot core.PartSlotKey

	Canceled       bool // 有効なターゲットが存在せず行動が中止された
	ActionDidHit   bool
	IsCritical     bool
	IsDefended     bool
	WasIntercepted bool // ガーディアンによる割り込みが発生した
	GuardianEntry  *donburi.Entry

	// 実際にダメージを受けたパーツと、貫通を含むダメージ列です。
	ActualHitPartSlot core.PartSlotKey
	DamageEvents      []DamageEvent

	HealAmount int

	TargetUnitBroken bool

	// 通知用の表示情報です。
	AttackerName   string
	DefenderName   string
	ActionName     string
	ActionCategory core.PartCategory
}

// TotalDamage はダメージ列の合計を返します。
func (r *ActionResult) TotalDamage() int {
	total := 0
	for _, ev := range r.DamageEvents {
		total += ev.Damage
	}
	return total
}
