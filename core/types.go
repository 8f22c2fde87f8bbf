package core

// --- Enums and Constants ---

type TeamID int
type GamePhase string
type PartSlotKey string
type PartType string
type StateType string
type PartCategory string
type Personality string
type PartStrategyKey string
type TargetScope string
type PartParameter string

const (
	Team1    TeamID = 0
	Team2    TeamID = 1
	TeamNone TeamID = -1
)

const (
	PhaseIdle             GamePhase = "Idle"
	PhaseInitialSelection GamePhase = "InitialSelection"
	PhaseBattleStart      GamePhase = "BattleStart"
	PhaseTurnStart        GamePhase = "TurnStart"
	PhaseActionSelection  GamePhase = "ActionSelection"
	PhaseActionExecution  GamePhase = "ActionExecution"
	PhaseTurnEnd          GamePhase = "TurnEnd"
	PhaseGameOver         GamePhase = "GameOver"
)

const (
	StateCharging         StateType = "charging"
	StateReadySelect      StateType = "ready_select"
	StateSelectedCharging StateType = "selected_charging"
	StateReadyExecute     StateType = "ready_execute"
	StateCooldownComplete StateType = "cooldown_complete"
	StateBroken           StateType = "broken"
)

const (
	PartSlotHead     PartSlotKey = "head"
	PartSlotRightArm PartSlotKey = "r_arm"
	PartSlotLeftArm  PartSlotKey = "l_arm"
	PartSlotLegs     PartSlotKey = "legs"
)

const (
	PartTypeHead PartType = "頭部"
	PartTypeRArm PartType = "右腕"
	PartTypeLArm PartType = "左腕"
	PartTypeLegs PartType = "脚部"
)

const (
	CategoryShoot   PartCategory = "射撃"
	CategoryMelee   PartCategory = "格闘"
	CategorySupport PartCategory = "支援"
	CategoryHeal    PartCategory = "回復"
	CategoryDefend  PartCategory = "防御"
	CategoryNone    PartCategory = "NONE"
)

const (
	PersonalityHunter      Personality = "ハンター"
	PersonalityCrusher     Personality = "クラッシャー"
	PersonalityJoker       Personality = "ジョーカー"
	PersonalityCounter     Personality = "カウンター"
	PersonalityGuard       Personality = "ガード"
	PersonalityFocus       Personality = "フォーカス"
	PersonalityAssist      Personality = "アシスト"
	PersonalityLeaderFocus Personality = "リーダー"
	PersonalityRandom      Personality = "ランダム"
)

const (
	PartStrategyPowerFocus PartStrategyKey = "PowerFocus"
	PartStrategyHealFocus  PartStrategyKey = "HealFocus"
	PartStrategyRandom     PartStrategyKey = "Random"
	PartStrategyNone       PartStrategyKey = "None"
)

const (
	ScopeEnemy TargetScope = "enemy"
	ScopeAlly  TargetScope = "ally"
	ScopeNone  TargetScope = "none"
)

const (
	Might      PartParameter = "Might"
	Success    PartParameter = "Success"
	Armor      PartParameter = "Armor"
	Mobility   PartParameter = "Mobility"
	Propulsion PartParameter = "Propulsion"
	Stability  PartParameter = "Stability"
	Defense    PartParameter = "Defense"
)

const PlayersPerTeam = 3

// AllPartSlots はパーツスロットの走査順を固定するためのリストです。
// 候補選択のタイブレークはこの順序に依存します。
var AllPartSlots = []PartSlotKey{PartSlotHead, PartSlotRightArm, PartSlotLeftArm, PartSlotLegs}

// IsOffensive は攻撃系カテゴリかどうかを返します。
func (c PartCategory) IsOffensive() bool {
	return c == CategoryShoot || c == CategoryMelee
}

// TargetScope はカテゴリが対象とするスコープを返します。
func (c PartCategory) TargetScope() TargetScope {
	switch c {
	case CategoryShoot, CategoryMelee:
		return ScopeEnemy
	case CategorySupport, CategoryHeal:
		return ScopeAlly
	default:
		return ScopeNone
	}
}

// IsActive は行動サイクルの進行に関与する状態かどうかを返します。
// この集合が空になったときにターン終了と判定されます。
func (s StateType) IsActive() bool {
	return s == StateCharging || s == StateReadySelect || s == StateSelectedCharging
}

// IsSelectable は行動選択を受け付けられる状態かどうかを返します。
func (s StateType) IsSelectable() bool {
	return s == StateReadySelect || s == StateCooldownComplete
}

// --- Data Structures ---

// GameEndResult はゲーム終了チェックの結果を保持します。
type GameEndResult struct {
	IsGameOver bool
	Winner     TeamID
	Message    string
}

// PartDefinition はパーツのマスターデータです。戦闘中は変化しません。
type PartDefinition struct {
	ID         string       `yaml:"id"`
	PartName   string       `yaml:"name"`
	Type       PartType     `yaml:"type"`
	Category   PartCategory `yaml:"category"`
	Might      int          `yaml:"might"`
	Success    int          `yaml:"success"`
	Armor      int          `yaml:"armor"`
	Mobility   int          `yaml:"mobility"`
	Propulsion int          `yaml:"propulsion"`
	Stability  int          `yaml:"stability"`
	Defense    int          `yaml:"defense"`
	MaxHP      int          `yaml:"max_hp"`
	Charge     int          `yaml:"charge"`
	Cooldown   int          `yaml:"cooldown"`

	// 特性。ゼロ値は特性なしを意味します。
	Penetrates    bool `yaml:"penetrates"`
	CriticalBonus int  `yaml:"critical_bonus"`
	GuardCount    int  `yaml:"guard_count"`
}

// PartInstanceData は戦闘中に変化するパーツの状態です。
type PartInstanceData struct {
	DefinitionID   string
	CurrentHP      int
	GuardRemaining int
	IsBroken       bool
}

// MedalDefinition はメダルのマスターデータです。
type MedalDefinition struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Personality Personality `yaml:"personality"`
}

// UnitData は1機分の編成データです。
type UnitData struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Team            TeamID  `yaml:"team"`
	IsLeader        bool    `yaml:"is_leader"`
	MedalID         string  `yaml:"medal"`
	HeadID          string  `yaml:"head"`
	RightArmID      string  `yaml:"right_arm"`
	LeftArmID       string  `yaml:"left_arm"`
	LegsID          string  `yaml:"legs"`
	DrawIndex       int     `yaml:"draw_index"`
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
}

// GameData は戦闘セットアップに必要な編成一式です。
type GameData struct {
	Units []UnitData `yaml:"units"`
}

// AvailablePart は行動に使用できるパーツの定義とスロットの組です。
type AvailablePart struct {
	PartDef *PartDefinition
	Slot    PartSlotKey
}
