package component

import (
	"github.com/yohamta/donburi"
)

// --- Componentの型定義 ---
// 各コンポーネントにユニークな型情報を持たせます。
var (
	SettingsComponent      = donburi.NewComponentType[Settings]()
	PartsComponent         = donburi.NewComponentType[PartsData]()
	MedalComponent         = donburi.NewComponentType[Medal]()
	StateComponent         = donburi.NewComponentType[State]()
	GaugeComponent         = donburi.NewComponentType[Gauge]()
	BattleLogComponent     = donburi.NewComponentType[BattleLog]()
	PlayerControlComponent = donburi.NewComponentType[PlayerControl]()

	// --- Action Components ---
	ActionIntentComponent = donburi.NewComponentType[ActionIntent]()
	TargetComponent       = donburi.NewComponentType[Target]()

	// --- ワールド状態シングルトン ---
	TeamContextComponent    = donburi.NewComponentType[TeamContextData]()
	SelectionQueueComponent = donburi.NewComponentType[SelectionQueueData]()
	ExecutionQueueComponent = donburi.NewComponentType[ExecutionQueueData]()
	WorldStateTag           = donburi.NewComponentType[struct{}]()
)
