package data

import (
	"fmt"
	"math/rand"

	"medasim/core"
)

// GameDataManager はパーツとメダルのマスターデータを保持します。
// 戦闘中は読み取り専用です。
type GameDataManager struct {
	partDefinitions  map[string]*core.PartDefinition
	medalDefinitions map[string]*core.MedalDefinition
}

// NewGameDataManager は空の GameDataManager を生成します。
// 定義はローダーまたはテストコードから AddPartDefinition / AddMedalDefinition で登録します。
func NewGameDataManager() *GameDataManager {
	return &GameDataManager{
		partDefinitions:  make(map[string]*core.PartDefinition),
		medalDefinitions: make(map[string]*core.MedalDefinition),
	}
}

// AddPartDefinition はパーツ定義を検証して登録します。
func (gdm *GameDataManager) AddPartDefinition(def *core.PartDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("パーツ定義にIDがありません: %+v", def)
	}
	if _, exists := gdm.partDefinitions[def.ID]; exists {
		return fmt.Errorf("パーツ定義 %s が重複しています", def.ID)
	}
	if def.Might < 0 || def.Success < 0 || def.Armor < 0 || def.Mobility < 0 {
		return fmt.Errorf("パーツ定義 %s に負のパラメータがあります", def.ID)
	}
	if def.MaxHP <= 0 {
		return fmt.Errorf("パーツ定義 %s のMaxHPは正の値が必要です: %d", def.ID, def.MaxHP)
	}
	gdm.partDefinitions[def.ID] = def
	return nil
}

// AddMedalDefinition はメダル定義を登録します。
func (gdm *GameDataManager) AddMedalDefinition(def *core.MedalDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("メダル定義にIDがありません: %+v", def)
	}
	if _, exists := gdm.medalDefinitions[def.ID]; exists {
		return fmt.Errorf("メダル定義 %s が重複しています", def.ID)
	}
	gdm.medalDefinitions[def.ID] = def
	return nil
}

// GetPartDefinition はIDからパーツ定義を取得します。
func (gdm *GameDataManager) GetPartDefinition(id string) (*core.PartDefinition, bool) {
	def, ok := gdm.partDefinitions[id]
	return def, ok
}

// GetMedalDefinition はIDからメダル定義を取得します。
func (gdm *GameDataManager) GetMedalDefinition(id string) (*core.MedalDefinition, bool) {
	def, ok := gdm.medalDefinitions[id]
	return def, ok
}

// NewRand はシード値から決定的な乱数生成器を生成します。
// seed が 0 の場合は 1 に置き換えます。
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}
