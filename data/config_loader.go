package data

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"medasim/core"
)

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s のパースに失敗しました: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadConfig は balance.yaml を読み込みます。
// ファイルが存在しない場合は既定値を返します。
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Damage.AdjustmentDivisor <= 0 {
		return cfg, fmt.Errorf("damage.adjustment_divisor は正の値が必要です: %d", cfg.Damage.AdjustmentDivisor)
	}
	return cfg, nil
}

// LoadMasterData は dir 以下の medals.yaml / parts.yaml を読み込み、
// 検証済みの GameDataManager を構築します。
func LoadMasterData(dir string) (*GameDataManager, error) {
	gdm := NewGameDataManager()

	var parts struct {
		Parts []core.PartDefinition `yaml:"parts"`
	}
	if err := loadYAML(filepath.Join(dir, "parts.yaml"), &parts); err != nil {
		return nil, err
	}
	for i := range parts.Parts {
		if err := gdm.AddPartDefinition(&parts.Parts[i]); err != nil {
			return nil, err
		}
	}

	var medals struct {
		Medals []core.MedalDefinition `yaml:"medals"`
	}
	if err := loadYAML(filepath.Join(dir, "medals.yaml"), &medals); err != nil {
		return nil, err
	}
	for i := range medals.Medals {
		if err := gdm.AddMedalDefinition(&medals.Medals[i]); err != nil {
			return nil, err
		}
	}

	return gdm, nil
}

// LoadGameData は units.yaml から編成データを読み込みます。
func LoadGameData(dir string, gdm *GameDataManager) (*core.GameData, error) {
	var gameData core.GameData
	if err := loadYAML(filepath.Join(dir, "units.yaml"), &gameData); err != nil {
		return nil, err
	}

	for _, u := range gameData.Units {
		if _, ok := gdm.GetMedalDefinition(u.MedalID); !ok {
			return nil, fmt.Errorf("ユニット %s のメダル定義 %s が見つかりません", u.ID, u.MedalID)
		}
		for _, partID := range []string{u.HeadID, u.RightArmID, u.LeftArmID, u.LegsID} {
			if _, ok := gdm.GetPartDefinition(partID); !ok {
				return nil, fmt.Errorf("ユニット %s のパーツ定義 %s が見つかりません", u.ID, partID)
			}
		}
	}
	return &gameData, nil
}
