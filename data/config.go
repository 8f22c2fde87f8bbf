package data

// Config はバトル全体のバランス設定を保持します。
// balance.yaml から直接デシリアライズされます。
type Config struct {
	Time struct {
		// 1tickあたりのゲージ進行量の基準値です。ゲージ満タンは100です。
		TickInterval float64 `yaml:"tick_interval"`
		// 推進力がチャージ/クールダウン時間へ与える影響係数です。
		PropulsionEffectRate float64 `yaml:"propulsion_effect_rate"`
	} `yaml:"time"`

	Hit struct {
		BaseChance float64 `yaml:"base_chance"`
		MinChance  float64 `yaml:"min_chance"`
		MaxChance  float64 `yaml:"max_chance"`
	} `yaml:"hit"`

	Defense struct {
		BaseChance float64 `yaml:"base_chance"`
		MinChance  float64 `yaml:"min_chance"`
		MaxChance  float64 `yaml:"max_chance"`
	} `yaml:"defense"`

	Critical struct {
		BaseChance        float64 `yaml:"base_chance"`
		SuccessRateFactor float64 `yaml:"success_rate_factor"`
		MinChance         float64 `yaml:"min_chance"`
		MaxChance         float64 `yaml:"max_chance"`
	} `yaml:"critical"`

	Damage struct {
		// 基礎ダメージを除算する係数です。最終ダメージ = 基礎/係数 + 威力。
		AdjustmentDivisor int `yaml:"adjustment_divisor"`
	} `yaml:"damage"`

	Game struct {
		RandomSeed int64 `yaml:"random_seed"`
		// 1戦闘あたりのターン数上限。0は無制限です。
		MaxTurns int `yaml:"max_turns"`
	} `yaml:"game"`
}

// DefaultConfig は設定ファイルなしでも戦闘を成立させるための既定値を返します。
// テストおよびサービス起動時のフォールバックとして使用されます。
func DefaultConfig() Config {
	var cfg Config
	cfg.Time.TickInterval = 1.0
	cfg.Time.PropulsionEffectRate = 0.05
	cfg.Hit.BaseChance = 50
	cfg.Hit.MinChance = 5
	cfg.Hit.MaxChance = 95
	cfg.Defense.BaseChance = 30
	cfg.Defense.MinChance = 5
	cfg.Defense.MaxChance = 90
	cfg.Critical.BaseChance = 5
	cfg.Critical.SuccessRateFactor = 0.1
	cfg.Critical.MinChance = 0
	cfg.Critical.MaxChance = 50
	cfg.Damage.AdjustmentDivisor = 4
	cfg.Game.MaxTurns = 100
	return cfg
}
