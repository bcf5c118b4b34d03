package engineconfig

import (
	"github.com/wonny/finpulse/internal/overview"
	"github.com/wonny/finpulse/internal/scoring"
	"github.com/wonny/finpulse/internal/selection"
)

// Config는 스코어링 엔진의 전체 설정
// ⭐ SSOT: 종목 유니버스/섹터/룩백은 여기서만 정의
type Config struct {
	Meta          Meta              `yaml:"meta" json:"meta"`
	Universe      Universe          `yaml:"universe" json:"universe"`
	Benchmark     Benchmark         `yaml:"benchmark" json:"benchmark"`
	Sectors       []overview.Sector `yaml:"sectors" json:"sectors"`
	Lookbacks     Lookbacks         `yaml:"lookbacks" json:"lookbacks"`
	Opportunities Opportunities     `yaml:"opportunities" json:"opportunities"`
	Scoring       Scoring           `yaml:"scoring" json:"scoring"`
}

// Meta 메타 정보
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// Universe 스캔 대상 (순서 유지)
type Universe struct {
	Symbols []string `yaml:"symbols" json:"symbols"`
}

// Benchmark 시장 심리 기준 종목
type Benchmark struct {
	Symbol       string `yaml:"symbol" json:"symbol"`
	LookbackDays int    `yaml:"lookback_days" json:"lookback_days"`
}

// Lookbacks 엔진별 조회 기간 (일)
type Lookbacks struct {
	SnapshotDays int `yaml:"snapshot_days" json:"snapshot_days"`
	RiskDays     int `yaml:"risk_days" json:"risk_days"`
}

// Opportunities 기회 스크리너 설정. Zero values take the variant's defaults.
type Opportunities struct {
	Variant    string   `yaml:"variant" json:"variant"` // full | reduced
	Threshold  *float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	TopN       int      `yaml:"top_n,omitempty" json:"top_n,omitempty"`
	MaxSymbols int      `yaml:"max_symbols,omitempty" json:"max_symbols,omitempty"`
}

// Scoring PulseScore 설정
type Scoring struct {
	TrendFormula string `yaml:"trend_formula" json:"trend_formula"` // standard | strength
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Meta: Meta{ConfigID: "finpulse_default", Version: "1"},
		Universe: Universe{Symbols: []string{
			"AAPL", "TSLA", "NVDA", "MSFT", "GOOGL", "AMZN",
			"META", "NFLX", "AMD", "INTC", "SPY", "QQQ",
		}},
		Benchmark:     Benchmark{Symbol: "SPY", LookbackDays: 30},
		Sectors:       overview.DefaultConfig().Sectors,
		Lookbacks:     Lookbacks{SnapshotDays: 60, RiskDays: 90},
		Opportunities: Opportunities{Variant: string(selection.VariantFull)},
		Scoring:       Scoring{TrendFormula: string(scoring.TrendStandard)},
	}
}

// ScreenerConfig resolves the opportunity settings against the variant defaults
func (c *Config) ScreenerConfig(concurrency int) selection.ScreenerConfig {
	sc := selection.DefaultScreenerConfig(selection.Variant(c.Opportunities.Variant))
	if c.Opportunities.Threshold != nil {
		sc.Threshold = *c.Opportunities.Threshold
	}
	if c.Opportunities.TopN > 0 {
		sc.TopN = c.Opportunities.TopN
	}
	if c.Opportunities.MaxSymbols > 0 {
		sc.MaxSymbols = c.Opportunities.MaxSymbols
	}
	sc.Concurrency = concurrency
	return sc
}

// OverviewConfig returns the benchmark and sector settings
func (c *Config) OverviewConfig(concurrency int) overview.Config {
	return overview.Config{
		Benchmark:         c.Benchmark.Symbol,
		BenchmarkLookback: c.Benchmark.LookbackDays,
		Sectors:           c.Sectors,
		Concurrency:       concurrency,
	}
}

// TrendFormula returns the scoring trend formula
func (c *Config) TrendFormula() scoring.TrendFormula {
	return scoring.TrendFormula(c.Scoring.TrendFormula)
}
