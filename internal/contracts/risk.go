package contracts

import (
	"math"
	"time"
)

// Risk levels
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// StressTest holds projected percentage losses (all negative)
type StressTest struct {
	MarketCrash     float64 `json:"market_crash"`
	Recession       float64 `json:"recession"`
	VolatilitySpike float64 `json:"volatility_spike"`
}

// RiskResult is the risk profile of a symbol
// ⭐ SSOT: 리스크 분석 결과
type RiskResult struct {
	Symbol    string  `json:"symbol"`
	RiskLevel string  `json:"risk_level"`
	RiskScore float64 `json:"risk_score"` // 0 ~ 100
	Color     string  `json:"color"`

	Volatility  float64 `json:"volatility"`   // 연환산 (fraction)
	MaxDrawdown float64 `json:"max_drawdown"` // % (양수)
	Beta        float64 `json:"beta"`
	VaR95       float64 `json:"var_95"`  // % (양수)
	CVaR95      float64 `json:"cvar_95"` // % (양수)
	SharpeRatio float64 `json:"sharpe_ratio"`

	StressTest StressTest `json:"stress_test"`

	IsRealData bool      `json:"is_real_data"`
	Timestamp  time.Time `json:"timestamp"`
}

// Risk colors
const (
	RiskColorLow    = "green"
	RiskColorMedium = "orange"
	RiskColorHigh   = "red"
)

// StressFromVolatility projects scenario losses from annualized volatility
func StressFromVolatility(volatility float64) StressTest {
	return StressTest{
		MarketCrash:     round1(-(volatility*100 + 10)),
		Recession:       round1(-(volatility*80 + 8)),
		VolatilitySpike: round1(-(volatility*60 + 5)),
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
