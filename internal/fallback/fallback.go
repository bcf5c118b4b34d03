// Package fallback synthesizes deterministic profiles for symbols whose
// market data is missing, short or erroring. Every numeric field is a pure
// function of the symbol; only timestamps vary between calls.
package fallback

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/mathutil"
)

// Hash reduces the normalized symbol to [0, 100) with a seedless 64-bit hash,
// so the value is stable across runs and processes.
// ⭐ SSOT: 폴백 해시는 여기서만
func Hash(symbol string) int {
	return int(xxhash.Sum64String(Normalize(symbol)) % 100)
}

// Normalize upper-cases and trims a ticker symbol
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Snapshot returns a synthetic technical snapshot (IsRealData = false)
func Snapshot(symbol string, now time.Time) contracts.TechnicalSnapshot {
	sym := Normalize(symbol)
	hi := Hash(sym)
	h := float64(hi)

	return contracts.TechnicalSnapshot{
		Symbol:             sym,
		CompanyName:        fmt.Sprintf("%s Corporation", sym),
		CurrentPrice:       mathutil.Round(50+h, 2),
		PriceChange:        mathutil.Round((h-50)/10, 2),
		PriceChangePercent: mathutil.Round((h-50)/2, 2),
		Volume:             1_000_000 + 10_000*h,
		VolumeAvg:          1_500_000,
		MarketCap:          0,
		RSI:                float64(40 + hi%30),
		MACD:               (h - 50) / 1000,
		MACDSignal:         mathutil.Round((h-50)/1500, 4),
		SMA20:              mathutil.Round(55+h, 2),
		SMA50:              mathutil.Round(52+h, 2),
		TrendStrength:      float64(30 + hi%50),
		IsRealData:         false,
		Timestamp:          now,
	}
}

// PulseScore returns the simplified synthetic PulseScore
func PulseScore(symbol string, now time.Time) contracts.PulseScoreResult {
	sym := Normalize(symbol)
	score := float64(30 + Hash(sym)%60)

	result := contracts.PulseScoreResult{
		Symbol:     sym,
		PulseScore: score,
		Confidence: mathutil.Clamp(score+20, 0, 90),
		IsRealData: false,
		Timestamp:  now,
	}

	switch {
	case score >= 70:
		result.Trend, result.Recommendation, result.Color = contracts.TrendBullish, contracts.RecBuy, contracts.ColorBullish
	case score >= 40:
		result.Trend, result.Recommendation, result.Color = contracts.TrendNeutral, contracts.RecHold, contracts.ColorNeutral
	default:
		result.Trend, result.Recommendation, result.Color = contracts.TrendBearish, contracts.RecSell, contracts.ColorBearish
	}

	return result
}

// Risk returns the synthetic risk profile, bucketed by the symbol hash
func Risk(symbol string, now time.Time) contracts.RiskResult {
	sym := Normalize(symbol)
	hi := Hash(sym)
	h := float64(hi)

	result := contracts.RiskResult{
		Symbol:      sym,
		Volatility:  mathutil.Round(0.1+h/200, 3),
		MaxDrawdown: mathutil.Round(5+h/4, 1),
		Beta:        mathutil.Round(0.5+h/100, 2),
		VaR95:       mathutil.Round(3+h/10, 1),
		CVaR95:      mathutil.Round(3+h/10, 1),
		SharpeRatio: 0,
		IsRealData:  false,
		Timestamp:   now,
	}

	var base float64
	switch {
	case hi < 30:
		result.RiskLevel, result.Color, base = contracts.RiskLow, contracts.RiskColorLow, 20
	case hi < 70:
		result.RiskLevel, result.Color, base = contracts.RiskMedium, contracts.RiskColorMedium, 40
	default:
		result.RiskLevel, result.Color, base = contracts.RiskHigh, contracts.RiskColorHigh, 60
	}
	result.RiskScore = mathutil.Clamp(base+h, 0, 100)
	result.StressTest = contracts.StressFromVolatility(result.Volatility)

	return result
}
