package scoring

import (
	"fmt"
	"time"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/internal/mathutil"
	"github.com/wonny/finpulse/pkg/logger"
)

// Engine computes PulseScores from technical snapshots. It is stateless and
// safe for concurrent use.
// ⭐ SSOT: PulseScore 계산은 여기서만
type Engine struct {
	formula TrendFormula
	logger  *logger.Logger
	now     func() time.Time
}

// NewEngine creates a scoring engine
func NewEngine(formula TrendFormula, log *logger.Logger) (*Engine, error) {
	if formula == "" {
		formula = TrendStandard
	}
	if !formula.Valid() {
		return nil, fmt.Errorf("unknown trend formula %q", formula)
	}

	return &Engine{
		formula: formula,
		logger:  log,
		now:     time.Now,
	}, nil
}

// Formula returns the configured trend formula
func (e *Engine) Formula() TrendFormula {
	return e.formula
}

// Score computes the PulseScore. Synthetic snapshots take the simplified
// hash-based path; they never reach the weighted formula.
func (e *Engine) Score(snap *contracts.TechnicalSnapshot) contracts.PulseScoreResult {
	if !snap.IsRealData {
		result := fallback.PulseScore(snap.Symbol, e.now())
		result.CurrentPrice = snap.CurrentPrice
		result.PriceChangePercent = snap.PriceChangePercent
		return result
	}

	volumeRatio := snap.VolumeRatio()

	breakdown := contracts.ScoreBreakdown{
		Momentum: MomentumScore(snap.PriceChangePercent, snap.MACD),
		Trend:    e.trendScore(snap),
		Volume:   VolumeScore(volumeRatio),
		RSI:      RSIScore(snap.RSI),
	}

	composite := breakdown.Momentum*WeightMomentum +
		breakdown.Trend*WeightTrend +
		breakdown.Volume*WeightVolume +
		breakdown.RSI*WeightRSI
	score := mathutil.Clamp(mathutil.Round(composite, 1), 0, 100)

	class := Classify(score, snap.PriceChangePercent, snap.MACD)

	e.logger.WithFields(map[string]interface{}{
		"symbol":   snap.Symbol,
		"score":    score,
		"momentum": breakdown.Momentum,
		"trend":    breakdown.Trend,
		"volume":   breakdown.Volume,
		"rsi":      breakdown.RSI,
	}).Debug("Calculated pulse score")

	return contracts.PulseScoreResult{
		Symbol:             snap.Symbol,
		PulseScore:         score,
		Trend:              class.Trend,
		Recommendation:     class.Recommendation,
		Color:              class.Color,
		Confidence:         Confidence(score, volumeRatio),
		CurrentPrice:       snap.CurrentPrice,
		PriceChangePercent: snap.PriceChangePercent,
		Breakdown: &contracts.ScoreBreakdown{
			Momentum: mathutil.Round(breakdown.Momentum, 1),
			Trend:    mathutil.Round(breakdown.Trend, 1),
			Volume:   mathutil.Round(breakdown.Volume, 1),
			RSI:      mathutil.Round(breakdown.RSI, 1),
		},
		TechnicalIndicators: &contracts.IndicatorSummary{
			RSI:          snap.RSI,
			MACD:         snap.MACD,
			PriceVsSMA20: mathutil.Round(snap.PriceVsSMA20(), 2),
			VolumeRatio:  mathutil.Round(volumeRatio, 2),
		},
		IsRealData: true,
		Timestamp:  e.now(),
	}
}

func (e *Engine) trendScore(snap *contracts.TechnicalSnapshot) float64 {
	if e.formula == TrendFromStrength {
		return TrendScoreFromStrength(snap.TrendStrength, snap.SMA20, snap.SMA50)
	}
	return TrendScore(snap.CurrentPrice, snap.SMA20, snap.SMA50)
}
