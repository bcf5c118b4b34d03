package risk

import (
	"math"
	"time"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/internal/mathutil"
	"github.com/wonny/finpulse/pkg/logger"
)

// =============================================================================
// Analyzer - 종목 리스크 프로파일
// =============================================================================

// Analyzer builds symbol risk profiles from daily bars
// ⭐ SSOT: 리스크 점수/등급 산출은 여기서만
type Analyzer struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewAnalyzer creates a risk analyzer
func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{
		logger: log,
		now:    time.Now,
	}
}

// Compute derives the raw risk measures from closes
func Compute(closes []float64) Metrics {
	returns := DailyReturns(closes)
	std := StdDev(returns)

	tail := CalculateVaR(returns, 0.95)

	m := Metrics{
		Returns:     returns,
		Volatility:  std * math.Sqrt(TradingDays),
		MaxDrawdown: MaxDrawdown(closes),
		Beta:        std * 10,
		VaR95:       tail.Quantile * 100,
		CVaR95:      tail.CVaR,
	}

	if std > 0 {
		m.Sharpe = Mean(returns) / std * math.Sqrt(TradingDays)
	}

	return m
}

// Score combines the measures into a 0 ~ 100 risk score
//
//	volatility*25 + |max_drawdown|*30 + |beta-1|*20 + |var_95|*2
func Score(m Metrics) float64 {
	raw := m.Volatility*25 +
		math.Abs(m.MaxDrawdown)*30 +
		math.Abs(m.Beta-1)*20 +
		math.Abs(m.VaR95)*2
	return mathutil.Round(mathutil.Clamp(raw, 0, 100), 1)
}

// Level maps a risk score to its level and color
func Level(score float64) (string, string) {
	switch {
	case score < 30:
		return contracts.RiskLow, contracts.RiskColorLow
	case score < 60:
		return contracts.RiskMedium, contracts.RiskColorMedium
	default:
		return contracts.RiskHigh, contracts.RiskColorHigh
	}
}

// Analyze returns the risk profile of symbol. Histories shorter than MinBars
// get the synthetic profile.
func (a *Analyzer) Analyze(symbol string, bars []contracts.PriceBar) contracts.RiskResult {
	if len(bars) < MinBars {
		a.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"bars":   len(bars),
		}).Debug("Insufficient history for risk, using synthetic profile")
		return fallback.Risk(symbol, a.now())
	}

	m := Compute(contracts.Closes(bars))
	score := Score(m)
	level, color := Level(score)

	return contracts.RiskResult{
		Symbol:      fallback.Normalize(symbol),
		RiskLevel:   level,
		RiskScore:   score,
		Color:       color,
		Volatility:  mathutil.Round(m.Volatility, 3),
		MaxDrawdown: mathutil.Round(math.Abs(m.MaxDrawdown*100), 1),
		Beta:        mathutil.Round(m.Beta, 2),
		VaR95:       mathutil.Round(math.Abs(m.VaR95), 1),
		CVaR95:      mathutil.Round(m.CVaR95*100, 1),
		SharpeRatio: mathutil.Round(m.Sharpe, 2),
		StressTest:  contracts.StressFromVolatility(m.Volatility),
		IsRealData:  true,
		Timestamp:   a.now(),
	}
}
