package scoring

import (
	"math"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/mathutil"
)

// MomentumScore: 50 +/- min(25, |change%|*2) by direction, + macd*1000, clamped
func MomentumScore(changePercent, macd float64) float64 {
	momentum := 50.0

	move := math.Min(25, math.Abs(changePercent)*2)
	if changePercent > 0 {
		momentum += move
	} else {
		momentum -= move
	}

	momentum += macd * 1000

	return mathutil.Clamp(momentum, 0, 100)
}

// TrendScore is the standard price-vs-average trend sub-score
func TrendScore(price, sma20, sma50 float64) float64 {
	score := 50.0
	if price > sma20 {
		score += 20
	}
	if price > sma50 {
		score += 20
	}
	if sma20 > sma50 {
		score += 10
	}
	return math.Min(100, score)
}

// TrendScoreFromStrength derives the trend sub-score from trend strength
func TrendScoreFromStrength(strength, sma20, sma50 float64) float64 {
	score := strength * 0.7
	if sma20 > sma50 {
		score += 20
	}
	return math.Min(100, score)
}

// VolumeScore buckets the volume ratio
func VolumeScore(ratio float64) float64 {
	switch {
	case ratio > 2.0:
		return 90
	case ratio > 1.5:
		return 75
	case ratio > 1.0:
		return 60
	case ratio > 0.7:
		return 50
	default:
		return 30
	}
}

// RSIScore rewards a neutral oscillator
func RSIScore(rsi float64) float64 {
	switch {
	case rsi >= 40 && rsi <= 60:
		return 80
	case rsi >= 30 && rsi <= 70:
		return 60
	case rsi > 70 || rsi < 30:
		return 30
	default:
		// NaN
		return 50
	}
}

// Classification is a trend label with its recommendation and display color
type Classification struct {
	Trend          string
	Recommendation string
	Color          string
}

// Classify applies the rules in priority order; the first match wins
func Classify(pulseScore, changePercent, macd float64) Classification {
	switch {
	case pulseScore >= 80 && changePercent > 2 && macd > 0:
		return Classification{contracts.TrendStrongBullish, contracts.RecStrongBuy, contracts.ColorStrongBullish}
	case pulseScore >= 65 && changePercent > 0:
		return Classification{contracts.TrendBullish, contracts.RecBuy, contracts.ColorBullish}
	case pulseScore >= 40:
		return Classification{contracts.TrendNeutral, contracts.RecHold, contracts.ColorNeutral}
	case pulseScore >= 20:
		return Classification{contracts.TrendBearish, contracts.RecSell, contracts.ColorBearish}
	default:
		return Classification{contracts.TrendStrongBearish, contracts.RecStrongSell, contracts.ColorStrongBearish}
	}
}

// Confidence: min(95, score*0.8) plus a volume boost of up to 15
func Confidence(pulseScore, volumeRatio float64) float64 {
	confidence := math.Min(95, pulseScore*0.8)
	if volumeRatio > 1 {
		confidence += math.Min(15, (volumeRatio-1)*10)
	}
	return mathutil.Round(confidence, 1)
}
