package selection

import (
	"fmt"
	"math"

	"github.com/wonny/finpulse/internal/contracts"
)

// Variant selects the opportunity rule set
type Variant string

const (
	// VariantFull: 80/75/70/65 with Trend Reversal, threshold > 60, top 6
	VariantFull Variant = "full"
	// VariantReduced: 85/80/75 without Trend Reversal, threshold > 70, top 4
	VariantReduced Variant = "reduced"
)

// Valid reports whether v is a known variant
func (v Variant) Valid() bool {
	return v == VariantFull || v == VariantReduced
}

// Rule is one opportunity pattern. Rules are evaluated in order and the
// first match decides the score.
type Rule struct {
	Type   string
	Score  float64
	Reason string
	Match  func(s *contracts.TechnicalSnapshot, volumeRatio float64) bool
}

func momentumBreakout(s *contracts.TechnicalSnapshot, ratio float64) bool {
	return s.PriceChangePercent > 3 && ratio > 1.5 && s.MACD > 0
}

func oversoldBounce(s *contracts.TechnicalSnapshot, ratio float64) bool {
	return s.PriceChangePercent < -5 && s.RSI < 30 && ratio > 1.2
}

func trendReversal(s *contracts.TechnicalSnapshot, ratio float64) bool {
	return s.PriceChangePercent > -2 && s.PriceChangePercent < 2 && ratio > 1.3 && s.MACD > 0
}

func volumeSpike(s *contracts.TechnicalSnapshot, ratio float64) bool {
	return ratio > 2.0 && math.Abs(s.PriceChangePercent) > 1
}

// Rules returns the ordered rule set of a variant
func Rules(v Variant) ([]Rule, error) {
	switch v {
	case VariantFull, "":
		return []Rule{
			{contracts.OpportunityMomentumBreakout, 80, "Strong price momentum with high volume", momentumBreakout},
			{contracts.OpportunityOversoldBounce, 75, "Oversold conditions with potential reversal", oversoldBounce},
			{contracts.OpportunityTrendReversal, 70, "Consolidation with positive MACD", trendReversal},
			{contracts.OpportunityVolumeSpike, 65, "Unusual volume activity detected", volumeSpike},
		}, nil
	case VariantReduced:
		return []Rule{
			{contracts.OpportunityMomentumBreakout, 85, "Strong price momentum with high volume", momentumBreakout},
			{contracts.OpportunityOversoldBounce, 80, "Oversold conditions with potential reversal", oversoldBounce},
			{contracts.OpportunityVolumeSpike, 75, "Unusual volume activity detected", volumeSpike},
		}, nil
	default:
		return nil, fmt.Errorf("unknown opportunity variant %q", v)
	}
}
