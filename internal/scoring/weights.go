package scoring

// PulseScore component weights. They sum to exactly 1.0.
const (
	WeightMomentum = 0.35
	WeightTrend    = 0.30
	WeightVolume   = 0.20
	WeightRSI      = 0.15
)

// TrendFormula selects how the trend sub-score is derived
type TrendFormula string

const (
	// TrendStandard: 50, +20 price>SMA20, +20 price>SMA50, +10 SMA20>SMA50
	TrendStandard TrendFormula = "standard"
	// TrendFromStrength: trend_strength*0.7, +20 SMA20>SMA50
	TrendFromStrength TrendFormula = "strength"
)

// Valid reports whether f is a known formula
func (f TrendFormula) Valid() bool {
	return f == TrendStandard || f == TrendFromStrength
}
