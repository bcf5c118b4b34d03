package contracts

import "time"

// Opportunity types
const (
	OpportunityMomentumBreakout = "Momentum Breakout"
	OpportunityOversoldBounce   = "Oversold Bounce"
	OpportunityTrendReversal    = "Trend Reversal"
	OpportunityVolumeSpike      = "Volume Spike"
)

// OpportunityResult is one qualifying symbol from the screener
// ⭐ SSOT: 기회 스크리닝 결과
type OpportunityResult struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	OpportunityScore float64   `json:"opportunity_score"`
	Confidence       float64   `json:"confidence"`
	PotentialReturn  float64   `json:"potential_return"`
	CurrentChange    float64   `json:"current_change"`
	CurrentPrice     float64   `json:"current_price"`
	Reasoning        []string  `json:"reasoning"`
	IsOpportunity    bool      `json:"is_opportunity"`
	Timestamp        time.Time `json:"timestamp"`
}

// OpportunityList is a ranked screener run
type OpportunityList struct {
	Opportunities []OpportunityResult `json:"opportunities"`
	Scanned       int                 `json:"scanned"`
	Timestamp     time.Time           `json:"timestamp"`
}

// Count returns the number of opportunities
func (l *OpportunityList) Count() int {
	return len(l.Opportunities)
}
