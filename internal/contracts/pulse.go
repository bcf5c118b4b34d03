package contracts

import "time"

// Trend classification labels
const (
	TrendStrongBullish = "Strong Bullish"
	TrendBullish       = "Bullish"
	TrendNeutral       = "Neutral"
	TrendBearish       = "Bearish"
	TrendStrongBearish = "Strong Bearish"
)

// Recommendation labels
const (
	RecStrongBuy  = "Strong Buy"
	RecBuy        = "Buy"
	RecHold       = "Hold"
	RecSell       = "Sell"
	RecStrongSell = "Strong Sell"
)

// ScoreBreakdown holds the four PulseScore sub-scores (0 ~ 100)
type ScoreBreakdown struct {
	Momentum float64 `json:"momentum"`
	Trend    float64 `json:"trend"`
	Volume   float64 `json:"volume"`
	RSI      float64 `json:"rsi"`
}

// IndicatorSummary echoes the indicators a score was derived from
type IndicatorSummary struct {
	RSI          float64 `json:"rsi"`
	MACD         float64 `json:"macd"`
	PriceVsSMA20 float64 `json:"price_vs_sma20"`
	VolumeRatio  float64 `json:"volume_ratio"`
}

// PulseScoreResult is the composite momentum/trend/volume/oscillator rating
// ⭐ SSOT: PulseScore 결과
type PulseScoreResult struct {
	Symbol             string  `json:"symbol"`
	PulseScore         float64 `json:"pulsescore"` // 0 ~ 100
	Trend              string  `json:"trend"`
	Recommendation     string  `json:"recommendation"`
	Color              string  `json:"color"`
	Confidence         float64 `json:"confidence"`
	CurrentPrice       float64 `json:"current_price"`
	PriceChangePercent float64 `json:"price_change_percent"`

	// 실데이터일 때만 채워짐
	Breakdown           *ScoreBreakdown   `json:"breakdown,omitempty"`
	TechnicalIndicators *IndicatorSummary `json:"technical_indicators,omitempty"`

	IsRealData bool      `json:"is_real_data"`
	Timestamp  time.Time `json:"timestamp"`
}

// IsBullish reports a Bullish or Strong Bullish trend
func (p *PulseScoreResult) IsBullish() bool {
	return p.Trend == TrendBullish || p.Trend == TrendStrongBullish
}

// Display colors per classification
const (
	ColorStrongBullish = "text-green-600"
	ColorBullish       = "text-green-500"
	ColorNeutral       = "text-yellow-500"
	ColorBearish       = "text-orange-500"
	ColorStrongBearish = "text-red-600"
)
