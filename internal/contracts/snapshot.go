package contracts

import "time"

// TechnicalSnapshot is the per-symbol indicator state every engine consumes.
// IsRealData is authoritative: downstream code branches on it, never on values.
// ⭐ SSOT: 종목별 기술적 지표 스냅샷
type TechnicalSnapshot struct {
	Symbol             string  `json:"symbol"`
	CompanyName        string  `json:"company_name"`
	CurrentPrice       float64 `json:"current_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	Volume             float64 `json:"volume"`
	VolumeAvg          float64 `json:"volume_avg"`
	MarketCap          float64 `json:"market_cap"`

	// 지표
	RSI           float64 `json:"rsi"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	SMA20         float64 `json:"sma_20"`
	SMA50         float64 `json:"sma_50"`
	TrendStrength float64 `json:"trend_strength"` // 0 ~ 100

	IsRealData bool `json:"is_real_data"`

	// Guards lists indicators that fell back to a neutral default ("rsi:zero_loss")
	Guards    []string  `json:"guards,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// VolumeRatio returns latest volume over the trailing average (0 if no average)
func (s *TechnicalSnapshot) VolumeRatio() float64 {
	if s.VolumeAvg <= 0 {
		return 0
	}
	return s.Volume / s.VolumeAvg
}

// PriceVsSMA20 returns the percentage distance of price from SMA20
func (s *TechnicalSnapshot) PriceVsSMA20() float64 {
	if s.SMA20 == 0 {
		return 0
	}
	return (s.CurrentPrice/s.SMA20 - 1) * 100
}
