package risk

// VaRConvention VaR 부호 규약
// ⭐ SSOT: Loss를 양수로 표현 (VaR=0.05 → 5% 손실 가능)
const VaRConvention = "loss_positive"

// VaRResult VaR 계산 결과 (손실을 양수로 표현)
type VaRResult struct {
	Confidence float64 `json:"confidence"` // 신뢰수준 (예: 0.95)
	Quantile   float64 `json:"quantile"`   // (1-confidence) 분위수 수익률 (부호 유지)
	VaR        float64 `json:"var"`        // Value at Risk (fraction, 양수)
	CVaR       float64 `json:"cvar"`       // Expected Shortfall (fraction, 양수)
}

// Metrics holds the unrounded risk measures of one price history
type Metrics struct {
	Returns     []float64
	Volatility  float64 // 연환산
	MaxDrawdown float64 // fraction, <= 0
	Beta        float64
	VaR95       float64 // 5th percentile return * 100 (signed)
	CVaR95      float64 // fraction, 양수
	Sharpe      float64
}

// TradingDays annualizes daily statistics
const TradingDays = 252

// MinBars is the minimum history for a real risk profile
const MinBars = 20
