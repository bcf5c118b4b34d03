package risk

import (
	"math"
	"sort"
)

// =============================================================================
// Returns & Drawdown
// =============================================================================

// DailyReturns 종가 기준 일별 수익률 (c[i]/c[i-1] - 1)
// NaN/Inf (이전 종가 0 포함)는 제외
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		r := closes[i]/closes[i-1] - 1
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		returns = append(returns, r)
	}
	return returns
}

// MaxDrawdown 최대 낙폭: min(close / running_max - 1), 0 이하의 fraction
func MaxDrawdown(closes []float64) float64 {
	var peak, worst float64
	for i, c := range closes {
		if i == 0 || c > peak {
			peak = c
		}
		if peak <= 0 {
			continue
		}
		if dd := c/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

// =============================================================================
// VaR (Value at Risk) Calculation
// =============================================================================

// CalculateVaR 과거 수익률 기반 VaR 계산 (Historical Simulation)
// returns: 일별 수익률 배열 (양수=이익, 음수=손실)
// confidence: 신뢰수준 (예: 0.95)
// VaR 분위수는 선형 보간, 반환값은 손실을 양수로 표현
func CalculateVaR(returns []float64, confidence float64) VaRResult {
	if len(returns) == 0 {
		return VaRResult{Confidence: confidence}
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	cutoff := Percentile(sorted, (1-confidence)*100)

	return VaRResult{
		Confidence: confidence,
		Quantile:   cutoff,
		VaR:        math.Max(0, -cutoff),
		CVaR:       CalculateCVaR(sorted, cutoff),
	}
}

// CalculateCVaR Conditional VaR (Expected Shortfall)
// sorted: 오름차순 정렬된 수익률, cutoff: VaR 분위수 수익률
func CalculateCVaR(sorted []float64, cutoff float64) float64 {
	var sum float64
	var count int
	for _, r := range sorted {
		if r > cutoff {
			break
		}
		sum += r
		count++
	}

	if count == 0 {
		return 0
	}

	// CVaR = 손실을 양수로 표현
	return math.Max(0, -sum/float64(count))
}

// =============================================================================
// 통계 유틸리티
// =============================================================================

// Mean 평균 계산
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev 표본 표준편차 (n-1)
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// Percentile 백분위수 계산 (오름차순 정렬 입력, 선형 보간)
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// 선형 보간
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
