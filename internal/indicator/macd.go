package indicator

// MACD spans
const (
	MACDFastSpan   = 12
	MACDSlowSpan   = 26
	MACDSignalSpan = 9
)

// MACDResult holds the latest MACD line and signal line values
type MACDResult struct {
	MACD   float64
	Signal float64
	Guard  Guard
}

// MACD computes EMA(12) - EMA(26) over the whole series and its EMA(9)
// signal line, returning the latest value of each. Faults yield (0, 0).
func MACD(closes []float64) MACDResult {
	if len(closes) == 0 {
		return MACDResult{Guard: GuardEmptySeries}
	}

	fast := EMASeries(closes, MACDFastSpan)
	slow := EMASeries(closes, MACDSlowSpan)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := EMASeries(line, MACDSignalSpan)

	macd, sig := line[len(line)-1], signal[len(signal)-1]
	if !finite(macd) || !finite(sig) {
		return MACDResult{Guard: GuardNonFinite}
	}

	return MACDResult{MACD: macd, Signal: sig}
}

// EMASeries returns the exponential moving average of values at every point.
//
// Weights are normalised over the observations seen so far (alpha = 2/(span+1)),
// so early points are not biased toward a seed value:
//
//	ema_t = sum((1-alpha)^i * x_{t-i}) / sum((1-alpha)^i)
func EMASeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if span < 1 {
		copy(out, values)
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1 - alpha

	var num, den float64
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}

	return out
}
