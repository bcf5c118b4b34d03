package indicator

// RSIPeriod is the default RSI window
const RSIPeriod = 14

// RSINeutral is returned whenever RSI cannot be computed
const RSINeutral = 50.0

// RSI computes the Relative Strength Index of the latest bar using a simple
// trailing mean of gains and losses over the last period deltas.
//
// A zero average loss (strictly rising or flat window) is guarded to 50
// rather than reported as 100.
func RSI(closes []float64, period int) Outcome {
	if period <= 0 || len(closes) < period+1 {
		return guarded(RSINeutral, GuardInsufficientData)
	}

	window := closes[len(closes)-period-1:]

	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if !finite(avgGain) || !finite(avgLoss) {
		return guarded(RSINeutral, GuardNonFinite)
	}
	if avgLoss == 0 {
		return guarded(RSINeutral, GuardZeroLoss)
	}

	rs := avgGain / avgLoss
	rsi := 100 - 100/(1+rs)
	if !finite(rsi) {
		return guarded(RSINeutral, GuardNonFinite)
	}

	return computed(rsi)
}
