package indicator

// TrendStrength scores trend alignment in [0, 100]:
//
//	+25 price > SMA20
//	+25 price > SMA50
//	+25 if 30 < RSI < 70, else +15 if RSI > 50
//	+25 MACD > 0
//
// All comparisons are strict, so a price equal to its average earns nothing.
func TrendStrength(price, sma20, sma50, rsi, macd float64) float64 {
	strength := 0.0

	if price > sma20 {
		strength += 25
	}
	if price > sma50 {
		strength += 25
	}

	if rsi > 30 && rsi < 70 {
		strength += 25
	} else if rsi > 50 {
		strength += 15
	}

	if macd > 0 {
		strength += 25
	}

	if strength > 100 {
		strength = 100
	}
	return strength
}
