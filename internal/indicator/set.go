package indicator

import (
	"github.com/wonny/finpulse/internal/contracts"
)

// Set bundles every indicator derived from one price history
type Set struct {
	RSI       Outcome
	MACD      MACDResult
	SMA20     Outcome
	SMA50     Outcome
	VolumeAvg Outcome
}

// Compute derives the full indicator set from chronological bars
// ⭐ SSOT: 스냅샷 지표 계산 진입점
func Compute(bars []contracts.PriceBar) Set {
	closes := contracts.Closes(bars)
	volumes := contracts.Volumes(bars)

	return Set{
		RSI:       RSI(closes, RSIPeriod),
		MACD:      MACD(closes),
		SMA20:     SMA(closes, SMAShort),
		SMA50:     SMA(closes, SMALong),
		VolumeAvg: VolumeAverage(volumes, VolumeWindow),
	}
}

// Guards lists the guarded indicators as "name:reason" labels
func (s Set) Guards() []string {
	var out []string
	for _, item := range []struct {
		name    string
		outcome Outcome
	}{
		{"rsi", s.RSI},
		{"macd", Outcome{Guard: s.MACD.Guard}},
		{"sma_20", s.SMA20},
		{"sma_50", s.SMA50},
		{"volume_avg", s.VolumeAvg},
	} {
		if item.outcome.Guarded() {
			out = append(out, item.outcome.Label(item.name))
		}
	}
	return out
}
