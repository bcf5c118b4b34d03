package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finpulse/internal/contracts"
)

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func rising(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestRSI(t *testing.T) {
	// 10 gains of 2 then 4 losses of 1: rs = (20/14)/(4/14) = 5
	mixed := []float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 118, 120, 119, 118, 117, 116}

	tests := []struct {
		name      string
		closes    []float64
		want      float64
		wantGuard Guard
	}{
		{"mixed window", mixed, 100 - 100.0/6, GuardNone},
		{"only last 14 deltas count", append([]float64{500, 1}, mixed...), 100 - 100.0/6, GuardNone},
		{"balanced", []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10}, 50, GuardNone},
		{"strictly falling", rising(20, 100, -1), 0, GuardNone},
		{"strictly rising is guarded", rising(20, 100, 1), 50, GuardZeroLoss},
		{"flat is guarded", flat(30, 100), 50, GuardZeroLoss},
		{"too short", rising(14, 100, 1), 50, GuardInsufficientData},
		{"empty", nil, 50, GuardInsufficientData},
		{"nan input", append(rising(14, 100, 1), math.NaN()), 50, GuardNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.closes, RSIPeriod)
			assert.InDelta(t, tt.want, got.Value, 1e-9)
			assert.Equal(t, tt.wantGuard, got.Guard)
		})
	}
}

func TestEMASeries(t *testing.T) {
	// span 3: alpha 0.5; second point = (2 + 0.5*1) / (1 + 0.5)
	got := EMASeries([]float64{1, 2}, 3)
	require.Len(t, got, 2)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 2.5/1.5, got[1], 1e-12)

	// weights normalise, so a constant series stays constant
	for _, v := range EMASeries(flat(40, 7), 26) {
		assert.InDelta(t, 7.0, v, 1e-9)
	}
}

func TestMACD(t *testing.T) {
	t.Run("flat series is zero", func(t *testing.T) {
		got := MACD(flat(30, 100))
		assert.InDelta(t, 0, got.MACD, 1e-9)
		assert.InDelta(t, 0, got.Signal, 1e-9)
		assert.Equal(t, GuardNone, got.Guard)
	})

	t.Run("uptrend is positive", func(t *testing.T) {
		got := MACD(rising(60, 100, 1))
		assert.Greater(t, got.MACD, 0.0)
		assert.Greater(t, got.Signal, 0.0)
		// signal lags the accelerating line
		assert.Greater(t, got.MACD, got.Signal)
	})

	t.Run("downtrend is negative", func(t *testing.T) {
		got := MACD(rising(60, 200, -1))
		assert.Less(t, got.MACD, 0.0)
	})

	t.Run("empty", func(t *testing.T) {
		got := MACD(nil)
		assert.Equal(t, MACDResult{Guard: GuardEmptySeries}, got)
	})

	t.Run("non-finite", func(t *testing.T) {
		got := MACD([]float64{1, math.Inf(1)})
		assert.Equal(t, GuardNonFinite, got.Guard)
		assert.Equal(t, 0.0, got.MACD)
		assert.Equal(t, 0.0, got.Signal)
	})
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name      string
		closes    []float64
		period    int
		want      float64
		wantGuard Guard
	}{
		{"trailing mean", []float64{1, 2, 3, 4, 5}, 3, 4, GuardNone},
		{"exact length", []float64{2, 4}, 2, 3, GuardNone},
		{"short history uses latest close", []float64{1, 2, 9}, 20, 9, GuardInsufficientData},
		{"empty", nil, 20, 0, GuardEmptySeries},
		{"non-finite", []float64{1, math.NaN()}, 2, 0, GuardNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.closes, tt.period)
			assert.InDelta(t, tt.want, got.Value, 1e-9)
			assert.Equal(t, tt.wantGuard, got.Guard)
		})
	}
}

func TestVolumeAverage(t *testing.T) {
	got := VolumeAverage(rising(25, 1, 1), VolumeWindow)
	assert.InDelta(t, 15.5, got.Value, 1e-9) // mean(6..25)
	assert.False(t, got.Guarded())

	got = VolumeAverage([]float64{10, 20}, VolumeWindow)
	assert.InDelta(t, 15, got.Value, 1e-9)

	got = VolumeAverage(nil, VolumeWindow)
	assert.Equal(t, GuardEmptySeries, got.Guard)
}

func TestTrendStrength(t *testing.T) {
	tests := []struct {
		name                        string
		price, sma20, sma50, rsi, m float64
		want                        float64
	}{
		{"everything aligned", 110, 100, 90, 55, 0.5, 100},
		{"price equal to averages earns nothing", 100, 100, 100, 50, 0, 25},
		{"overbought rsi takes the second branch", 110, 100, 90, 75, 0.5, 90},
		{"oversold rsi earns nothing", 90, 100, 110, 25, -0.5, 0},
		{"rsi boundary 30 is outside the band", 90, 100, 110, 30, 0, 0},
		{"rsi boundary 70 falls to the >50 branch", 90, 100, 110, 70, 0, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendStrength(tt.price, tt.sma20, tt.sma50, tt.rsi, tt.m))
		})
	}
}

func TestCompute(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.PriceBar, 30)
	for i := range bars {
		bars[i] = contracts.PriceBar{Date: start.AddDate(0, 0, i), Close: 100, Volume: 1_000_000}
	}

	set := Compute(bars)

	assert.Equal(t, 50.0, set.RSI.Value)
	assert.Equal(t, 100.0, set.SMA20.Value)
	assert.Equal(t, 100.0, set.SMA50.Value)
	assert.Equal(t, 1_000_000.0, set.VolumeAvg.Value)
	assert.InDelta(t, 0, set.MACD.MACD, 1e-9)
	assert.Equal(t, []string{"rsi:zero_loss", "sma_50:insufficient_data"}, set.Guards())
}
