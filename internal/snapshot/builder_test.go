package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/contracts/contractstest"
	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/pkg/logger"
	"github.com/wonny/finpulse/pkg/metrics"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func newBuilder(src contracts.MarketDataSource, opts Options) *Builder {
	return NewBuilder(src, logger.NewNop(), opts)
}

func TestBuild_FlatSeries(t *testing.T) {
	src := contractstest.NewSource().
		SetHistory("XYZ", contractstest.Series(contractstest.Flat(30, 100), 1_000_000))

	snap := newBuilder(src, Options{}).Build(context.Background(), "xyz")

	require.True(t, snap.IsRealData)
	assert.Equal(t, "XYZ", snap.Symbol)
	assert.Equal(t, "XYZ", snap.CompanyName, "display name defaults to the symbol")
	assert.Zero(t, snap.MarketCap)
	assert.Equal(t, 100.0, snap.CurrentPrice)
	assert.Equal(t, 0.0, snap.PriceChange)
	assert.Equal(t, 0.0, snap.PriceChangePercent)
	assert.Equal(t, 50.0, snap.RSI)
	assert.Equal(t, 0.0, snap.MACD)
	assert.Equal(t, 0.0, snap.MACDSignal)
	assert.Equal(t, 100.0, snap.SMA20)
	assert.Equal(t, 100.0, snap.SMA50)
	assert.Equal(t, 1_000_000.0, snap.VolumeAvg)
	// price == SMA on both averages, RSI band +25, MACD not > 0
	assert.Equal(t, 25.0, snap.TrendStrength)
	assert.Equal(t, []string{"rsi:zero_loss", "sma_50:insufficient_data"}, snap.Guards)
}

func TestBuild_PriceChangeAndMetadata(t *testing.T) {
	closes := append(contractstest.Trend(59, 80, 0.25), 103)
	closes[50] = 85 // one loss inside the RSI window
	closes[58] = 100

	src := contractstest.NewSource().
		SetHistory("AAPL", contractstest.Series(closes, 2_000_000)).
		SetMetadata("AAPL", contracts.Metadata{DisplayName: "Apple Inc.", MarketCap: 3e12})

	snap := newBuilder(src, Options{}).Build(context.Background(), "AAPL")

	require.True(t, snap.IsRealData)
	assert.Equal(t, "Apple Inc.", snap.CompanyName)
	assert.Equal(t, 3e12, snap.MarketCap)
	assert.Equal(t, 103.0, snap.CurrentPrice)
	assert.Equal(t, 3.0, snap.PriceChange)
	assert.Equal(t, 3.0, snap.PriceChangePercent)
	assert.Empty(t, snap.Guards)
	assert.Greater(t, snap.MACD, 0.0)
}

func TestBuild_FallbackPaths(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*contractstest.Source)
	}{
		{"unknown symbol", func(s *contractstest.Source) {}},
		{"fetch error", func(s *contractstest.Source) { s.SetError("BAD", errors.New("connection reset")) }},
		{"short history", func(s *contractstest.Source) {
			s.SetHistory("BAD", contractstest.Series(contractstest.Trend(MinBars-1, 10, 1), 100))
		}},
		{"empty history", func(s *contractstest.Source) { s.SetHistory("BAD", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := contractstest.NewSource()
			tt.setup(src)

			snap := newBuilder(src, Options{}).Build(context.Background(), "BAD")
			want := fallback.Snapshot("BAD", snap.Timestamp)

			assert.False(t, snap.IsRealData)
			assert.Equal(t, want, snap)
		})
	}
}

func TestBuild_TimeoutFallsBack(t *testing.T) {
	rec := metrics.New()
	src := contractstest.NewSource().
		SetHistory("SLOW", contractstest.Series(contractstest.Flat(30, 10), 1)).
		SetDelay("SLOW", 5*time.Second)

	start := time.Now()
	snap := newBuilder(src, Options{Timeout: 20 * time.Millisecond, Metrics: rec}).Build(context.Background(), "SLOW")

	assert.False(t, snap.IsRealData)
	assert.Less(t, time.Since(start), 2*time.Second)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `finpulse_fallback_total{kind="snapshot",reason="timeout"} 1`)
}

func TestBuild_UsesCache(t *testing.T) {
	src := contractstest.NewSource().
		SetHistory("MSFT", contractstest.Series(contractstest.Trend(60, 300, 1), 5_000))
	b := newBuilder(src, Options{Cache: newMemCache(), CacheTTL: time.Minute})

	first := b.Build(context.Background(), "MSFT")
	second := b.Build(context.Background(), "MSFT")

	assert.Equal(t, 1, src.HistoryCalls("MSFT"))
	assert.Equal(t, first.RSI, second.RSI)
	assert.Equal(t, first.SMA20, second.SMA20)
	assert.True(t, second.IsRealData)
}

func TestBuild_FallbackIsNotCached(t *testing.T) {
	src := contractstest.NewSource()
	b := newBuilder(src, Options{Cache: newMemCache(), CacheTTL: time.Minute})

	b.Build(context.Background(), "NEW")
	src.SetHistory("NEW", contractstest.Series(contractstest.Trend(60, 10, 0.1), 100))
	snap := b.Build(context.Background(), "NEW")

	assert.True(t, snap.IsRealData)
	assert.Equal(t, 2, src.HistoryCalls("NEW"))
}

func TestHistory_WrapsDataUnavailable(t *testing.T) {
	src := contractstest.NewSource().SetError("ERR", errors.New("boom"))
	b := newBuilder(src, Options{})

	_, err := b.History(context.Background(), "ERR", 90, 20)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)

	src.SetHistory("SHORT", contractstest.Series(contractstest.Flat(5, 1), 1))
	_, err = b.History(context.Background(), "SHORT", 90, 20)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}
