package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/internal/indicator"
	"github.com/wonny/finpulse/internal/mathutil"
	"github.com/wonny/finpulse/pkg/logger"
	"github.com/wonny/finpulse/pkg/metrics"
	"github.com/wonny/finpulse/pkg/redis"
)

// MinBars is the shortest history that yields a real snapshot
const MinBars = 10

// Cache is the subset of redis.Cache the builder needs
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Options configures a Builder
type Options struct {
	Lookback int           // 스냅샷 조회 기간 (일)
	Timeout  time.Duration // 종목당 fetch 타임아웃
	Cache    Cache         // optional
	CacheTTL time.Duration
	Metrics  *metrics.Recorder // optional
}

// Builder turns market data into technical snapshots, substituting the
// synthetic profile whenever data is missing, short or erroring.
// ⭐ SSOT: 시장 데이터 → 스냅샷 변환은 여기서만
type Builder struct {
	source  contracts.MarketDataSource
	opts    Options
	logger  *logger.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewBuilder creates a snapshot builder
func NewBuilder(source contracts.MarketDataSource, log *logger.Logger, opts Options) *Builder {
	if opts.Lookback <= 0 {
		opts.Lookback = 60
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Builder{
		source:  source,
		opts:    opts,
		logger:  log,
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// History fetches lookbackDays of bars under the per-symbol timeout.
// Every failure, including too few bars, wraps contracts.ErrDataUnavailable.
func (b *Builder) History(ctx context.Context, symbol string, lookbackDays, minBars int) ([]contracts.PriceBar, error) {
	fctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	start := time.Now()
	bars, err := b.source.FetchHistory(fctx, symbol, lookbackDays)
	b.metrics.ObserveFetch("history", err == nil, time.Since(start))

	if err != nil {
		if errors.Is(err, contracts.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", contracts.ErrDataUnavailable, symbol, err)
	}
	if len(bars) < minBars {
		return nil, fmt.Errorf("%w: %s: %d bars, need %d", contracts.ErrDataUnavailable, symbol, len(bars), minBars)
	}

	return bars, nil
}

// Build returns the snapshot for symbol. It never fails: faults yield the
// synthetic snapshot (IsRealData = false).
func (b *Builder) Build(ctx context.Context, symbol string) contracts.TechnicalSnapshot {
	sym := fallback.Normalize(symbol)
	if sym == "" {
		return fallback.Snapshot(sym, b.now())
	}

	if snap, ok := b.cached(ctx, sym); ok {
		return snap
	}

	bars, err := b.History(ctx, sym, b.opts.Lookback, MinBars)
	if err != nil {
		reason := FallbackReason(err)
		b.metrics.IncFallback("snapshot", reason)
		b.logger.WithFields(map[string]interface{}{
			"symbol": sym,
			"reason": reason,
			"error":  err.Error(),
		}).Warn("Market data unavailable, using synthetic snapshot")
		return fallback.Snapshot(sym, b.now())
	}

	meta := b.metadata(ctx, sym)
	snap := b.fromBars(sym, meta, bars)

	if b.opts.Cache != nil {
		if err := b.opts.Cache.Set(ctx, redis.SnapshotKey(sym), snap, b.opts.CacheTTL); err != nil {
			b.logger.WithError(err).Warn("Failed to cache snapshot")
		}
	}

	return snap
}

func (b *Builder) cached(ctx context.Context, sym string) (contracts.TechnicalSnapshot, bool) {
	var snap contracts.TechnicalSnapshot
	if b.opts.Cache == nil {
		return snap, false
	}

	found, err := b.opts.Cache.Get(ctx, redis.SnapshotKey(sym), &snap)
	switch {
	case err != nil:
		b.metrics.IncCache("error")
		b.logger.WithError(err).Warn("Snapshot cache lookup failed")
		return snap, false
	case !found:
		b.metrics.IncCache("miss")
		return snap, false
	}

	b.metrics.IncCache("hit")
	return snap, true
}

// metadata defaults the display name to the symbol and market cap to 0
func (b *Builder) metadata(ctx context.Context, sym string) contracts.Metadata {
	fctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	meta, err := b.source.FetchMetadata(fctx, sym)
	if err != nil {
		b.logger.ForSymbol(sym).Debug("Metadata unavailable, using defaults")
		return contracts.Metadata{DisplayName: sym}
	}
	if meta.DisplayName == "" {
		meta.DisplayName = sym
	}
	return meta
}

func (b *Builder) fromBars(sym string, meta contracts.Metadata, bars []contracts.PriceBar) contracts.TechnicalSnapshot {
	last := bars[len(bars)-1]
	prev := bars[len(bars)-2]

	change := last.Close - prev.Close
	changePct := 0.0
	if prev.Close != 0 {
		changePct = change / prev.Close * 100
	}

	set := indicator.Compute(bars)

	snap := contracts.TechnicalSnapshot{
		Symbol:             sym,
		CompanyName:        meta.DisplayName,
		CurrentPrice:       mathutil.Round(last.Close, 2),
		PriceChange:        mathutil.Round(change, 2),
		PriceChangePercent: mathutil.Round(changePct, 2),
		Volume:             last.Volume,
		VolumeAvg:          set.VolumeAvg.Value,
		MarketCap:          meta.MarketCap,
		RSI:                mathutil.Round(set.RSI.Value, 2),
		MACD:               mathutil.Round(set.MACD.MACD, 4),
		MACDSignal:         mathutil.Round(set.MACD.Signal, 4),
		SMA20:              mathutil.Round(set.SMA20.Value, 2),
		SMA50:              mathutil.Round(set.SMA50.Value, 2),
		IsRealData:         true,
		Guards:             set.Guards(),
		Timestamp:          b.now(),
	}

	// 반올림된 값 기준 (표시값과 일관)
	snap.TrendStrength = indicator.TrendStrength(snap.CurrentPrice, snap.SMA20, snap.SMA50, snap.RSI, snap.MACD)

	for _, g := range snap.Guards {
		name, reason, _ := strings.Cut(g, ":")
		b.metrics.IncGuard(name, reason)
	}

	b.logger.WithFields(map[string]interface{}{
		"symbol":         sym,
		"bars":           len(bars),
		"rsi":            snap.RSI,
		"macd":           snap.MACD,
		"trend_strength": snap.TrendStrength,
		"guards":         snap.Guards,
	}).Debug("Built technical snapshot")

	return snap
}

// FallbackReason labels why market data was unavailable (metrics/logs)
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "data_unavailable"
	}
}
