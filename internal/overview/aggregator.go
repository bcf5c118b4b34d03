// Package overview aggregates benchmark sentiment and sector performance.
package overview

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/mathutil"
	"github.com/wonny/finpulse/pkg/logger"
)

// Trend thresholds (percent), shared by benchmark and sectors
const (
	BullishAbove = 1.0
	BearishBelow = -1.0
)

// Sector is a named, ordered member list
type Sector struct {
	Name    string   `yaml:"name" json:"name"`
	Members []string `yaml:"members" json:"members"`
}

// Config describes what the overview aggregates
type Config struct {
	Benchmark         string
	BenchmarkLookback int // 일
	Sectors           []Sector
	Concurrency       int
}

// DefaultConfig returns SPY over one month and the three default sectors
func DefaultConfig() Config {
	return Config{
		Benchmark:         "SPY",
		BenchmarkLookback: 30,
		Sectors: []Sector{
			{Name: "Technology", Members: []string{"AAPL", "MSFT", "NVDA"}},
			{Name: "Consumer", Members: []string{"AMZN", "TSLA", "NFLX"}},
			{Name: "Social Media", Members: []string{"META", "GOOGL"}},
		},
		Concurrency: 8,
	}
}

// HistorySource fetches raw bars; failures wrap contracts.ErrDataUnavailable
type HistorySource interface {
	History(ctx context.Context, symbol string, lookbackDays, minBars int) ([]contracts.PriceBar, error)
}

// SnapshotSource yields a snapshot per symbol and never fails
type SnapshotSource interface {
	Build(ctx context.Context, symbol string) contracts.TechnicalSnapshot
}

// Aggregator builds the market overview
// ⭐ SSOT: 시장 개요 집계는 여기서만
type Aggregator struct {
	config    Config
	history   HistorySource
	snapshots SnapshotSource
	logger    *logger.Logger
	now       func() time.Time
}

// NewAggregator creates a new aggregator
func NewAggregator(config Config, history HistorySource, snapshots SnapshotSource, log *logger.Logger) *Aggregator {
	if config.BenchmarkLookback <= 0 {
		config.BenchmarkLookback = 30
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	return &Aggregator{
		config:    config,
		history:   history,
		snapshots: snapshots,
		logger:    log,
		now:       time.Now,
	}
}

// Trend maps a percentage change to Bullish / Bearish / Neutral
func Trend(pct float64) string {
	switch {
	case pct > BullishAbove:
		return contracts.TrendBullish
	case pct < BearishBelow:
		return contracts.TrendBearish
	default:
		return contracts.TrendNeutral
	}
}

// Overview computes benchmark sentiment and sector performance. It never
// fails: a benchmark fault yields Neutral/0 and a sector without real
// members yields 0/Neutral.
func (a *Aggregator) Overview(ctx context.Context) contracts.MarketOverview {
	perf, err := a.Benchmark(ctx)
	if err != nil {
		a.logger.WithFields(map[string]interface{}{
			"benchmark": a.config.Benchmark,
			"error":     err.Error(),
		}).Warn("Benchmark unavailable, market sentiment neutral")
	}

	return contracts.MarketOverview{
		MarketSentiment:      Trend(perf),
		BenchmarkSymbol:      a.config.Benchmark,
		BenchmarkPerformance: perf,
		SectorPerformance:    a.Sectors(ctx),
		Timestamp:            a.now(),
	}
}

// Benchmark returns the benchmark's change over the lookback, in percent (2dp)
func (a *Aggregator) Benchmark(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	bars, err := a.history.History(ctx, a.config.Benchmark, a.config.BenchmarkLookback, 2)
	if err != nil {
		return 0, err
	}

	first, last := bars[0].Close, bars[len(bars)-1].Close
	if first == 0 {
		return 0, fmt.Errorf("%w: %s: first close is zero", contracts.ErrDataUnavailable, a.config.Benchmark)
	}

	return mathutil.Round((last/first-1)*100, 2), nil
}

// Sectors returns one entry per configured sector, in configuration order
func (a *Aggregator) Sectors(ctx context.Context) []contracts.SectorPerformance {
	result := make([]contracts.SectorPerformance, len(a.config.Sectors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Concurrency)

	for i, sector := range a.config.Sectors {
		g.Go(func() error {
			result[i] = a.sector(gctx, sector)
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (a *Aggregator) sector(ctx context.Context, sector Sector) contracts.SectorPerformance {
	sp := contracts.SectorPerformance{Sector: sector.Name, Trend: contracts.TrendNeutral}

	var sum float64
	for _, symbol := range sector.Members {
		snap := a.snapshots.Build(ctx, symbol)
		if !snap.IsRealData {
			continue
		}
		sum += snap.PriceChangePercent
		sp.RealMembers++
	}

	if sp.RealMembers == 0 {
		a.logger.WithField("sector", sector.Name).Debug("No real members, sector neutral")
		return sp
	}

	sp.Performance = mathutil.Round(sum/float64(sp.RealMembers), 2)
	sp.Trend = Trend(sp.Performance)
	return sp
}
