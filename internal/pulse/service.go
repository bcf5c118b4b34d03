// Package pulse is the query surface of the engine: snapshot, PulseScore,
// risk, opportunities and market overview. No operation returns an error;
// faults degrade to the synthetic or neutral results.
package pulse

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/engineconfig"
	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/internal/overview"
	"github.com/wonny/finpulse/internal/risk"
	"github.com/wonny/finpulse/internal/scoring"
	"github.com/wonny/finpulse/internal/selection"
	"github.com/wonny/finpulse/internal/snapshot"
	"github.com/wonny/finpulse/pkg/logger"
	"github.com/wonny/finpulse/pkg/metrics"
	"github.com/wonny/finpulse/pkg/redis"
)

// Options configures a Service
type Options struct {
	Timeout     time.Duration  // 종목당 fetch 타임아웃
	Concurrency int            // 동시 fetch 수
	Cache       snapshot.Cache // optional
	CacheTTL    time.Duration
	Metrics     *metrics.Recorder // optional
}

// Service wires the engines behind the four query operations
// ⭐ SSOT: 외부(API/CLI/스케줄러)는 이 서비스만 호출
type Service struct {
	config     *engineconfig.Config
	configHash string
	builder    *snapshot.Builder
	scorer     *scoring.Engine
	risk       *risk.Analyzer
	screener   *selection.Screener
	overview   *overview.Aggregator
	opts       Options
	metrics    *metrics.Recorder
	logger     *logger.Logger
	now        func() time.Time
}

// NewService validates cfg and builds the engines
func NewService(cfg *engineconfig.Config, source contracts.MarketDataSource, log *logger.Logger, opts Options) (*Service, error) {
	if err := engineconfig.Validate(cfg); err != nil {
		return nil, err
	}
	hash, err := engineconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash engine config: %w", err)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	builder := snapshot.NewBuilder(source, log, snapshot.Options{
		Lookback: cfg.Lookbacks.SnapshotDays,
		Timeout:  opts.Timeout,
		Cache:    opts.Cache,
		CacheTTL: opts.CacheTTL,
		Metrics:  opts.Metrics,
	})

	scorer, err := scoring.NewEngine(cfg.TrendFormula(), log)
	if err != nil {
		return nil, err
	}

	screener, err := selection.NewScreener(cfg.ScreenerConfig(opts.Concurrency), log)
	if err != nil {
		return nil, err
	}

	for _, w := range engineconfig.Warn(cfg) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return &Service{
		config:     cfg,
		configHash: hash,
		builder:    builder,
		scorer:     scorer,
		risk:       risk.NewAnalyzer(log),
		screener:   screener,
		overview:   overview.NewAggregator(cfg.OverviewConfig(opts.Concurrency), builder, builder, log),
		opts:       opts,
		metrics:    opts.Metrics,
		logger:     log,
		now:        time.Now,
	}, nil
}

// ConfigHash returns the sha256 of the engine configuration
func (s *Service) ConfigHash() string {
	return s.configHash
}

// Universe returns the configured scan universe
func (s *Service) Universe() []string {
	return s.config.Universe.Symbols
}

// Snapshot returns the technical snapshot of symbol
func (s *Service) Snapshot(ctx context.Context, symbol string) contracts.TechnicalSnapshot {
	return s.builder.Build(ctx, symbol)
}

// PulseScore returns the composite score of symbol
func (s *Service) PulseScore(ctx context.Context, symbol string) contracts.PulseScoreResult {
	snap := s.builder.Build(ctx, symbol)
	result := s.scorer.Score(&snap)
	s.metrics.IncScore(result.Trend)
	return result
}

// ScoreUniverse scores every universe symbol concurrently, in universe order
func (s *Service) ScoreUniverse(ctx context.Context) []contracts.PulseScoreResult {
	symbols := s.config.Universe.Symbols
	results := make([]contracts.PulseScoreResult, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = s.PulseScore(gctx, symbol)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Risk returns the risk profile of symbol
func (s *Service) Risk(ctx context.Context, symbol string) contracts.RiskResult {
	sym := fallback.Normalize(symbol)

	bars, err := s.builder.History(ctx, sym, s.config.Lookbacks.RiskDays, risk.MinBars)
	if err != nil {
		reason := snapshot.FallbackReason(err)
		s.metrics.IncFallback("risk", reason)
		s.logger.WithFields(map[string]interface{}{
			"symbol": sym,
			"reason": reason,
			"error":  err.Error(),
		}).Warn("Market data unavailable, using synthetic risk profile")
		return fallback.Risk(sym, s.now())
	}

	return s.risk.Analyze(sym, bars)
}

// Opportunities scans the universe and returns the ranked opportunities
func (s *Service) Opportunities(ctx context.Context) contracts.OpportunityList {
	key := redis.OpportunitiesKey(s.configHash)

	var list contracts.OpportunityList
	if s.fromCache(ctx, key, &list) {
		return list
	}

	list = s.screener.Scan(ctx, s.config.Universe.Symbols, s.builder)
	s.toCache(ctx, key, list)
	return list
}

// MarketOverview returns benchmark sentiment and sector performance
func (s *Service) MarketOverview(ctx context.Context) contracts.MarketOverview {
	key := redis.OverviewKey(s.configHash)

	var ov contracts.MarketOverview
	if s.fromCache(ctx, key, &ov) {
		return ov
	}

	ov = s.overview.Overview(ctx)
	s.toCache(ctx, key, ov)
	return ov
}

func (s *Service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.opts.Cache == nil {
		return false
	}

	found, err := s.opts.Cache.Get(ctx, key, dest)
	if err != nil {
		s.metrics.IncCache("error")
		s.logger.WithError(err).WithField("key", key).Warn("Cache lookup failed")
		return false
	}
	if !found {
		s.metrics.IncCache("miss")
		return false
	}
	s.metrics.IncCache("hit")
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if s.opts.Cache == nil || ctx.Err() != nil {
		return
	}
	if err := s.opts.Cache.Set(ctx, key, value, s.opts.CacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to cache result")
	}
}
