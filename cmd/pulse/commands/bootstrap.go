package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/finpulse/internal/engineconfig"
	"github.com/wonny/finpulse/internal/external/yahoo"
	"github.com/wonny/finpulse/internal/history"
	"github.com/wonny/finpulse/internal/pulse"
	"github.com/wonny/finpulse/internal/snapshot"
	"github.com/wonny/finpulse/pkg/config"
	"github.com/wonny/finpulse/pkg/database"
	"github.com/wonny/finpulse/pkg/httputil"
	"github.com/wonny/finpulse/pkg/logger"
	"github.com/wonny/finpulse/pkg/metrics"
	"github.com/wonny/finpulse/pkg/redis"
)

// cachePrefix namespaces every redis key this service writes
const cachePrefix = "finpulse"

// app holds the wired dependencies shared by all commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder // nil unless requested and enabled
	redis   *redis.Client
	db      *database.DB        // nil without DATABASE_URL
	history *history.Repository // nil without DATABASE_URL
	service *pulse.Service
}

// bootstrapOptions selects the optional parts of the wiring
type bootstrapOptions struct {
	logOutput   io.Writer // JSON logs go here
	withMetrics bool
	withHistory bool
}

// bootstrap wires config → logger → redis → http → yahoo → engine → (db)
// ⭐ SSOT: 모든 커맨드의 의존성 조립은 여기서만
func bootstrap(ctx context.Context, opts bootstrapOptions) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if engineConfig != "" {
		cfg.Engine.ConfigPath = engineConfig
	}

	// 2. Initialize logger
	var log *logger.Logger
	if opts.logOutput != nil {
		log = logger.NewWithWriter(cfg, opts.logOutput)
	} else {
		log = logger.New(cfg)
	}

	a := &app{cfg: cfg, log: log}

	// 3. Metrics
	if opts.withMetrics && cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 4. Redis (cache + shared rate limit)
	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. HTTP client
	httpClient := httputil.New(log, cfg.Engine.FetchTimeout).
		WithLocalLimit(cfg.Yahoo.RatePerSec, cfg.Yahoo.Burst)

	var cache snapshot.Cache
	if a.redis.Enabled() {
		cache = redis.NewCache(a.redis, cachePrefix)
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(a.redis, cachePrefix), redis.YahooRateLimit)
		log.Info("Redis cache enabled")
	}

	// 6. Market data source
	source := yahoo.NewClient(httpClient, cfg.Yahoo.BaseURL, log)

	// 7. Engine config + service
	engineCfg, err := engineconfig.Load(cfg.Engine.ConfigPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	a.service, err = pulse.NewService(engineCfg, source, log, pulse.Options{
		Timeout:     cfg.Engine.FetchTimeout,
		Concurrency: cfg.Engine.FetchConcurrency,
		Cache:       cache,
		CacheTTL:    cfg.Engine.CacheTTL,
		Metrics:     a.metrics,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create pulse service: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"config_id":   engineCfg.Meta.ConfigID,
		"config_hash": a.service.ConfigHash(),
		"universe":    len(engineCfg.Universe.Symbols),
	}).Debug("Engine ready")

	// 8. Score history (optional)
	if opts.withHistory && cfg.Database.Enabled() {
		a.db, err = database.New(ctx, cfg.Database)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}

		a.history = history.NewRepository(a.db.Pool)
		if err := a.history.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure history schema: %w", err)
		}
		log.Info("Connected to history database")
	}

	return a, nil
}

// Close releases the database pool and redis connection
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
