package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/pkg/logger"
)

// Engine is the part of pulse.Service the jobs drive
type Engine interface {
	ScoreUniverse(ctx context.Context) []contracts.PulseScoreResult
	Opportunities(ctx context.Context) contracts.OpportunityList
	MarketOverview(ctx context.Context) contracts.MarketOverview
}

// RefreshJob re-scores the universe so snapshot, opportunity and overview
// caches stay warm
// ⭐ SSOT: 캐시 갱신 스케줄은 이 Job에서만
type RefreshJob struct {
	engine   Engine
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(engine Engine, schedule string, log *logger.Logger) *RefreshJob {
	if schedule == "" {
		schedule = "0 */5 * * * *"
	}
	return &RefreshJob{
		engine:   engine,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh_scores"
}

// Schedule returns the cron schedule (default every 5 minutes)
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the refresh
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled score refresh")

	scores := j.engine.ScoreUniverse(ctx)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refresh interrupted: %w", err)
	}

	live := 0
	for _, s := range scores {
		if s.IsRealData {
			live++
		}
	}

	opps := j.engine.Opportunities(ctx)
	ov := j.engine.MarketOverview(ctx)

	j.logger.WithFields(map[string]interface{}{
		"symbols":       len(scores),
		"real":          live,
		"opportunities": opps.Count(),
		"sentiment":     ov.MarketSentiment,
	}).Info("Score refresh completed")

	return nil
}
