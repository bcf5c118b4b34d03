package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/history"
	"github.com/wonny/finpulse/pkg/logger"
)

// Scorer scores the whole universe
type Scorer interface {
	ScoreUniverse(ctx context.Context) []contracts.PulseScoreResult
}

// HistoryStore persists score history
type HistoryStore interface {
	Save(ctx context.Context, entries []history.Entry) error
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryJob stores the universe's real-data PulseScores and prunes old rows
type HistoryJob struct {
	scorer    Scorer
	store     HistoryStore
	retention time.Duration // 0 = keep forever
	logger    *logger.Logger
	now       func() time.Time
}

// NewHistoryJob creates a new history job
func NewHistoryJob(scorer Scorer, store HistoryStore, retention time.Duration, log *logger.Logger) *HistoryJob {
	return &HistoryJob{
		scorer:    scorer,
		store:     store,
		retention: retention,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *HistoryJob) Name() string {
	return "score_history"
}

// Schedule returns the cron schedule (hourly)
func (j *HistoryJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the history snapshot. Synthetic scores are never stored.
func (j *HistoryJob) Run(ctx context.Context) error {
	scores := j.scorer.ScoreUniverse(ctx)

	entries := make([]history.Entry, 0, len(scores))
	for _, s := range scores {
		if !s.IsRealData {
			continue
		}
		entries = append(entries, history.EntryFromResult(s))
	}

	if err := j.store.Save(ctx, entries); err != nil {
		return fmt.Errorf("save score history: %w", err)
	}

	var pruned int64
	if j.retention > 0 {
		n, err := j.store.Prune(ctx, j.now().Add(-j.retention))
		if err != nil {
			return fmt.Errorf("prune score history: %w", err)
		}
		pruned = n
	}

	j.logger.WithFields(map[string]interface{}{
		"saved":   len(entries),
		"skipped": len(scores) - len(entries),
		"pruned":  pruned,
	}).Info("Score history stored")

	return nil
}
