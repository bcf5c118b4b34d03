package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/history"
	"github.com/wonny/finpulse/pkg/logger"
)

type fakeEngine struct {
	scores   []contracts.PulseScoreResult
	oppCalls int
	ovCalls  int
}

func (e *fakeEngine) ScoreUniverse(ctx context.Context) []contracts.PulseScoreResult {
	return e.scores
}

func (e *fakeEngine) Opportunities(ctx context.Context) contracts.OpportunityList {
	e.oppCalls++
	return contracts.OpportunityList{}
}

func (e *fakeEngine) MarketOverview(ctx context.Context) contracts.MarketOverview {
	e.ovCalls++
	return contracts.MarketOverview{MarketSentiment: contracts.TrendNeutral}
}

type fakeStore struct {
	saved   []history.Entry
	cutoff  time.Time
	saveErr error
}

func (s *fakeStore) Save(ctx context.Context, entries []history.Entry) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, entries...)
	return nil
}

func (s *fakeStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return 2, nil
}

func scores() []contracts.PulseScoreResult {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []contracts.PulseScoreResult{
		{Symbol: "AAPL", PulseScore: 71.2, IsRealData: true, Timestamp: ts},
		{Symbol: "TSLA", PulseScore: 55, IsRealData: false, Timestamp: ts},
		{Symbol: "NVDA", PulseScore: 80.4, IsRealData: true, Timestamp: ts},
	}
}

func TestRefreshJob(t *testing.T) {
	e := &fakeEngine{scores: scores()}
	job := NewRefreshJob(e, "", logger.NewNop())

	assert.Equal(t, "refresh_scores", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, e.oppCalls)
	assert.Equal(t, 1, e.ovCalls)
}

func TestRefreshJob_Canceled(t *testing.T) {
	e := &fakeEngine{scores: scores()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRefreshJob(e, "@hourly", logger.NewNop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.oppCalls)
}

func TestHistoryJob(t *testing.T) {
	store := &fakeStore{}
	job := NewHistoryJob(&fakeEngine{scores: scores()}, store, 24*time.Hour, logger.NewNop())
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, store.saved, 2, "synthetic scores are skipped")
	assert.Equal(t, "AAPL", store.saved[0].Symbol)
	assert.Equal(t, "NVDA", store.saved[1].Symbol)
	assert.Equal(t, now.Add(-24*time.Hour), store.cutoff)
}

func TestHistoryJob_SaveError(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("db down")}
	job := NewHistoryJob(&fakeEngine{scores: scores()}, store, 0, logger.NewNop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.True(t, store.cutoff.IsZero(), "no prune after a failed save")
}
