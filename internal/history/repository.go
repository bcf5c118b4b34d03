// Package history persists PulseScore results for trend queries.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/fallback"
)

// ErrNotFound is returned when a symbol has no stored scores
var ErrNotFound = errors.New("history: no scores found")

// DefaultLimit caps List when the caller passes limit <= 0
const DefaultLimit = 30

// Entry is one stored PulseScore
type Entry struct {
	Symbol         string                    `json:"symbol"`
	PulseScore     float64                   `json:"pulse_score"`
	Trend          string                    `json:"trend"`
	Recommendation string                    `json:"recommendation"`
	Confidence     float64                   `json:"confidence"`
	IsRealData     bool                      `json:"is_real_data"`
	Breakdown      *contracts.ScoreBreakdown `json:"breakdown,omitempty"`
	ScoredAt       time.Time                 `json:"scored_at"`
}

// EntryFromResult converts a scoring result to a storable entry
func EntryFromResult(r contracts.PulseScoreResult) Entry {
	return Entry{
		Symbol:         fallback.Normalize(r.Symbol),
		PulseScore:     r.PulseScore,
		Trend:          r.Trend,
		Recommendation: r.Recommendation,
		Confidence:     r.Confidence,
		IsRealData:     r.IsRealData,
		Breakdown:      r.Breakdown,
		ScoredAt:       r.Timestamp.UTC().Truncate(time.Second),
	}
}

// Repository handles PulseScore history persistence
// ⭐ SSOT: 점수 이력 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new history repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS analytics;
	CREATE TABLE IF NOT EXISTS analytics.pulse_history (
		symbol         TEXT        NOT NULL,
		scored_at      TIMESTAMPTZ NOT NULL,
		pulse_score    NUMERIC(5,1) NOT NULL,
		trend          TEXT        NOT NULL,
		recommendation TEXT        NOT NULL,
		confidence     NUMERIC(5,1) NOT NULL,
		is_real_data   BOOLEAN     NOT NULL,
		breakdown      JSONB,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (symbol, scored_at)
	);
	CREATE INDEX IF NOT EXISTS idx_pulse_history_scored_at
		ON analytics.pulse_history (scored_at DESC);
`

// EnsureSchema creates the history table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure history schema: %w", err)
	}
	return nil
}

// Save stores entries in one transaction. Re-saving the same symbol and
// timestamp overwrites the row.
func (r *Repository) Save(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO analytics.pulse_history (
			symbol, scored_at, pulse_score, trend, recommendation,
			confidence, is_real_data, breakdown
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, scored_at) DO UPDATE SET
			pulse_score = EXCLUDED.pulse_score,
			trend = EXCLUDED.trend,
			recommendation = EXCLUDED.recommendation,
			confidence = EXCLUDED.confidence,
			is_real_data = EXCLUDED.is_real_data,
			breakdown = EXCLUDED.breakdown,
			created_at = NOW()
	`

	for _, e := range entries {
		var breakdownJSON []byte
		if e.Breakdown != nil {
			if breakdownJSON, err = json.Marshal(e.Breakdown); err != nil {
				return fmt.Errorf("failed to marshal breakdown: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, query,
			e.Symbol, e.ScoredAt, e.PulseScore, e.Trend, e.Recommendation,
			e.Confidence, e.IsRealData, breakdownJSON,
		); err != nil {
			return fmt.Errorf("failed to insert history entry %s: %w", e.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List returns up to limit entries for symbol, newest first
func (r *Repository) List(ctx context.Context, symbol string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	sym := fallback.Normalize(symbol)

	query := `
		SELECT symbol, scored_at, pulse_score, trend, recommendation,
		       confidence, is_real_data, breakdown
		FROM analytics.pulse_history
		WHERE symbol = $1
		ORDER BY scored_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, sym, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sym)
	}
	return entries, nil
}

// Latest returns the newest entry for symbol
func (r *Repository) Latest(ctx context.Context, symbol string) (*Entry, error) {
	sym := fallback.Normalize(symbol)

	query := `
		SELECT symbol, scored_at, pulse_score, trend, recommendation,
		       confidence, is_real_data, breakdown
		FROM analytics.pulse_history
		WHERE symbol = $1
		ORDER BY scored_at DESC
		LIMIT 1
	`

	e, err := scanEntry(r.pool.QueryRow(ctx, query, sym))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sym)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Prune deletes entries older than cutoff and returns the number removed
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM analytics.pulse_history WHERE scored_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var breakdownJSON []byte

	err := row.Scan(
		&e.Symbol, &e.ScoredAt, &e.PulseScore, &e.Trend, &e.Recommendation,
		&e.Confidence, &e.IsRealData, &breakdownJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan history entry: %w", err)
	}

	if len(breakdownJSON) > 0 {
		e.Breakdown = &contracts.ScoreBreakdown{}
		if err := json.Unmarshal(breakdownJSON, e.Breakdown); err != nil {
			return e, fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}
	}

	return e, nil
}
