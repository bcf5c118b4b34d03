package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finpulse/internal/api/handlers"
	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/internal/history"
	"github.com/wonny/finpulse/pkg/database"
	"github.com/wonny/finpulse/pkg/logger"
	"github.com/wonny/finpulse/pkg/metrics"
)

type fakeService struct{}

func (fakeService) Snapshot(ctx context.Context, symbol string) contracts.TechnicalSnapshot {
	return fallback.Snapshot(symbol, time.Now())
}

func (fakeService) PulseScore(ctx context.Context, symbol string) contracts.PulseScoreResult {
	if symbol == "BOOM" {
		panic("scoring exploded")
	}
	return fallback.PulseScore(symbol, time.Now())
}

func (fakeService) Risk(ctx context.Context, symbol string) contracts.RiskResult {
	return fallback.Risk(symbol, time.Now())
}

func (fakeService) Opportunities(ctx context.Context) contracts.OpportunityList {
	return contracts.OpportunityList{
		Opportunities: []contracts.OpportunityResult{{Symbol: "AAPL", OpportunityScore: 80}},
		Scanned:       8,
		Timestamp:     time.Now(),
	}
}

func (fakeService) MarketOverview(ctx context.Context) contracts.MarketOverview {
	return contracts.MarketOverview{MarketSentiment: contracts.TrendNeutral, BenchmarkSymbol: "SPY"}
}

type fakeHistory struct {
	entries map[string][]history.Entry
	err     error
}

func (f *fakeHistory) List(ctx context.Context, symbol string, limit int) ([]history.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entries[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", history.ErrNotFound, symbol)
	}
	if len(e) > limit {
		e = e[:limit]
	}
	return e, nil
}

type fakeDB struct{ healthy bool }

func (f fakeDB) HealthCheck(ctx context.Context) database.HealthStatus {
	return database.HealthStatus{Healthy: f.healthy}
}

type fakeCache string

func (f fakeCache) Status(ctx context.Context) string {
	return string(f)
}

func newTestRouter(store handlers.HistoryStore, db handlers.DBChecker, rec *metrics.Recorder) http.Handler {
	log := logger.NewNop()
	return NewRouter(Handlers{
		Pulse:   handlers.NewPulseHandler(fakeService{}, log),
		History: handlers.NewHistoryHandler(store, log),
		Health:  handlers.NewHealthHandler(db, "abc123"),
	}, rec, log)
}

func do(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func TestRoutes(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	tests := []struct {
		path     string
		status   int
		checkKey string
		want     interface{}
	}{
		{"/", http.StatusOK, "service", "finpulse"},
		{"/health", http.StatusOK, "status", "ok"},
		{"/api/pulsescore/aapl", http.StatusOK, "symbol", "AAPL"},
		{"/api/risk/msft", http.StatusOK, "symbol", "MSFT"},
		{"/api/stock/nvda", http.StatusOK, "symbol", "NVDA"},
		{"/api/opportunities", http.StatusOK, "count", 1.0},
		{"/api/market/overview", http.StatusOK, "market_sentiment", "Neutral"},
		{"/api/pulsescore/" + strings.Repeat("X", 16), http.StatusBadRequest, "error", "invalid symbol"},
		{"/api/nothing", http.StatusNotFound, "error", "Not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, body := do(t, router, tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, body[tt.checkKey])
		})
	}
}

func TestPulseScore_SyntheticPayload(t *testing.T) {
	_, body := do(t, newTestRouter(nil, nil, nil), "/api/pulsescore/ZZZZ")

	assert.Equal(t, false, body["is_real_data"])
	_, hasBreakdown := body["breakdown"]
	assert.False(t, hasBreakdown, "synthetic scores carry no breakdown")
	assert.Contains(t, body, "pulsescore")
}

func TestRecovery(t *testing.T) {
	w, body := do(t, newTestRouter(nil, nil, nil), "/api/pulsescore/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestCORS(t *testing.T) {
	w, _ := do(t, newTestRouter(nil, nil, nil), "/api/market/overview")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHistory(t *testing.T) {
	store := &fakeHistory{entries: map[string][]history.Entry{
		"AAPL": {{Symbol: "AAPL", PulseScore: 70}, {Symbol: "AAPL", PulseScore: 65}},
	}}

	tests := []struct {
		name   string
		store  handlers.HistoryStore
		path   string
		status int
	}{
		{"found", store, "/api/pulsescore/aapl/history", http.StatusOK},
		{"limited", store, "/api/pulsescore/AAPL/history?limit=1", http.StatusOK},
		{"bad limit", store, "/api/pulsescore/AAPL/history?limit=0", http.StatusBadRequest},
		{"unknown", store, "/api/pulsescore/TSLA/history", http.StatusNotFound},
		{"store error", &fakeHistory{err: fmt.Errorf("conn refused")}, "/api/pulsescore/AAPL/history", http.StatusInternalServerError},
		{"not configured", nil, "/api/pulsescore/AAPL/history", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, newTestRouter(tt.store, nil, nil), tt.path)
			assert.Equal(t, tt.status, w.Code)
			if tt.name == "limited" {
				assert.Equal(t, 1.0, body["count"])
			}
		})
	}
}

func TestHealth_Database(t *testing.T) {
	w, body := do(t, newTestRouter(nil, fakeDB{healthy: true}, nil), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", body["config_hash"])

	w, body = do(t, newTestRouter(nil, fakeDB{healthy: false}, nil), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestHealth_Cache(t *testing.T) {
	log := logger.NewNop()
	router := NewRouter(Handlers{
		Pulse:   handlers.NewPulseHandler(fakeService{}, log),
		History: handlers.NewHistoryHandler(nil, log),
		Health:  handlers.NewHealthHandler(nil, "abc123").WithCache(fakeCache("unavailable")),
	}, nil, log)

	w, body := do(t, router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "unavailable", body["cache"])
}

func TestMetricsRoute(t *testing.T) {
	rec := metrics.New()
	router := newTestRouter(nil, nil, rec)

	do(t, router, "/api/risk/AAPL")
	do(t, router, "/api/risk/MSFT")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	raw, _ := io.ReadAll(w.Body)
	out := string(raw)
	assert.Contains(t, out, `finpulse_http_request_duration_seconds_count{method="GET",route="/api/risk/{symbol}",status="200"} 2`)
}

func TestMetricsRoute_Disabled(t *testing.T) {
	w, _ := do(t, newTestRouter(nil, nil, nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
