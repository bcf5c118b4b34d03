package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/finpulse/pkg/database"
)

// DBChecker reports database health
type DBChecker interface {
	HealthCheck(ctx context.Context) database.HealthStatus
}

// CacheChecker reports cache reachability
type CacheChecker interface {
	Status(ctx context.Context) string
}

// HealthHandler serves liveness and service info
type HealthHandler struct {
	db         DBChecker    // optional
	cache      CacheChecker // optional
	configHash string
	started    time.Time
}

// NewHealthHandler creates a new health handler; db may be nil
func NewHealthHandler(db DBChecker, configHash string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		configHash: configHash,
		started:    time.Now(),
	}
}

// WithCache adds cache status to /health. An unreachable cache is reported
// but does not fail the check: queries fall through to the data source.
func (h *HealthHandler) WithCache(cache CacheChecker) *HealthHandler {
	h.cache = cache
	return h
}

// Root describes the service
// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "finpulse",
		"version": "1.0",
		"endpoints": []string{
			"/api/pulsescore/{symbol}",
			"/api/pulsescore/{symbol}/history",
			"/api/risk/{symbol}",
			"/api/stock/{symbol}",
			"/api/opportunities",
			"/api/market/overview",
		},
	})
}

// Health returns 200 unless a configured database is unhealthy
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":      "ok",
		"service":     "finpulse",
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"config_hash": h.configHash,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.cache != nil {
		body["cache"] = h.cache.Status(ctx)
	}

	if h.db == nil {
		respondJSON(w, http.StatusOK, body)
		return
	}

	status := h.db.HealthCheck(ctx)
	body["database"] = status
	if !status.Healthy {
		body["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
