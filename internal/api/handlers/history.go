package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/finpulse/internal/history"
	"github.com/wonny/finpulse/pkg/logger"
)

// HistoryStore reads stored PulseScores
type HistoryStore interface {
	List(ctx context.Context, symbol string, limit int) ([]history.Entry, error)
}

// maxHistoryLimit caps ?limit=
const maxHistoryLimit = 500

// HistoryHandler handles score history endpoints
type HistoryHandler struct {
	store  HistoryStore // nil when DATABASE_URL is unset
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler; store may be nil
func NewHistoryHandler(store HistoryStore, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:  store,
		logger: log,
	}
}

// GetHistory returns stored scores, newest first
// GET /api/pulsescore/{symbol}/history?limit=30
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolVar(w, r)
	if !ok {
		return
	}

	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "score history is not configured")
		return
	}

	limit := history.DefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.store.List(r.Context(), symbol, limit)
	if errors.Is(err, history.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no score history for "+symbol)
		return
	}
	if err != nil {
		h.logger.ForSymbol(symbol).WithError(err).Error("Failed to get score history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve score history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"count":   len(entries),
		"history": entries,
	})
}
