package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/pkg/logger"
)

// PulseService is the query surface the handlers expose
type PulseService interface {
	Snapshot(ctx context.Context, symbol string) contracts.TechnicalSnapshot
	PulseScore(ctx context.Context, symbol string) contracts.PulseScoreResult
	Risk(ctx context.Context, symbol string) contracts.RiskResult
	Opportunities(ctx context.Context) contracts.OpportunityList
	MarketOverview(ctx context.Context) contracts.MarketOverview
}

// PulseHandler handles scoring API endpoints. The service never fails, so
// every well-formed request answers 200.
// ⭐ SSOT: 스코어링 API 핸들러는 이 구조체에서만
type PulseHandler struct {
	service PulseService
	logger  *logger.Logger
}

// NewPulseHandler creates a new pulse handler
func NewPulseHandler(service PulseService, log *logger.Logger) *PulseHandler {
	return &PulseHandler{
		service: service,
		logger:  log,
	}
}

// GetPulseScore returns the composite score
// GET /api/pulsescore/{symbol}
func (h *PulseHandler) GetPulseScore(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolVar(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.service.PulseScore(r.Context(), symbol))
}

// GetRisk returns the risk profile
// GET /api/risk/{symbol}
func (h *PulseHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolVar(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.service.Risk(r.Context(), symbol))
}

// GetStock returns the raw technical snapshot
// GET /api/stock/{symbol}
func (h *PulseHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolVar(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.service.Snapshot(r.Context(), symbol))
}

// GetOpportunities returns the ranked opportunities
// GET /api/opportunities
func (h *PulseHandler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	list := h.service.Opportunities(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp":     list.Timestamp,
		"scanned":       list.Scanned,
		"count":         list.Count(),
		"opportunities": list.Opportunities,
	})
}

// GetMarketOverview returns benchmark sentiment and sector performance
// GET /api/market/overview
func (h *PulseHandler) GetMarketOverview(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.MarketOverview(r.Context()))
}
