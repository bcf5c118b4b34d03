package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/finpulse/internal/api/handlers"
	"github.com/wonny/finpulse/pkg/logger"
	"github.com/wonny/finpulse/pkg/metrics"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Pulse   *handlers.PulseHandler
	History *handlers.HistoryHandler
	Health  *handlers.HealthHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, rec *metrics.Recorder, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Service info & health
	r.HandleFunc("/", h.Health.Root).Methods("GET")
	r.HandleFunc("/health", h.Health.Health).Methods("GET")
	if rec != nil {
		r.Handle("/metrics", rec.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Per-symbol queries
	api.HandleFunc("/pulsescore/{symbol}", h.Pulse.GetPulseScore).Methods("GET")
	api.HandleFunc("/pulsescore/{symbol}/history", h.History.GetHistory).Methods("GET")
	api.HandleFunc("/risk/{symbol}", h.Pulse.GetRisk).Methods("GET")
	api.HandleFunc("/stock/{symbol}", h.Pulse.GetStock).Methods("GET")

	// Universe-wide queries
	api.HandleFunc("/opportunities", h.Pulse.GetOpportunities).Methods("GET")
	api.HandleFunc("/market/overview", h.Pulse.GetMarketOverview).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	// Apply middleware (outermost first)
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware)
	r.Use(metricsMiddleware(rec))
	r.Use(loggingMiddleware(log))

	return r
}
