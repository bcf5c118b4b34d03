package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects engine and HTTP metrics on its own registry.
// A nil *Recorder is valid and records nothing.
// ⭐ SSOT: 모든 Prometheus 메트릭은 여기서만 정의
type Recorder struct {
	registry *prometheus.Registry

	fetchDuration   *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	guards          *prometheus.CounterVec
	scores          *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	jobRuns         *prometheus.CounterVec
}

// New creates a recorder with Go runtime and process collectors attached
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finpulse_fetch_duration_seconds",
				Help:    "Market data fetch latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"source", "outcome"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_fallback_total",
				Help: "Results served from the deterministic fallback",
			},
			[]string{"kind", "reason"},
		),
		guards: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_indicator_guard_total",
				Help: "Indicator computations that hit a numeric guard",
			},
			[]string{"indicator", "reason"},
		),
		scores: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_scores_total",
				Help: "Pulse scores computed by classification",
			},
			[]string{"classification"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_cache_lookups_total",
				Help: "Snapshot cache lookups",
			},
			[]string{"result"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finpulse_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method", "status"},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_job_runs_total",
				Help: "Scheduled job runs by outcome",
			},
			[]string{"job", "outcome"},
		),
	}
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveFetch records a market data fetch
func (r *Recorder) ObserveFetch(source string, ok bool, d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(source, outcome(ok)).Observe(d.Seconds())
}

// IncFallback counts a fallback result ("snapshot", "pulse", "risk")
func (r *Recorder) IncFallback(kind, reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(kind, reason).Inc()
}

// IncGuard counts an indicator guard hit
func (r *Recorder) IncGuard(indicator, reason string) {
	if r == nil {
		return
	}
	r.guards.WithLabelValues(indicator, reason).Inc()
}

// IncScore counts a computed pulse score
func (r *Recorder) IncScore(classification string) {
	if r == nil {
		return
	}
	r.scores.WithLabelValues(classification).Inc()
}

// IncCache counts a cache lookup ("hit", "miss", "error")
func (r *Recorder) IncCache(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records an HTTP request
func (r *Recorder) ObserveRequest(route, method, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// IncJob counts a scheduler job run
func (r *Recorder) IncJob(job string, ok bool) {
	if r == nil {
		return
	}
	r.jobRuns.WithLabelValues(job, outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
