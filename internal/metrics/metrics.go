package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SignalBench/internal/model"
)

// Metrics holds all Prometheus metrics for pipeline runs.
type Metrics struct {
	RunsTotal      prometheus.Counter
	RunFailures    *prometheus.CounterVec   // labels: kind
	StageDuration  *prometheus.HistogramVec // labels: stage
	CumReturn      *prometheus.GaugeVec     // labels: series=raw|strategy
	Trades         prometheus.Gauge
	HeldOutAcc     prometheus.Gauge
	LastRunSuccess prometheus.Gauge // unix seconds
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbench_runs_total",
			Help: "Total pipeline runs started",
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbench_run_failures_total",
			Help: "Pipeline runs aborted, by failure kind",
		}, []string{"kind"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalbench_stage_duration_seconds",
			Help:    "Wall time per pipeline stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
		CumReturn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signalbench_cumulative_return",
			Help: "Final cumulative log return of the last run",
		}, []string{"series"}),
		Trades: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbench_trades",
			Help: "Number of long entries in the last run",
		}),
		HeldOutAcc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbench_held_out_accuracy",
			Help: "Classifier accuracy on held-out rows of the last run",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbench_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunFailures,
		m.StageDuration,
		m.CumReturn,
		m.Trades,
		m.HeldOutAcc,
		m.LastRunSuccess,
	)
	return m
}

// ObserveStage records one stage duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RunSucceeded updates the gauges from a finished run.
func (m *Metrics) RunSucceeded(res *model.RunResult) {
	s := res.Summary
	m.CumReturn.WithLabelValues("raw").Set(s.CumRawReturn)
	m.CumReturn.WithLabelValues("strategy").Set(s.CumStrategyReturn)
	m.Trades.Set(float64(s.Trades))
	m.HeldOutAcc.Set(s.HeldOutAccuracy)
	m.LastRunSuccess.Set(float64(res.StartedAt.Unix()))
}

// RunFailed counts an aborted run.
func (m *Metrics) RunFailed(kind string) {
	m.RunFailures.WithLabelValues(kind).Inc()
}

// Pinger checks a dependency, e.g. the run database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthStatus tracks the outcome of the latest run.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt time.Time
	LastRunAt time.Time
	LastRunID string
	LastError string
	DB        Pinger

	dbOK        bool
	dbLatency   time.Duration
	dbCheckedAt time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now(), dbOK: true}
}

// SetRun records the latest run outcome; err is nil on success.
func (h *HealthStatus) SetRun(id string, at time.Time, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastRunAt = at
	h.LastRunID = id
	h.LastError = ""
	if err != nil {
		h.LastError = err.Error()
	}
}

// CheckDB pings the database and records latency and health.
func (h *HealthStatus) CheckDB(ctx context.Context) {
	if h.DB == nil {
		return
	}
	start := time.Now()
	err := h.DB.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.dbOK = err == nil
	h.dbLatency = latency
	h.dbCheckedAt = time.Now()
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.CheckDB(r.Context())

	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if h.LastError != "" {
		overallStatus = "degraded"
	}
	if !h.dbOK {
		overallStatus = "unhealthy"
		httpCode = http.StatusServiceUnavailable
	}

	lastRun := ""
	if !h.LastRunAt.IsZero() {
		lastRun = h.LastRunAt.Format(time.RFC3339)
	}
	status := struct {
		Status      string  `json:"status"`
		Uptime      string  `json:"uptime"`
		LastRunAt   string  `json:"last_run_at"`
		LastRunID   string  `json:"last_run_id"`
		LastError   string  `json:"last_error,omitempty"`
		DBOK        bool    `json:"db_ok"`
		DBLatencyMs float64 `json:"db_latency_ms"`
		DBCheckedAt string  `json:"db_checked_at,omitempty"`
	}{
		Status:      overallStatus,
		Uptime:      time.Since(h.StartedAt).Round(time.Second).String(),
		LastRunAt:   lastRun,
		LastRunID:   h.LastRunID,
		LastError:   h.LastError,
		DBOK:        h.dbOK,
		DBLatencyMs: float64(h.dbLatency.Microseconds()) / 1000.0,
	}
	if !h.dbCheckedAt.IsZero() {
		status.DBCheckedAt = h.dbCheckedAt.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, gatherer prometheus.Gatherer, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the mux for embedding and tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
