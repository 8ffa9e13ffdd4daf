package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"SignalBench/internal/model"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RunsTotal.Inc()
	m.RunFailed("missing_input")
	m.RunFailed("missing_input")
	m.ObserveStage("features", 20*time.Millisecond)
	m.RunSucceeded(&model.RunResult{
		StartedAt: time.Unix(1700000000, 0),
		Summary:   model.Summary{CumRawReturn: 0.1, CumStrategyReturn: 0.2, Trades: 3, HeldOutAccuracy: 0.6},
	})

	if got := testutil.ToFloat64(m.RunFailures.WithLabelValues("missing_input")); got != 2 {
		t.Errorf("failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CumReturn.WithLabelValues("strategy")); got != 0.2 {
		t.Errorf("strategy return = %v, want 0.2", got)
	}
	if got := testutil.ToFloat64(m.LastRunSuccess); got != 1700000000 {
		t.Errorf("last success = %v", got)
	}
	if n := testutil.CollectAndCount(m.StageDuration); n != 1 {
		t.Errorf("stage series = %d, want 1", n)
	}
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RunsTotal.Inc()
	health := NewHealthStatus()
	health.DB = fakePinger{}
	health.SetRun("run-1", time.Now(), nil)
	srv := NewServer(":0", reg, health)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "signalbench_runs_total 1") {
		t.Errorf("metrics output missing counter:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if rec.Code != http.StatusOK || body["status"] != "healthy" || body["last_run_id"] != "run-1" {
		t.Errorf("healthz = %d %v", rec.Code, body)
	}

	health.SetRun("run-2", time.Now(), errors.New("boom"))
	health.DB = fakePinger{err: errors.New("locked")}
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "unhealthy") {
		t.Errorf("expected unhealthy 503, got %d %s", rec.Code, rec.Body.String())
	}
}
