package recorder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SignalBench/internal/model"
)

func sampleRun(id string, started time.Time) *model.RunResult {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	feat := &model.FeatureRow{Index: 1, PrevClose: 100, MAShort: 101, MALong: 101, RSI: 100, OpenMinusClose: -1, HighMinusLow: 3}
	return &model.RunResult{
		ID:        id,
		Symbol:    "TEST",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Records: []model.Record{
			{Bar: model.PriceBar{Date: day, Open: 99, High: 101, Low: 98, Close: 100, Volume: 10}},
			{
				Bar:           model.PriceBar{Date: day.AddDate(0, 0, 1), Open: 101, High: 103, Low: 100, Close: 102, Volume: 12},
				Features:      feat,
				Signal:        model.SignalUp,
				PredictedExit: 104.5,
				HasExit:       true,
				HasReturn:     true,
				RawReturn:     0.0198,
				CumRawReturn:  0.0198,
			},
		},
		Summary: model.Summary{Bars: 2, FeatureRows: 1, Classifier: "knn(k=3,weights=uniform)", Trades: 1, StrategyReturnPct: 0.02},
	}
}

func TestSQLiteRecorder(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	now := time.Now()
	if err := r.RecordRun(sampleRun("a", now.Add(-time.Hour))); err != nil {
		t.Fatalf("RecordRun a: %v", err)
	}
	if err := r.RecordRun(sampleRun("b", now)); err != nil {
		t.Fatalf("RecordRun b: %v", err)
	}
	if err := r.RecordRun(sampleRun("b", now)); err == nil {
		t.Error("expected duplicate run id to fail")
	}
	if err := r.RecordFailure("TEST", "missing_input", errors.New("no bars")); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	var records, nullSignals, failures int
	r.db.QueryRow(`SELECT COUNT(*) FROM run_records`).Scan(&records)
	r.db.QueryRow(`SELECT COUNT(*) FROM run_records WHERE signal IS NULL AND prev_close IS NULL`).Scan(&nullSignals)
	r.db.QueryRow(`SELECT COUNT(*) FROM run_failures`).Scan(&failures)
	if records != 4 {
		t.Errorf("records = %d, want 4 (failed duplicate must roll back)", records)
	}
	if nullSignals != 2 {
		t.Errorf("first bars should store NULL signal and features, got %d", nullSignals)
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}

	runs, err := r.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "b" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].Summary.Classifier != "knn(k=3,weights=uniform)" || runs[0].Summary.Trades != 1 {
		t.Errorf("summary not round-tripped: %+v", runs[0].Summary)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRun("x", time.Now()).Records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	header := rows[0]
	col := make(map[string]int)
	for i, h := range header {
		col[h] = i
	}
	if len(header) != 20 {
		t.Errorf("header has %d columns, want 20", len(header))
	}
	first, second := rows[1], rows[2]
	if first[col["signal"]] != "" || first[col["rsi"]] != "" || first[col["raw_return"]] != "" {
		t.Errorf("first bar should have empty signal, features and return: %v", first)
	}
	if first[col["position"]] != "0" {
		t.Errorf("first position = %q", first[col["position"]])
	}
	if second[col["signal"]] != "1" || second[col["predicted_exit"]] != "104.5" || second[col["date"]] != "2024-06-04" {
		t.Errorf("unexpected second row: %v", second)
	}
}

func TestCSVRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.csv")
	rec := NewCSVRecorder(path)
	if err := rec.RecordRun(sampleRun("x", time.Now())); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("date,open,high,low,close,volume,prev_close")) {
		t.Errorf("unexpected header: %s", data[:40])
	}
}

type failingRecorder struct{ *NoopRecorder }

func (failingRecorder) RecordRun(*model.RunResult) error { return errors.New("disk full") }

func TestMulti(t *testing.T) {
	m := Multi{NewNoopRecorder(), failingRecorder{NewNoopRecorder()}}
	if err := m.RecordRun(sampleRun("x", time.Now())); err == nil {
		t.Error("expected joined error")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := m.RecentRuns(1); err == nil {
		t.Error("expected error without a history recorder")
	}
}
