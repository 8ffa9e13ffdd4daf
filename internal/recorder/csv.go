package recorder

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"SignalBench/internal/model"
)

// CSVRecorder writes the per-bar records of the latest run to a file,
// replacing the previous contents.
type CSVRecorder struct {
	path string
}

func NewCSVRecorder(path string) *CSVRecorder {
	return &CSVRecorder{path: path}
}

func (c *CSVRecorder) RecordRun(res *model.RunResult) error {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(f, res.Records); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("rename csv: %w", err)
	}
	log.Printf("[INFO] wrote %d records to %s", len(res.Records), c.path)
	return nil
}

func (c *CSVRecorder) RecordFailure(_, _ string, _ error) error { return nil }

func (c *CSVRecorder) Close() error { return nil }

// CSVHeader lists the exported columns in order.
func CSVHeader() []string {
	h := []string{"date", "open", "high", "low", "close", "volume"}
	h = append(h, model.FeatureNames...)
	return append(h, "signal", "predicted_exit", "position",
		"raw_return", "strategy_return", "cumulative_raw_return", "cumulative_strategy_return")
}

// WriteCSV writes records as a table with one row per bar. Values that do not
// exist for a bar are left empty.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Bar.Date.Format("2006-01-02"),
			num(rec.Bar.Open), num(rec.Bar.High), num(rec.Bar.Low), num(rec.Bar.Close), num(rec.Bar.Volume),
		}
		if rec.Features != nil {
			for _, v := range rec.Features.Vector() {
				row = append(row, num(v))
			}
		} else {
			row = append(row, make([]string, len(model.FeatureNames))...)
		}
		signal, exit, rawRet, stratRet := "", "", "", ""
		if rec.Signal != model.SignalNone {
			signal = strconv.Itoa(int(rec.Signal))
		}
		if rec.HasExit {
			exit = num(rec.PredictedExit)
		}
		if rec.HasReturn {
			rawRet, stratRet = num(rec.RawReturn), num(rec.StrategyReturn)
		}
		row = append(row, signal, exit, strconv.Itoa(int(rec.Position)), rawRet, stratRet,
			num(rec.CumRawReturn), num(rec.CumStrategyReturn))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
