package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SignalBench/internal/model"
)

// SQLiteRecorder persists run summaries and per-bar records to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			duration_ms       INTEGER,
			bars              INTEGER,
			feature_rows      INTEGER,
			train_rows        INTEGER,
			held_out_rows     INTEGER,
			classifier        TEXT,
			classifier_cv     REAL,
			regressor         TEXT,
			regressor_cv      REAL,
			held_out_accuracy REAL,
			held_out_rmse     REAL,
			trades            INTEGER,
			exposure          REAL,
			cum_raw           REAL,
			cum_strategy      REAL,
			raw_pct           REAL,
			strategy_pct      REAL,
			max_drawdown      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_records (
			run_id           TEXT NOT NULL REFERENCES runs(id),
			bar_index        INTEGER NOT NULL,
			date             TEXT NOT NULL,
			open             REAL,
			high             REAL,
			low              REAL,
			close            REAL,
			volume           REAL,
			prev_close       REAL,
			ma_short         REAL,
			ma_long          REAL,
			rsi              REAL,
			volume_change    REAL,
			open_minus_close REAL,
			high_minus_low   REAL,
			signal           INTEGER,
			predicted_exit   REAL,
			position         INTEGER,
			raw_return       REAL,
			strategy_return  REAL,
			cum_raw          REAL,
			cum_strategy     REAL,
			PRIMARY KEY (run_id, bar_index)
		)`,

		`CREATE TABLE IF NOT EXISTS run_failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT,
			kind      TEXT,
			message   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON run_failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the summary and every bar of res in one transaction.
func (r *SQLiteRecorder) RecordRun(res *model.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	s := res.Summary
	_, err = tx.Exec(`INSERT INTO runs
		(id, timestamp, symbol, duration_ms, bars, feature_rows, train_rows, held_out_rows,
		 classifier, classifier_cv, regressor, regressor_cv, held_out_accuracy, held_out_rmse,
		 trades, exposure, cum_raw, cum_strategy, raw_pct, strategy_pct, max_drawdown)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.ID, res.StartedAt.Unix(), res.Symbol, res.Duration.Milliseconds(),
		s.Bars, s.FeatureRows, s.TrainRows, s.HeldOutRows,
		s.Classifier, s.ClassifierCV, s.Regressor, s.RegressorCV,
		s.HeldOutAccuracy, s.HeldOutRMSE,
		s.Trades, s.Exposure, s.CumRawReturn, s.CumStrategyReturn,
		s.RawReturnPct, s.StrategyReturnPct, s.MaxDrawdown,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_records
		(run_id, bar_index, date, open, high, low, close, volume,
		 prev_close, ma_short, ma_long, rsi, volume_change, open_minus_close, high_minus_low,
		 signal, predicted_exit, position, raw_return, strategy_return, cum_raw, cum_strategy)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare records: %w", err)
	}
	defer stmt.Close()

	for i, rec := range res.Records {
		features := make([]any, len(model.FeatureNames))
		if rec.Features != nil {
			for j, v := range rec.Features.Vector() {
				features[j] = v
			}
		}
		var signal, exit, rawRet, stratRet any
		if rec.Signal != model.SignalNone {
			signal = int(rec.Signal)
		}
		if rec.HasExit {
			exit = rec.PredictedExit
		}
		if rec.HasReturn {
			rawRet, stratRet = rec.RawReturn, rec.StrategyReturn
		}
		args := []any{res.ID, i, rec.Bar.Date.Format("2006-01-02"),
			rec.Bar.Open, rec.Bar.High, rec.Bar.Low, rec.Bar.Close, rec.Bar.Volume}
		args = append(args, features...)
		args = append(args, signal, exit, int(rec.Position), rawRet, stratRet,
			rec.CumRawReturn, rec.CumStrategyReturn)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordFailure(symbol, kind string, cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := r.db.Exec(`INSERT INTO run_failures (timestamp, symbol, kind, message) VALUES (?,?,?,?)`,
		time.Now().Unix(), symbol, kind, msg)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]model.RunResult, error) {
	rows, err := r.db.Query(`SELECT id, timestamp, symbol, duration_ms, bars, classifier, regressor,
		held_out_accuracy, trades, exposure, raw_pct, strategy_pct, max_drawdown
		FROM runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunResult
	for rows.Next() {
		var row model.RunResult
		var ts, durMS int64
		s := &row.Summary
		if err := rows.Scan(&row.ID, &ts, &row.Symbol, &durMS, &s.Bars, &s.Classifier, &s.Regressor,
			&s.HeldOutAccuracy, &s.Trades, &s.Exposure, &s.RawReturnPct, &s.StrategyReturnPct, &s.MaxDrawdown); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		row.StartedAt = time.Unix(ts, 0)
		row.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

// PingContext reports whether the database is reachable.
func (r *SQLiteRecorder) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
