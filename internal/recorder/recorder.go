package recorder

import (
	"errors"

	"SignalBench/internal/model"
)

// Recorder persists run results for later analysis.
type Recorder interface {
	RecordRun(res *model.RunResult) error
	RecordFailure(symbol, kind string, cause error) error
	Close() error
}

// History is implemented by recorders that can read back past runs.
// Returned results carry the summary only, without per-bar records.
type History interface {
	RecentRuns(limit int) ([]model.RunResult, error)
}

// Multi fans every call out to all recorders and joins their errors.
type Multi []Recorder

func (m Multi) RecordRun(res *model.RunResult) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordRun(res))
	}
	return errors.Join(errs...)
}

func (m Multi) RecordFailure(symbol, kind string, cause error) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordFailure(symbol, kind, cause))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

// RecentRuns answers from the first member that keeps history.
func (m Multi) RecentRuns(limit int) ([]model.RunResult, error) {
	for _, r := range m {
		if h, ok := r.(History); ok {
			return h.RecentRuns(limit)
		}
	}
	return nil, errors.New("no recorder keeps run history")
}
