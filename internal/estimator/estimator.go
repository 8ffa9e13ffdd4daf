// Package estimator defines the fit/predict capability the pipeline relies on,
// a configuration search over candidate models, and two built-in models.
//
// The pipeline only sees Model, Candidate and Searcher; any toolkit that can
// satisfy those interfaces can replace the built-ins.
package estimator

import (
	"context"
	"errors"
)

var (
	// ErrNoData is returned when there are too few rows to fit or cross-validate.
	ErrNoData = errors.New("estimator: not enough data")
	// ErrSearchFailed is returned when no candidate could be fitted.
	ErrSearchFailed = errors.New("estimator: configuration search failed")
)

// Model is a statistical estimator over dense feature rows.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// Candidate is one hyperparameter configuration.
type Candidate struct {
	Name string
	New  func() Model
}

// Fitted is the outcome of a search: the winning model refitted on all training rows.
type Fitted struct {
	Model     Model
	Candidate string
	CVScore   float64
}

// Searcher selects and fits the best candidate for the training rows.
type Searcher interface {
	Search(ctx context.Context, candidates []Candidate, X [][]float64, y []float64) (*Fitted, error)
}
