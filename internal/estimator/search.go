package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// GridSearch cross-validates every candidate over contiguous folds and refits
// the best one on all rows. Candidates are evaluated concurrently.
type GridSearch struct {
	Folds   int
	Workers int
	Score   Scorer
}

// Search implements Searcher.
func (g GridSearch) Search(ctx context.Context, candidates []Candidate, X [][]float64, y []float64) (*Fitted, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrNoData, len(X), len(y))
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrSearchFailed)
	}
	if g.Score == nil {
		return nil, fmt.Errorf("%w: no scorer", ErrSearchFailed)
	}
	folds, err := KFold(len(X), g.Folds)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(candidates))
	errs := make([]error, len(candidates))

	eg, egCtx := errgroup.WithContext(ctx)
	workers := g.Workers
	if workers <= 0 {
		workers = 1
	}
	eg.SetLimit(workers)
	for i, c := range candidates {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			scores[i], errs[i] = crossValidate(c, X, y, folds, g.Score)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	best := -1
	for i := range candidates {
		if errs[i] != nil {
			continue
		}
		if best < 0 || scores[i] > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, errors.Join(errs...))
	}

	m := candidates[best].New()
	if err := m.Fit(X, y); err != nil {
		return nil, fmt.Errorf("%w: refit %s: %w", ErrSearchFailed, candidates[best].Name, err)
	}
	return &Fitted{Model: m, Candidate: candidates[best].Name, CVScore: scores[best]}, nil
}

func crossValidate(c Candidate, X [][]float64, y []float64, folds []Fold, score Scorer) (float64, error) {
	total := 0.0
	for _, f := range folds {
		tx, ty := f.trainRows(X, y)
		m := c.New()
		if err := m.Fit(tx, ty); err != nil {
			return 0, fmt.Errorf("%s: %w", c.Name, err)
		}
		pred, err := m.Predict(X[f.Start:f.End])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", c.Name, err)
		}
		s := score(y[f.Start:f.End], pred)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return 0, fmt.Errorf("%s: non-finite score", c.Name)
		}
		total += s
	}
	return total / float64(len(folds)), nil
}
