package estimator

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Weighting selects how neighbour votes are weighted.
type Weighting string

const (
	Uniform  Weighting = "uniform"
	Distance Weighting = "distance"
)

// KNNClassifier votes between the labels +1 and -1 of the k nearest training
// rows in standardized feature space. Ties go to -1.
type KNNClassifier struct {
	K         int
	Weighting Weighting

	scaler *Scaler
	x      [][]float64
	y      []float64
}

// NewKNNClassifier creates an unfitted classifier.
func NewKNNClassifier(k int, w Weighting) *KNNClassifier {
	return &KNNClassifier{K: k, Weighting: w}
}

// Fit stores the scaled training rows.
func (c *KNNClassifier) Fit(X [][]float64, y []float64) error {
	if c.K <= 0 {
		return errors.New("k must be positive")
	}
	if c.Weighting != Uniform && c.Weighting != Distance {
		return fmt.Errorf("unknown weighting %q", c.Weighting)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%d rows, %d labels", len(X), len(y))
	}
	if len(X) < c.K {
		return fmt.Errorf("%w: k=%d exceeds %d training rows", ErrNoData, c.K, len(X))
	}
	for i, v := range y {
		if v != 1 && v != -1 {
			return fmt.Errorf("label %d is %v, want +1 or -1", i, v)
		}
	}
	scaler, err := FitScaler(X)
	if err != nil {
		return err
	}
	c.scaler = scaler
	c.x = make([][]float64, len(X))
	for i, row := range X {
		if c.x[i], err = scaler.Transform(row); err != nil {
			return err
		}
	}
	c.y = append([]float64(nil), y...)
	return nil
}

type neighbour struct {
	dist  float64
	label float64
}

// Predict returns +1 or -1 for every row.
func (c *KNNClassifier) Predict(X [][]float64) ([]float64, error) {
	if c.scaler == nil {
		return nil, errors.New("classifier is not fitted")
	}
	out := make([]float64, len(X))
	nb := make([]neighbour, len(c.x))
	for i, row := range X {
		q, err := c.scaler.Transform(row)
		if err != nil {
			return nil, err
		}
		for j, tr := range c.x {
			nb[j] = neighbour{dist: floats.Distance(q, tr, 2), label: c.y[j]}
		}
		sort.SliceStable(nb, func(a, b int) bool { return nb[a].dist < nb[b].dist })
		out[i] = c.vote(nb[:c.K])
	}
	return out, nil
}

func (c *KNNClassifier) vote(nearest []neighbour) float64 {
	var tally float64
	if c.Weighting == Distance {
		// Exact matches dominate any weighted vote.
		exact := false
		for _, n := range nearest {
			if n.dist == 0 {
				exact = true
				tally += n.label
			}
		}
		if !exact {
			for _, n := range nearest {
				tally += n.label / n.dist
			}
		}
	} else {
		for _, n := range nearest {
			tally += n.label
		}
	}
	if tally > 0 {
		return 1
	}
	return -1
}

// KNNCandidates builds one candidate per (k, weighting) pair.
func KNNCandidates(neighbours []int, weightings []Weighting) []Candidate {
	out := make([]Candidate, 0, len(neighbours)*len(weightings))
	for _, k := range neighbours {
		for _, w := range weightings {
			out = append(out, Candidate{
				Name: fmt.Sprintf("knn(k=%d,weights=%s)", k, w),
				New:  func() Model { return NewKNNClassifier(k, w) },
			})
		}
	}
	return out
}
