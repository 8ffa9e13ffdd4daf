package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature columns to zero mean and unit variance.
// Constant columns are centered but not scaled.
type Scaler struct {
	mean []float64
	std  []float64
}

// FitScaler learns column statistics from X.
func FitScaler(X [][]float64) (*Scaler, error) {
	if len(X) == 0 {
		return nil, ErrNoData
	}
	p := len(X[0])
	s := &Scaler{mean: make([]float64, p), std: make([]float64, p)}
	col := make([]float64, len(X))
	for j := 0; j < p; j++ {
		for i, row := range X {
			if len(row) != p {
				return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
			}
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if math.IsNaN(std) || std == 0 {
			std = 1
		}
		s.mean[j], s.std[j] = mean, std
	}
	return s, nil
}

// Transform returns a scaled copy of row.
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.mean) {
		return nil, fmt.Errorf("row has %d features, want %d", len(row), len(s.mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out, nil
}
