package estimator

import "fmt"

// TrainSize returns the length of the chronological training prefix for n rows.
// When n >= 2 at least one row is always held out.
func TrainSize(n int, ratio float64) int {
	if n <= 1 {
		return n
	}
	k := int(float64(n) * ratio)
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	return k
}

// Fold is a contiguous validation window [Start, End) over the training rows.
// Every row outside the window is used for fitting.
type Fold struct {
	Start int
	End   int
}

// KFold splits n rows into k contiguous folds without shuffling. The first
// n%k folds are one row longer.
func KFold(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("folds must be at least 2, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("%w: %d rows for %d folds", ErrNoData, n, k)
	}
	folds := make([]Fold, k)
	size, extra := n/k, n%k
	start := 0
	for i := range folds {
		end := start + size
		if i < extra {
			end++
		}
		folds[i] = Fold{Start: start, End: end}
		start = end
	}
	return folds, nil
}

// trainRows returns X and y without the rows in f.
func (f Fold) trainRows(X [][]float64, y []float64) ([][]float64, []float64) {
	tx := make([][]float64, 0, len(X)-(f.End-f.Start))
	ty := make([]float64, 0, cap(tx))
	tx = append(tx, X[:f.Start]...)
	tx = append(tx, X[f.End:]...)
	ty = append(ty, y[:f.Start]...)
	ty = append(ty, y[f.End:]...)
	return tx, ty
}
