package estimator

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestTrainSize(t *testing.T) {
	tests := []struct {
		n     int
		ratio float64
		want  int
	}{
		{0, 0.7, 0},
		{1, 0.7, 1},
		{2, 0.7, 1},
		{10, 0.7, 7},
		{10, 1.0, 9},
		{10, 0.01, 1},
	}
	for _, tt := range tests {
		if got := TrainSize(tt.n, tt.ratio); got != tt.want {
			t.Errorf("TrainSize(%d, %.2f) = %d, want %d", tt.n, tt.ratio, got, tt.want)
		}
	}
}

func TestKFold_ContiguousAndCovering(t *testing.T) {
	folds, err := KFold(11, 3)
	if err != nil {
		t.Fatalf("KFold: %v", err)
	}
	want := []Fold{{0, 4}, {4, 8}, {8, 11}}
	if len(folds) != len(want) {
		t.Fatalf("got %d folds, want %d", len(folds), len(want))
	}
	for i := range want {
		if folds[i] != want[i] {
			t.Errorf("fold %d = %+v, want %+v", i, folds[i], want[i])
		}
	}
}

func TestKFold_TooFewRows(t *testing.T) {
	if _, err := KFold(3, 5); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := KFold(10, 1); err == nil {
		t.Error("expected error for a single fold")
	}
}

func TestFoldTrainRows(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{0, 1, 2, 3, 4}
	tx, ty := Fold{Start: 1, End: 3}.trainRows(X, y)
	if len(tx) != 3 || len(ty) != 3 {
		t.Fatalf("got %d rows, want 3", len(tx))
	}
	for i, v := range []float64{0, 3, 4} {
		if ty[i] != v || tx[i][0] != v {
			t.Errorf("row %d = %v, want %v", i, ty[i], v)
		}
	}
}

func TestScorers(t *testing.T) {
	if got := Accuracy([]float64{1, -1, 1, 1}, []float64{1, 1, 1, -1}); got != 0.5 {
		t.Errorf("Accuracy = %.3f, want 0.5", got)
	}
	if got := RMSE([]float64{1, 2, 3}, []float64{1, 2, 6}); math.Abs(got-math.Sqrt(3)) > 1e-12 {
		t.Errorf("RMSE = %.6f, want %.6f", got, math.Sqrt(3))
	}
	if got := NegRMSE([]float64{0}, []float64{2}); got != -2 {
		t.Errorf("NegRMSE = %.3f, want -2", got)
	}
	if !math.IsNaN(Accuracy(nil, nil)) {
		t.Error("Accuracy of empty input should be NaN")
	}
}

// constModel always predicts the same value.
type constModel struct {
	value  float64
	fitErr error
}

func (m *constModel) Fit(X [][]float64, y []float64) error { return m.fitErr }

func (m *constModel) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = m.value
	}
	return out, nil
}

func constCandidate(name string, v float64, err error) Candidate {
	return Candidate{Name: name, New: func() Model { return &constModel{value: v, fitErr: err} }}
}

func TestGridSearch_PicksBest(t *testing.T) {
	X := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = 1
		if i == 3 {
			y[i] = -1
		}
	}
	candidates := []Candidate{
		constCandidate("down", -1, nil),
		constCandidate("broken", 1, errors.New("boom")),
		constCandidate("up", 1, nil),
	}
	g := GridSearch{Folds: 5, Workers: 2, Score: Accuracy}
	fitted, err := g.Search(context.Background(), candidates, X, y)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if fitted.Candidate != "up" {
		t.Errorf("winner = %s, want up", fitted.Candidate)
	}
	if math.Abs(fitted.CVScore-0.9) > 1e-12 {
		t.Errorf("cv score = %.4f, want 0.9", fitted.CVScore)
	}
}

func TestGridSearch_AllFail(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{1, 1, -1, -1}
	g := GridSearch{Folds: 2, Workers: 1, Score: Accuracy}
	_, err := g.Search(context.Background(), []Candidate{
		constCandidate("a", 1, errors.New("fit a")),
		constCandidate("b", 1, errors.New("fit b")),
	}, X, y)
	if !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "fit b") {
		t.Errorf("error should carry candidate failures: %v", err)
	}
}

func TestGridSearch_TooFewRows(t *testing.T) {
	g := GridSearch{Folds: 5, Workers: 1, Score: Accuracy}
	_, err := g.Search(context.Background(), []Candidate{constCandidate("a", 1, nil)},
		[][]float64{{1}, {2}}, []float64{1, -1})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestGridSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{1, 1, -1, -1}
	g := GridSearch{Folds: 2, Workers: 1, Score: Accuracy}
	if _, err := g.Search(ctx, []Candidate{constCandidate("a", 1, nil)}, X, y); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScaler(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 5}, {3, 5}})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	row, err := s.Transform([]float64{3, 7})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	// sample std of {1,3} is sqrt(2); constant column keeps unit scale
	if math.Abs(row[0]-1/math.Sqrt2) > 1e-12 {
		t.Errorf("scaled[0] = %.6f, want %.6f", row[0], 1/math.Sqrt2)
	}
	if row[1] != 2 {
		t.Errorf("scaled[1] = %.6f, want 2", row[1])
	}
	if _, err := s.Transform([]float64{1}); err == nil {
		t.Error("expected width mismatch error")
	}
}

func TestKNNClassifier_Clusters(t *testing.T) {
	X := [][]float64{{0, 0}, {0.1, 0.2}, {0.2, 0.1}, {10, 10}, {10.1, 9.9}, {9.8, 10.2}}
	y := []float64{-1, -1, -1, 1, 1, 1}
	for _, w := range []Weighting{Uniform, Distance} {
		c := NewKNNClassifier(3, w)
		if err := c.Fit(X, y); err != nil {
			t.Fatalf("%s: Fit: %v", w, err)
		}
		pred, err := c.Predict([][]float64{{0.05, 0.05}, {9.9, 10}})
		if err != nil {
			t.Fatalf("%s: Predict: %v", w, err)
		}
		if pred[0] != -1 || pred[1] != 1 {
			t.Errorf("%s: predictions = %v, want [-1 1]", w, pred)
		}
	}
}

func TestKNNClassifier_ExactMatchDominates(t *testing.T) {
	X := [][]float64{{0}, {1}, {1.1}}
	y := []float64{1, -1, -1}
	c := NewKNNClassifier(3, Distance)
	if err := c.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	pred, err := c.Predict([][]float64{{0}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred[0] != 1 {
		t.Errorf("prediction = %v, want 1", pred[0])
	}
}

func TestKNNClassifier_Validation(t *testing.T) {
	X := [][]float64{{0}, {1}}
	if err := NewKNNClassifier(3, Uniform).Fit(X, []float64{1, -1}); !errors.Is(err, ErrNoData) {
		t.Errorf("k > rows: expected ErrNoData, got %v", err)
	}
	if err := NewKNNClassifier(1, Uniform).Fit(X, []float64{1, 0}); err == nil {
		t.Error("expected error for label 0")
	}
	if err := NewKNNClassifier(1, "cosine").Fit(X, []float64{1, -1}); err == nil {
		t.Error("expected error for unknown weighting")
	}
	if _, err := NewKNNClassifier(1, Uniform).Predict(X); err == nil {
		t.Error("expected error predicting with unfitted model")
	}
}

func TestRidge_LinearFit(t *testing.T) {
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range X {
		a, b := float64(i), float64((i*7)%5)
		X[i] = []float64{a, b}
		y[i] = 3 + 2*a - 0.5*b
	}
	r := NewRidge(0)
	if err := r.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	pred, err := r.Predict([][]float64{{25, 1}, {-3, 4}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.Abs(pred[0]-52.5) > 1e-8 || math.Abs(pred[1]-(-5)) > 1e-8 {
		t.Errorf("predictions = %v, want [52.5 -5]", pred)
	}
}

func TestRidge_ShrinksTowardMean(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{2, 4, 6, 8}
	r := NewRidge(1e6)
	if err := r.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	pred, _ := r.Predict([][]float64{{10}})
	if math.Abs(pred[0]-5) > 0.01 {
		t.Errorf("heavily regularized prediction = %.4f, want close to mean 5", pred[0])
	}
}

func TestCandidateNames(t *testing.T) {
	knn := KNNCandidates([]int{3, 5}, []Weighting{Uniform, Distance})
	if len(knn) != 4 || knn[3].Name != "knn(k=5,weights=distance)" {
		t.Errorf("unexpected knn candidates: %d, last=%q", len(knn), knn[len(knn)-1].Name)
	}
	ridge := RidgeCandidates([]float64{0.1, 10})
	if len(ridge) != 2 || ridge[0].Name != "ridge(alpha=0.1)" {
		t.Errorf("unexpected ridge candidates: %+v", ridge)
	}
	if m, ok := knn[3].New().(*KNNClassifier); !ok || m.K != 5 || m.Weighting != Distance {
		t.Errorf("candidate built wrong model: %+v", knn[3].New())
	}
}
