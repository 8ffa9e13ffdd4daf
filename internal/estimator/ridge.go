package estimator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Ridge is L2-regularized linear regression with an intercept, fitted on
// standardized features.
type Ridge struct {
	Alpha float64

	scaler    *Scaler
	coef      []float64
	intercept float64
}

// NewRidge creates an unfitted ridge regressor.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha}
}

// Fit solves (XᵀX + αI)w = Xᵀ(y - ȳ) on the scaled rows.
func (r *Ridge) Fit(X [][]float64, y []float64) error {
	if r.Alpha < 0 {
		return errors.New("alpha must not be negative")
	}
	if len(X) != len(y) {
		return fmt.Errorf("%d rows, %d targets", len(X), len(y))
	}
	scaler, err := FitScaler(X)
	if err != nil {
		return err
	}
	n, p := len(X), len(X[0])
	if p == 0 {
		return errors.New("rows have no features")
	}

	xs := mat.NewDense(n, p, nil)
	for i, row := range X {
		scaled, err := scaler.Transform(row)
		if err != nil {
			return err
		}
		xs.SetRow(i, scaled)
	}
	yMean := floats.Sum(y) / float64(n)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var a mat.Dense
	a.Mul(xs.T(), xs)
	for j := 0; j < p; j++ {
		a.Set(j, j, a.At(j, j)+r.Alpha)
	}
	var b mat.VecDense
	b.MulVec(xs.T(), yc)

	var w mat.VecDense
	if err := w.SolveVec(&a, &b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("ridge solve: %w", err)
		}
	}

	r.scaler = scaler
	r.intercept = yMean
	r.coef = make([]float64, p)
	for j := range r.coef {
		r.coef[j] = w.AtVec(j)
	}
	return nil
}

// Predict returns the fitted value for every row.
func (r *Ridge) Predict(X [][]float64) ([]float64, error) {
	if r.scaler == nil {
		return nil, errors.New("regressor is not fitted")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		scaled, err := r.scaler.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = r.intercept + floats.Dot(r.coef, scaled)
	}
	return out, nil
}

// RidgeCandidates builds one candidate per alpha.
func RidgeCandidates(alphas []float64) []Candidate {
	out := make([]Candidate, 0, len(alphas))
	for _, a := range alphas {
		out = append(out, Candidate{
			Name: fmt.Sprintf("ridge(alpha=%g)", a),
			New:  func() Model { return NewRidge(a) },
		})
	}
	return out
}
