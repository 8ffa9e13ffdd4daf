package calculator

import "errors"

// RSI tracks a relative strength index built from exponentially smoothed
// upward and downward close-to-close moves. The smoothing weight is
// 1/(1+com); both averages start at zero on the first close.
type RSI struct {
	alpha   float64
	prev    float64
	count   int
	avgUp   float64
	avgDown float64
}

// NewRSI creates an RSI with the given center of mass (typically 14).
func NewRSI(com float64) (*RSI, error) {
	if com <= 0 {
		return nil, errors.New("center of mass must be positive")
	}
	return &RSI{alpha: 1 / (1 + com)}, nil
}

// Update feeds the next close and returns the new RSI.
func (r *RSI) Update(close float64) float64 {
	var up, down float64
	if r.count > 0 {
		delta := close - r.prev
		if delta > 0 {
			up = delta
		} else {
			down = -delta
		}
	}
	r.prev = close
	r.count++

	r.avgUp = r.alpha*up + (1-r.alpha)*r.avgUp
	r.avgDown = r.alpha*down + (1-r.alpha)*r.avgDown
	return r.Value()
}

// Value returns the current RSI in [0, 100]. With no downward movement the
// ratio is unbounded and the index sits at 100.
func (r *RSI) Value() float64 {
	if r.avgDown == 0 {
		return 100.0
	}
	rs := r.avgUp / r.avgDown
	return 100.0 - 100.0/(1.0+rs)
}

// RSISeries computes the RSI at every close.
func RSISeries(closes []float64, com float64) ([]float64, error) {
	r, err := NewRSI(com)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = r.Update(c)
	}
	return out, nil
}
