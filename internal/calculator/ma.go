package calculator

import "errors"

// RollingMean is a trailing simple moving average over the last period values.
// Until period values have been seen it averages everything received so far.
type RollingMean struct {
	period int
	buf    []float64 // circular buffer of the current window
	idx    int
	count  int
	sum    float64
}

// NewRollingMean creates a RollingMean with the given window length.
func NewRollingMean(period int) (*RollingMean, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	return &RollingMean{period: period, buf: make([]float64, period)}, nil
}

// Update adds v to the window and returns the new mean.
func (m *RollingMean) Update(v float64) float64 {
	if m.count == m.period {
		m.sum -= m.buf[m.idx]
	} else {
		m.count++
	}
	m.buf[m.idx] = v
	m.sum += v
	m.idx = (m.idx + 1) % m.period
	return m.Value()
}

// Value returns the mean of the current window, or 0 before any update.
func (m *RollingMean) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// Full reports whether the window holds period values.
func (m *RollingMean) Full() bool { return m.count == m.period }

// SMA computes the trailing mean at every index of values.
func SMA(values []float64, period int) ([]float64, error) {
	m, err := NewRollingMean(period)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = m.Update(v)
	}
	return out, nil
}
