package strategy

import (
	"fmt"
	"math"

	"SignalBench/internal/model"
)

// Returns computes per-bar log returns and the strategy's lagged returns.
//
//	raw[i]      = ln(price[i] / price[i-1])
//	strategy[i] = position[i-1] * raw[i]
//
// Index 0 has no return and stays zero in every series.
func Returns(prices []float64, positions []model.Position) (*model.ReturnSeries, error) {
	if len(prices) != len(positions) {
		return nil, fmt.Errorf("%d prices, %d positions", len(prices), len(positions))
	}
	for i, p := range prices {
		if !(p > 0) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("price %d is %v, want positive finite", i, p)
		}
	}
	n := len(prices)
	rs := &model.ReturnSeries{
		Raw:         make([]float64, n),
		Strategy:    make([]float64, n),
		CumRaw:      make([]float64, n),
		CumStrategy: make([]float64, n),
	}
	for i := 1; i < n; i++ {
		r := math.Log(prices[i] / prices[i-1])
		rs.Raw[i] = r
		rs.Strategy[i] = float64(positions[i-1]) * r
		rs.CumRaw[i] = rs.CumRaw[i-1] + r
		rs.CumStrategy[i] = rs.CumStrategy[i-1] + rs.Strategy[i]
	}
	return rs, nil
}
