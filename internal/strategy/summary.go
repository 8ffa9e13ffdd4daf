package strategy

import (
	"math"

	"SignalBench/internal/model"
)

// Summarize fills the trading fields of s from a finished scan.
func Summarize(s *model.Summary, positions []model.Position, rs *model.ReturnSeries) {
	n := len(positions)
	held := 0
	s.Trades = 0
	for i, p := range positions {
		if p == model.Long {
			held++
			if i == 0 || positions[i-1] == model.Flat {
				s.Trades++
			}
		}
	}
	if n > 0 {
		s.Exposure = float64(held) / float64(n)
		s.CumRawReturn = rs.CumRaw[n-1]
		s.CumStrategyReturn = rs.CumStrategy[n-1]
	}
	s.RawReturnPct = math.Exp(s.CumRawReturn) - 1
	s.StrategyReturnPct = math.Exp(s.CumStrategyReturn) - 1
	s.MaxDrawdown = MaxDrawdown(rs.CumStrategy)
}

// MaxDrawdown is the largest peak-to-trough decline of the equity curve
// exp(cum[i]), as a fraction of the peak.
func MaxDrawdown(cum []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, c := range cum {
		if c > peak {
			peak = c
		}
		if dd := 1 - math.Exp(c-peak); dd > worst {
			worst = dd
		}
	}
	return worst
}
