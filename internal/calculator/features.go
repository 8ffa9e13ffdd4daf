package calculator

import (
	"errors"
	"fmt"
	"math"

	"SignalBench/internal/model"
)

// Params configures the indicator windows.
type Params struct {
	MAShort int
	MALong  int
	RSICom  float64
}

// DefaultParams returns the standard 7/14 moving averages and a 14 center-of-mass RSI.
func DefaultParams() Params {
	return Params{MAShort: 7, MALong: 14, RSICom: 14}
}

// Validate checks the windows are usable.
func (p Params) Validate() error {
	if p.MAShort <= 0 || p.MALong <= 0 {
		return errors.New("moving average windows must be positive")
	}
	if p.MAShort > p.MALong {
		return fmt.Errorf("short window %d exceeds long window %d", p.MAShort, p.MALong)
	}
	if p.RSICom <= 0 {
		return errors.New("rsi center of mass must be positive")
	}
	return nil
}

// Features computes one FeatureRow per bar in a single forward pass.
// The first bar has no previous close and never yields a row.
func Features(bars []model.PriceBar, p Params) ([]model.FeatureRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	short, _ := NewRollingMean(p.MAShort)
	long, _ := NewRollingMean(p.MALong)
	rsi, _ := NewRSI(p.RSICom)

	rows := make([]model.FeatureRow, 0, len(bars))
	for i, b := range bars {
		maShort := short.Update(b.Close)
		maLong := long.Update(b.Close)
		rsiVal := rsi.Update(b.Close)
		if i == 0 {
			continue
		}
		prev := bars[i-1]
		row := model.FeatureRow{
			Index:          i,
			PrevClose:      prev.Close,
			MAShort:        maShort,
			MALong:         maLong,
			RSI:            rsiVal,
			VolumeChange:   VolumeChange(prev.Volume, b.Volume),
			OpenMinusClose: b.Open - b.Close,
			HighMinusLow:   b.High - b.Low,
		}
		if !finite(row.Vector()) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func finite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
