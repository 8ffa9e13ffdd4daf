package model

import "time"

// PriceBar represents one fully specified daily bar.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// RawBar is a row as delivered by a data source, before normalization.
// A nil price means the source had no usable value for that field.
type RawBar struct {
	Date   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *float64
}

// Closes extracts the close prices of bars in order.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
