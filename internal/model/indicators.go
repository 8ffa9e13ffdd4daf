package model

// FeatureNames lists the columns of FeatureRow.Vector in order.
var FeatureNames = []string{
	"prev_close",
	"ma_short",
	"ma_long",
	"rsi",
	"volume_change",
	"open_minus_close",
	"high_minus_low",
}

// FeatureRow holds the technical features computed for one bar.
type FeatureRow struct {
	Index          int     `json:"index"` // position of the bar in the series
	PrevClose      float64 `json:"prev_close"`
	MAShort        float64 `json:"ma_short"`
	MALong         float64 `json:"ma_long"`
	RSI            float64 `json:"rsi"` // 0 ~ 100
	VolumeChange   float64 `json:"volume_change"`
	OpenMinusClose float64 `json:"open_minus_close"`
	HighMinusLow   float64 `json:"high_minus_low"`
}

// Vector returns the features in FeatureNames order.
func (f FeatureRow) Vector() []float64 {
	return []float64{
		f.PrevClose,
		f.MAShort,
		f.MALong,
		f.RSI,
		f.VolumeChange,
		f.OpenMinusClose,
		f.HighMinusLow,
	}
}
