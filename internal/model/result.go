package model

import "time"

// ReturnSeries holds per-bar log returns and their running sums.
// Index 0 has no return and is left at zero; every slice has one entry per bar.
type ReturnSeries struct {
	Raw         []float64
	Strategy    []float64
	CumRaw      []float64
	CumStrategy []float64
}

// Record is the augmented per-bar output of a run.
type Record struct {
	Bar               PriceBar
	Features          *FeatureRow // nil when the bar was truncated from the feature sequence
	Signal            Signal
	PredictedExit     float64
	HasExit           bool
	Position          Position
	HasReturn         bool
	RawReturn         float64
	StrategyReturn    float64
	CumRawReturn      float64
	CumStrategyReturn float64
}

// Summary aggregates a run for reporting and persistence.
type Summary struct {
	Bars        int
	FeatureRows int
	TrainRows   int
	HeldOutRows int

	Classifier   string
	ClassifierCV float64
	Regressor    string
	RegressorCV  float64

	HeldOutAccuracy float64
	HeldOutRMSE     float64

	Trades            int
	Exposure          float64 // share of bars held long, 0.0 ~ 1.0
	CumRawReturn      float64
	CumStrategyReturn float64
	RawReturnPct      float64
	StrategyReturnPct float64
	MaxDrawdown       float64 // 0.0 ~ 1.0 on the strategy equity curve
}

// RunResult is the complete output of one pipeline run.
type RunResult struct {
	ID        string
	Symbol    string
	StartedAt time.Time
	Duration  time.Duration
	Records   []Record
	Summary   Summary
}
