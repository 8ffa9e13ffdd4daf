// Package pipeline runs one research pass over a bar series: features,
// direction and exit estimators, the position scan and return accounting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"SignalBench/internal/calculator"
	"SignalBench/internal/estimator"
	"SignalBench/internal/model"
	"SignalBench/internal/strategy"
)

// Stage names reported to Options.Observe.
const (
	StageFeatures   = "features"
	StageClassifier = "classifier"
	StageRegressor  = "regressor"
	StagePositions  = "positions"
)

// Options configures a Runner.
type Options struct {
	Indicators calculator.Params
	TrainRatio float64 // chronological share of labelled rows used for fitting

	ClassifierSearch estimator.Searcher
	Classifiers      []estimator.Candidate
	RegressorSearch  estimator.Searcher
	Regressors       []estimator.Candidate

	// Observe, if set, receives the wall time of each stage.
	Observe func(stage string, d time.Duration)
}

// DefaultOptions searches k-nearest-neighbour classifiers and ridge
// regressors over five contiguous folds.
func DefaultOptions() Options {
	return Options{
		Indicators:       calculator.DefaultParams(),
		TrainRatio:       0.7,
		ClassifierSearch: estimator.GridSearch{Folds: 5, Workers: 4, Score: estimator.Accuracy},
		Classifiers: estimator.KNNCandidates(
			[]int{3, 5, 7, 9, 15},
			[]estimator.Weighting{estimator.Uniform, estimator.Distance},
		),
		RegressorSearch: estimator.GridSearch{Folds: 5, Workers: 4, Score: estimator.NegRMSE},
		Regressors:      estimator.RidgeCandidates([]float64{0.01, 0.1, 1, 10, 100}),
	}
}

// Runner executes pipeline runs. It holds no per-run state and may be shared.
type Runner struct {
	opts Options
}

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.Indicators.Validate(); err != nil {
		return nil, fmt.Errorf("indicators: %w", err)
	}
	if opts.TrainRatio <= 0 || opts.TrainRatio > 1 {
		return nil, fmt.Errorf("train ratio must be in (0, 1], got %v", opts.TrainRatio)
	}
	if opts.ClassifierSearch == nil || opts.RegressorSearch == nil {
		return nil, errors.New("classifier and regressor searchers are required")
	}
	if len(opts.Classifiers) == 0 || len(opts.Regressors) == 0 {
		return nil, errors.New("classifier and regressor candidates are required")
	}
	return &Runner{opts: opts}, nil
}

// Run processes bars, which must be sorted ascending by date.
//
// Signals are predicted for every feature row and exits for every row with a
// next close, including the rows the estimators were fitted on.
func (r *Runner) Run(ctx context.Context, symbol string, bars []model.PriceBar) (*model.RunResult, error) {
	started := time.Now()
	if len(bars) == 0 {
		return nil, ErrMissingInput
	}

	t := time.Now()
	rows, err := calculator.Features(bars, r.opts.Indicators)
	if err != nil {
		return nil, err
	}
	r.observe(StageFeatures, t)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %d bars yield no feature rows", ErrInsufficientFeatureData, len(bars))
	}

	// Rows at the last bar have no next close and carry no label or target.
	last := len(bars) - 1
	var labelled []model.FeatureRow
	for _, row := range rows {
		if row.Index < last {
			labelled = append(labelled, row)
		}
	}
	if len(labelled) == 0 {
		return nil, fmt.Errorf("%w: no feature row has a next close", ErrInsufficientFeatureData)
	}

	X := make([][]float64, len(labelled))
	labels := make([]float64, len(labelled))
	targets := make([]float64, len(labelled))
	for i, row := range labelled {
		X[i] = row.Vector()
		next, cur := bars[row.Index+1].Close, bars[row.Index].Close
		labels[i] = -1
		if next > cur {
			labels[i] = 1
		}
		targets[i] = next
	}
	trainN := estimator.TrainSize(len(labelled), r.opts.TrainRatio)

	t = time.Now()
	clf, err := r.opts.ClassifierSearch.Search(ctx, r.opts.Classifiers, X[:trainN], labels[:trainN])
	if err != nil {
		return nil, searchError("classifier", err)
	}
	r.observe(StageClassifier, t)

	t = time.Now()
	reg, err := r.opts.RegressorSearch.Search(ctx, r.opts.Regressors, X[:trainN], targets[:trainN])
	if err != nil {
		return nil, searchError("regressor", err)
	}
	r.observe(StageRegressor, t)

	all := make([][]float64, len(rows))
	for i, row := range rows {
		all[i] = row.Vector()
	}
	rawSignals, err := clf.Model.Predict(all)
	if err != nil {
		return nil, fmt.Errorf("%w: classifier predict: %w", ErrEstimatorSearch, err)
	}
	exits, err := reg.Model.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("%w: regressor predict: %w", ErrEstimatorSearch, err)
	}

	t = time.Now()
	records := make([]model.Record, len(bars))
	steps := make([]strategy.Step, len(bars))
	for i, b := range bars {
		records[i].Bar = b
		steps[i].Price = b.Close
	}
	for i, row := range rows {
		sig := model.SignalFromLabel(rawSignals[i])
		records[row.Index].Features = &row
		records[row.Index].Signal = sig
		steps[row.Index].Signal = sig
	}
	for i, row := range labelled {
		records[row.Index].PredictedExit = exits[i]
		records[row.Index].HasExit = true
		steps[row.Index].Exit = exits[i]
		steps[row.Index].HasExit = true
	}

	positions := strategy.Positions(steps)
	returns, err := strategy.Returns(model.Closes(bars), positions)
	if err != nil {
		return nil, err
	}
	for i := range records {
		rec := &records[i]
		rec.Position = positions[i]
		rec.HasReturn = i > 0
		rec.RawReturn = returns.Raw[i]
		rec.StrategyReturn = returns.Strategy[i]
		rec.CumRawReturn = returns.CumRaw[i]
		rec.CumStrategyReturn = returns.CumStrategy[i]
	}
	r.observe(StagePositions, t)

	summary := model.Summary{
		Bars:         len(bars),
		FeatureRows:  len(rows),
		TrainRows:    trainN,
		HeldOutRows:  len(labelled) - trainN,
		Classifier:   clf.Candidate,
		ClassifierCV: clf.CVScore,
		Regressor:    reg.Candidate,
		RegressorCV:  reg.CVScore,
	}
	// labelled is a prefix of rows, so signal i and label i refer to the same bar.
	if trainN < len(labelled) {
		summary.HeldOutAccuracy = estimator.Accuracy(labels[trainN:], classes(rawSignals[trainN:len(labelled)]))
		summary.HeldOutRMSE = estimator.RMSE(targets[trainN:], exits[trainN:])
	}
	strategy.Summarize(&summary, positions, returns)

	res := &model.RunResult{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		StartedAt: started,
		Duration:  time.Since(started),
		Records:   records,
		Summary:   summary,
	}
	log.Printf("[INFO] run %s %s: %d bars, clf=%s reg=%s, strategy %.2f%% vs hold %.2f%%",
		res.ID, symbol, len(bars), clf.Candidate, reg.Candidate,
		summary.StrategyReturnPct*100, summary.RawReturnPct*100)
	return res, nil
}

// classes maps raw classifier outputs onto ±1.
func classes(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(model.SignalFromLabel(v))
	}
	return out
}

func (r *Runner) observe(stage string, since time.Time) {
	if r.opts.Observe != nil {
		r.opts.Observe(stage, time.Since(since))
	}
}

func searchError(which string, err error) error {
	if errors.Is(err, estimator.ErrNoData) {
		return fmt.Errorf("%w: %s: %w", ErrInsufficientFeatureData, which, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrEstimatorSearch, which, err)
}
