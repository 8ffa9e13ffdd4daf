package pipeline

import "errors"

var (
	// ErrMissingInput means the bar series was empty.
	ErrMissingInput = errors.New("missing input: no price bars")
	// ErrInsufficientFeatureData means too few feature rows survived to train on.
	ErrInsufficientFeatureData = errors.New("insufficient feature data")
	// ErrEstimatorSearch means a configuration search produced no model.
	ErrEstimatorSearch = errors.New("estimator search failed")
)

// Kind names the failure class of err for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrInsufficientFeatureData):
		return "insufficient_feature_data"
	case errors.Is(err, ErrEstimatorSearch):
		return "estimator_search"
	default:
		return "other"
	}
}
