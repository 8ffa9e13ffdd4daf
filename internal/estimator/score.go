package estimator

import "math"

// Scorer rates predictions; higher is better.
type Scorer func(yTrue, yPred []float64) float64

// Accuracy is the share of exact label matches.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(yTrue)))
}

// NegRMSE scores regressions so that a smaller error ranks higher.
func NegRMSE(yTrue, yPred []float64) float64 {
	return -RMSE(yTrue, yPred)
}
