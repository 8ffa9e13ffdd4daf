package model

// Signal is the predicted direction of the next close.
type Signal int

const (
	SignalNone Signal = 0 // bar has no prediction
	SignalDown Signal = -1
	SignalUp   Signal = 1
)

// SignalFromLabel maps an estimator label onto a Signal. Anything that is
// not a positive label counts as "will not rise".
func SignalFromLabel(v float64) Signal {
	if v > 0 {
		return SignalUp
	}
	return SignalDown
}

// Position is the exposure held on a bar.
type Position int

const (
	Flat Position = 0
	Long Position = 1
)

func (p Position) String() string {
	if p == Long {
		return "LONG"
	}
	return "FLAT"
}
