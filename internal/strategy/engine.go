package strategy

import "SignalBench/internal/model"

// Step is what is known at the close of one bar.
type Step struct {
	Price   float64
	Signal  model.Signal
	Exit    float64 // predicted next close
	HasExit bool
}

// Machine is the FLAT/LONG position state machine. A decision made from
// bar i's Step is the position held on bar i+1.
type Machine struct {
	state model.Position
}

// NewMachine returns a machine in the FLAT state.
func NewMachine() *Machine {
	return &Machine{state: model.Flat}
}

// State is the position held on the current bar.
func (m *Machine) State() model.Position { return m.state }

// Advance consumes the current bar and returns the position for the next one.
//
//	FLAT + signal up          -> LONG
//	LONG + price >= exit      -> FLAT
//	otherwise                 -> unchanged
//
// A LONG bar without a predicted exit stays LONG.
func (m *Machine) Advance(s Step) model.Position {
	switch m.state {
	case model.Flat:
		if s.Signal == model.SignalUp {
			m.state = model.Long
		}
	case model.Long:
		if s.HasExit && s.Price >= s.Exit {
			m.state = model.Flat
		}
	}
	return m.state
}

// Positions runs one forward scan and returns a position per step.
// positions[0] is always FLAT and the last step's decision is discarded.
func Positions(steps []Step) []model.Position {
	out := make([]model.Position, len(steps))
	if len(steps) == 0 {
		return out
	}
	m := NewMachine()
	out[0] = m.State()
	for i := 0; i < len(steps)-1; i++ {
		out[i+1] = m.Advance(steps[i])
	}
	return out
}
