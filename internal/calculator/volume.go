package calculator

import "math"

// VolumeChange returns the fractional change from prev to cur.
// A zero previous volume yields 0 instead of an infinite change.
func VolumeChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	change := (cur - prev) / prev
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return 0
	}
	return change
}
