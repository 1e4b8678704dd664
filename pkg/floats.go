package pkg

import "math"

// Epsilon is the absolute tolerance used for every float comparison on
// goal/progression values. Historical logs carry values that went through
// several serialization round trips, so exact equality is never reliable.
const Epsilon = 1e-9

// ApproxEqual reports whether a and b are equal within Epsilon.
func ApproxEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// NearestOf returns the candidate closest to value.
// Ties always resolve to the lower candidate, so that snapping a logged
// value onto a progression ladder is deterministic.
// Candidates must be non-empty; the caller guards against empty ladders.
func NearestOf(value float64, candidates []float64) float64 {
	bestVal := candidates[0]
	bestDiff := math.Abs(candidates[0] - value)
	for _, c := range candidates[1:] {
		d := math.Abs(c - value)
		if d < bestDiff || (d == bestDiff && c < bestVal) {
			bestDiff = d
			bestVal = c
		}
	}
	return bestVal
}

// RoundUpToStep rounds value up to the next multiple of step.
// Values that already sit on a multiple (within Epsilon) are left there.
// Goals derived from history must never round below what was already
// achieved, hence always up, never to nearest.
func RoundUpToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	steps := value / step
	rounded := math.Ceil(steps - Epsilon)
	return rounded * step
}
