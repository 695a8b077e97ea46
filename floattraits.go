package desim

import "math"

// defaultEpsilon is the absolute/relative tolerance used by the float-traits
// helpers below when no caller-specific tolerance is warranted. Simulated
// time and work accounting in this package are modest-magnitude doubles
// (seconds-to-thousands range), so a small fixed epsilon combined with a
// relative check is sufficient — this is not a general-purpose ULP library.
const defaultEpsilon = 1e-9

// ApproximatelyEqual reports whether a and b are equal up to floating-point
// error, using an epsilon test rather than ==. Used uniformly at reschedule
// and round-robin work-accounting sites.
func ApproximatelyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	if diff <= defaultEpsilon {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= defaultEpsilon*scale
}

// DefinitelyLess reports whether a is less than b by more than the
// floating-point tolerance (i.e. a < b and !ApproximatelyEqual(a, b)).
func DefinitelyLess(a, b float64) bool {
	return a < b && !ApproximatelyEqual(a, b)
}

// DefinitelyGreaterEqual reports whether a is "definitely greater than or
// approximately equal to" b, the guard used at every fire_time >= now check.
func DefinitelyGreaterEqual(a, b float64) bool {
	return a >= b || ApproximatelyEqual(a, b)
}
