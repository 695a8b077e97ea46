package numeric

import "math"

// Distribution is the narrow capability interface customer classes and
// service strategies consume for interarrival times and service demands:
// sample(rng) -> real, quantile(p) -> real.
type Distribution interface {
	// Sample draws a single observation using rng.
	Sample(rng RNG) float64
	// Quantile returns the value x such that P(X <= x) = p, for p in (0, 1).
	Quantile(p float64) float64
}

// Exponential is a reference [Distribution] implementation of the
// exponential distribution with the given mean.
type Exponential struct {
	Mean float64
}

// NewExponential builds an [Exponential] distribution. Panics if mean <= 0:
// distributions are constructed once at setup time, not on the simulation
// hot path, so a panic (rather than a plumbed error return) keeps the
// Distribution interface itself error-free.
func NewExponential(mean float64) Exponential {
	if mean <= 0 {
		panic("numeric: exponential mean must be > 0")
	}
	return Exponential{Mean: mean}
}

func (e Exponential) Sample(rng RNG) float64 {
	u := rng.NextUniform()
	for u <= 0 {
		u = rng.NextUniform()
	}
	return -e.Mean * math.Log(u)
}

func (e Exponential) Quantile(p float64) float64 {
	return -e.Mean * math.Log(1-p)
}

// Uniform is a reference [Distribution] implementation of the continuous
// uniform distribution on [Lo, Hi).
type Uniform struct {
	Lo, Hi float64
}

// NewUniform builds a [Uniform] distribution over [lo, hi).
func NewUniform(lo, hi float64) Uniform {
	if hi <= lo {
		panic("numeric: uniform distribution requires hi > lo")
	}
	return Uniform{Lo: lo, Hi: hi}
}

func (u Uniform) Sample(rng RNG) float64 {
	return u.Lo + rng.NextUniform()*(u.Hi-u.Lo)
}

func (u Uniform) Quantile(p float64) float64 {
	return u.Lo + p*(u.Hi-u.Lo)
}

// Deterministic is a degenerate [Distribution] that always returns the same
// value — used for fixed checkpoint costs and deterministic task sizes.
type Deterministic struct {
	Value float64
}

func NewDeterministic(value float64) Deterministic { return Deterministic{Value: value} }

func (d Deterministic) Sample(RNG) float64    { return d.Value }
func (d Deterministic) Quantile(float64) float64 { return d.Value }

// Discrete is a reference [Distribution] over a finite set of values with
// associated (not necessarily normalized) weights — used by probabilistic
// routing to choose a destination (node, class) pair.
type Discrete struct {
	values  []float64
	cumProb []float64 // cumulative, normalized to end at 1.0
}

// NewDiscrete builds a [Discrete] distribution over values, weighted by
// weights. Panics if the slices differ in length, are empty, or every weight
// is non-positive — an invalid-argument condition.
func NewDiscrete(values, weights []float64) Discrete {
	if len(values) == 0 || len(values) != len(weights) {
		panic("numeric: discrete distribution requires matching, non-empty values/weights")
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			panic("numeric: discrete distribution weights must be non-negative")
		}
		total += w
	}
	if total <= 0 {
		panic("numeric: discrete distribution requires at least one positive weight")
	}
	cum := make([]float64, len(weights))
	running := 0.0
	for i, w := range weights {
		running += w / total
		cum[i] = running
	}
	cum[len(cum)-1] = 1.0
	return Discrete{values: append([]float64(nil), values...), cumProb: cum}
}

func (d Discrete) Sample(rng RNG) float64 {
	u := rng.NextUniform()
	for i, c := range d.cumProb {
		if u <= c {
			return d.values[i]
		}
	}
	return d.values[len(d.values)-1]
}

func (d Discrete) Quantile(p float64) float64 {
	for i, c := range d.cumProb {
		if p <= c {
			return d.values[i]
		}
	}
	return d.values[len(d.values)-1]
}
