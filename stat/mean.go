package stat

import (
	"math"

	"github.com/joeycumines/go-desim/numeric"
)

// Mean is an arithmetic-mean [Statistic] using Welford's online algorithm for
// numerically stable running mean and variance ("arithmetic mean
// (Welford-style)"). Collect's weight argument is accepted for interface
// uniformity with [Statistic.Collect] but ignored — use [WeightedMean] when
// observations carry non-uniform weight.
type Mean struct {
	base
	n    int
	mean float64
	m2   float64
}

// NewMean constructs a [Mean] statistic reporting confidence intervals at the
// given confidence level (e.g. 0.95), labeled with category.
func NewMean(category string, confidenceLevel float64, studentT numeric.StudentT) *Mean {
	return &Mean{base: newBase(category, confidenceLevel, studentT)}
}

func (m *Mean) Collect(value, _ float64) {
	if !m.enabled {
		return
	}
	m.n++
	delta := value - m.mean
	m.mean += delta / float64(m.n)
	delta2 := value - m.mean
	m.m2 += delta * delta2
}

func (m *Mean) Reset() {
	m.n = 0
	m.mean = 0
	m.m2 = 0
}

func (m *Mean) NumObservations() int { return m.n }
func (m *Mean) Estimate() float64    { return m.mean }

func (m *Mean) Variance() float64 {
	if m.n < 2 {
		return 0
	}
	return m.m2 / float64(m.n-1)
}

func (m *Mean) StandardDeviation() float64 { return math.Sqrt(m.Variance()) }

func (m *Mean) HalfWidth() float64 {
	return m.halfWidth(m.StandardDeviation(), m.n)
}

func (m *Mean) RelativePrecision() float64 {
	return relativePrecision(m.HalfWidth(), m.Estimate())
}
