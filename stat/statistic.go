package stat

import (
	"math"

	"github.com/joeycumines/go-desim/numeric"
)

// Statistic is the abstract observation-collecting estimator:
// observations are (value, weight) pairs; the statistic reports its running
// estimate, variance, standard deviation, half-width and relative precision
// at a configured confidence level, and can be disabled/enabled/reset/queried
// for its observation count.
type Statistic interface {
	// Collect records a single observation. Once the statistic is disabled,
	// Collect is a no-op.
	Collect(value, weight float64)
	// Reset clears all accumulated observations.
	Reset()
	// NumObservations returns the number of observations collected so far.
	// For an [AnalyzableStatistic] past the point chunking begins, this
	// counts chunks (replications or batches), not raw samples.
	NumObservations() int
	// Estimate returns the statistic's current point estimate.
	Estimate() float64
	// Variance returns the statistic's current variance estimate.
	Variance() float64
	// StandardDeviation returns sqrt(Variance()).
	StandardDeviation() float64
	// HalfWidth returns the confidence-interval half-width at ConfidenceLevel().
	HalfWidth() float64
	// RelativePrecision returns HalfWidth() / |Estimate()|.
	RelativePrecision() float64
	// ConfidenceLevel returns the configured confidence level, e.g. 0.95.
	ConfidenceLevel() float64
	// Category returns the statistic's category label (e.g. "response-time",
	// "utilization") used to look statistics up by kind ("reading
	// a statistic of a category never registered").
	Category() string
	// Enabled reports whether the statistic currently accepts observations.
	Enabled() bool
	// SetEnabled enables or disables the statistic.
	SetEnabled(enabled bool)
}

// base holds the fields and helper computations common to every concrete
// [Statistic] in this package: confidence level, category label, the
// enabled flag, and the injected [numeric.StudentT] capability used for
// half-width computation.
type base struct {
	category        string
	confidenceLevel float64
	enabled         bool
	studentT        numeric.StudentT
}

func newBase(category string, confidenceLevel float64, studentT numeric.StudentT) base {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		panic("stat: confidence level must be in (0, 1)")
	}
	if studentT == nil {
		studentT = numeric.NewStudentT()
	}
	return base{
		category:        category,
		confidenceLevel: confidenceLevel,
		enabled:         true,
		studentT:        studentT,
	}
}

func (b *base) Category() string          { return b.category }
func (b *base) ConfidenceLevel() float64  { return b.confidenceLevel }
func (b *base) Enabled() bool             { return b.enabled }
func (b *base) SetEnabled(enabled bool)   { b.enabled = enabled }

// halfWidth computes t_{1-alpha/2, n-1} * sd / sqrt(n), returning +Inf when
// n is too small (n < 2) to form an interval.
func (b *base) halfWidth(sd float64, n int) float64 {
	if n < 2 {
		return math.Inf(1)
	}
	alpha := 1 - b.confidenceLevel
	t := b.studentT.Quantile(alpha, float64(n-1))
	return t * sd / math.Sqrt(float64(n))
}

// relativePrecision computes halfWidth / |estimate|, treating a zero
// estimate as producing an infinite (unachievable) relative precision rather
// than dividing by zero.
func relativePrecision(halfWidth, estimate float64) float64 {
	if estimate == 0 {
		if halfWidth == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return halfWidth / math.Abs(estimate)
}
