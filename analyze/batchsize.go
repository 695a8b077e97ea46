package analyze

import (
	"math"

	"github.com/joeycumines/go-desim/numeric"
)

// BatchSizeDetectorOption configures a [BatchSizeDetector] at construction
// time.
type BatchSizeDetectorOption func(*BatchSizeDetector)

// WithInitialBatchSize sets m0, the starting batch size (default 50).
func WithInitialBatchSize(m0 int) BatchSizeDetectorOption {
	return func(d *BatchSizeDetector) { d.m0 = m0 }
}

// WithBatchCount sets k_b0, the number of batches in the analyzed sequence
// (default 100).
func WithBatchCount(kb0 int) BatchSizeDetectorOption {
	return func(d *BatchSizeDetector) { d.kb0 = kb0 }
}

// WithSignificance sets beta, the overall significance level for the
// autocorrelation test (default 0.1).
func WithSignificance(beta float64) BatchSizeDetectorOption {
	return func(d *BatchSizeDetector) { d.beta = beta }
}

// WithMaxObservations sets n_max, the cap on total raw observations before
// the detector aborts.
func WithMaxObservations(nMax int) BatchSizeDetectorOption {
	return func(d *BatchSizeDetector) { d.nMax = nMax }
}

// BatchSizeDetector sequentially determines a batch size m such that batch
// means are approximately uncorrelated (Pawlikowski 1990), via a jackknife
// autocorrelation test on progressively coarser consolidations of a
// reference sequence of batch means.
type BatchSizeDetector struct {
	m0   int
	kb0  int
	beta float64
	nMax int

	s int // current trial multiplier

	batchMean    float64 // accumulator for the batch currently being filled
	batchCount   int     // observations folded into batchMean so far
	totalObs     int

	reference []float64 // batch means at size m0, capacity kb0*s
	acceptable bool

	detected bool
	aborted  bool
	mStar    int // accepted batch size, valid once detected

	consumed []float64 // the accepted batch-mean sequence, replayed downstream via Consumed
}

// SizeDetector decides, from a stream of steady-state observations, when a
// replication or batch has accumulated enough data — either by a
// statistical test ([BatchSizeDetector]) or a fixed count
// ([FixedSizeDetector]) — and exposes the data consumed while deciding, so a
// caller can fold it into its own accumulator instead of discarding it.
// [FixedSizeDetector] exposes the raw observations; [BatchSizeDetector]
// exposes the batch means at its accepted batch size, not the raw samples.
type SizeDetector interface {
	Collect(x float64)
	Detected() bool
	Aborted() bool
	// Consumed returns the observations folded into the decision, valid once
	// Detected returns true.
	Consumed() []float64
	Reset()
}

// NewBatchSizeDetector constructs a [BatchSizeDetector] with Pawlikowski's
// published defaults, overridden by opts.
func NewBatchSizeDetector(opts ...BatchSizeDetectorOption) *BatchSizeDetector {
	d := &BatchSizeDetector{
		m0:   50,
		kb0:  100,
		beta: 0.1,
		nMax: 1_000_000,
		s:    1,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Detected reports whether a batch size has been accepted.
func (d *BatchSizeDetector) Detected() bool { return d.detected }

// Aborted reports whether the detector exceeded n_max without converging.
func (d *BatchSizeDetector) Aborted() bool { return d.aborted }

// BatchSize returns the accepted batch size m*. Valid only once Detected().
func (d *BatchSizeDetector) BatchSize() int { return d.mStar }

// Consumed returns the accepted batch-mean sequence used to determine m* —
// kb0*s values, each the mean of m0 consecutive raw observations. Valid
// once Detected().
func (d *BatchSizeDetector) Consumed() []float64 { return d.consumed }

// Reset returns the detector to its initial state, keeping configured
// parameters.
func (d *BatchSizeDetector) Reset() {
	d.s = 1
	d.batchMean = 0
	d.batchCount = 0
	d.totalObs = 0
	d.reference = nil
	d.acceptable = false
	d.detected = false
	d.aborted = false
	d.mStar = 0
	d.consumed = nil
}

// Collect feeds a single steady-state observation. No-op once Detected or
// Aborted.
func (d *BatchSizeDetector) Collect(x float64) {
	if d.detected || d.aborted {
		return
	}
	d.totalObs++
	if d.totalObs > d.nMax {
		d.aborted = true
		return
	}

	d.batchMean += x
	d.batchCount++
	if d.batchCount < d.m0 {
		return
	}

	d.reference = append(d.reference, d.batchMean/float64(d.batchCount))
	d.batchMean = 0
	d.batchCount = 0

	if len(d.reference) < d.kb0*d.s {
		return
	}

	analyzed := consolidate(d.reference, d.s)
	if independenceAccepted(analyzed, d.beta) {
		if d.acceptable {
			d.mStar = d.s * d.m0
			d.detected = true
			d.consumed = append([]float64(nil), d.reference...)
			return
		}
		d.acceptable = true
	} else {
		d.acceptable = false
	}
	d.s++
	d.reference = nil
}

// consolidate averages consecutive groups of s reference batch means into a
// k_b0-length analyzed sequence.
func consolidate(reference []float64, s int) []float64 {
	n := len(reference) / s
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < s; j++ {
			sum += reference[i*s+j]
		}
		out[i] = sum / float64(s)
	}
	return out
}

// independenceAccepted runs Pawlikowski's jackknife autocorrelation test on
// the analyzed sequence, returning true if independence is not rejected at
// any lag up to L = kb0/10.
func independenceAccepted(a []float64, beta float64) bool {
	kb0 := len(a)
	L := kb0 / 10
	if L < 1 {
		L = 1
	}
	betaK := beta / float64(L)
	z := numeric.NewStudentT().Quantile(betaK, 1e9) // large df ~ normal quantile

	half := kb0 / 2
	first := a[:half]
	second := a[half:]

	var rSquaredSum float64
	for k := 1; k <= L; k++ {
		rFull := autocorrelation(a, k)
		r1 := autocorrelation(first, k)
		r2 := autocorrelation(second, k)
		rJack := 2*rFull - (r1+r2)/2

		var sigma float64
		if k == 1 {
			sigma = math.Sqrt(1.0 / float64(kb0))
		} else {
			sigma = math.Sqrt((1 + 2*rSquaredSum) / float64(kb0))
		}
		rSquaredSum += rJack * rJack

		if math.Abs(rJack) > z*sigma {
			return false
		}
	}
	return true
}

var _ SizeDetector = (*BatchSizeDetector)(nil)

// FixedSizeDetector is the degenerate [SizeDetector]: it declares itself
// detected the instant it has collected a fixed number of observations, with
// no statistical test. Grounded on the original bank example's use of a
// replication size fixed at construction time rather than adaptively
// determined.
type FixedSizeDetector struct {
	target int
	buf    []float64
}

// NewFixedSizeDetector constructs a [FixedSizeDetector] requiring exactly n
// observations.
func NewFixedSizeDetector(n int) *FixedSizeDetector {
	return &FixedSizeDetector{target: n}
}

func (d *FixedSizeDetector) Collect(x float64) {
	if len(d.buf) >= d.target {
		return
	}
	d.buf = append(d.buf, x)
}

func (d *FixedSizeDetector) Detected() bool      { return len(d.buf) >= d.target }
func (d *FixedSizeDetector) Aborted() bool       { return false }
func (d *FixedSizeDetector) Consumed() []float64 { return d.buf }
func (d *FixedSizeDetector) Reset()              { d.buf = nil }

var _ SizeDetector = (*FixedSizeDetector)(nil)

// autocorrelation computes the ordinary lag-k sample autocorrelation of x.
func autocorrelation(x []float64, lag int) float64 {
	n := len(x)
	if lag >= n {
		return 0
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	var num, den float64
	for i := 0; i < n-lag; i++ {
		num += (x[i] - mean) * (x[i+lag] - mean)
	}
	for i := 0; i < n; i++ {
		den += (x[i] - mean) * (x[i] - mean)
	}
	if den == 0 {
		return 0
	}
	return num / den
}
