package analyze

import (
	"math"

	"github.com/joeycumines/go-desim/numeric"
)

// TransientPhase enumerates the lifecycle state of a [TransientDetector].
type TransientPhase int

const (
	// PhaseHeuristic is the initial mean-crossing-counting phase (rule R5).
	PhaseHeuristic TransientPhase = iota
	// PhaseSchruben is the test-window phase running the Schruben statistic.
	PhaseSchruben
	// PhaseDone means stationarity was accepted; TransientPhaseLength is final.
	PhaseDone
	// PhaseAborted means the detector exceeded its sample budget (n0_max)
	// without accepting stationarity.
	PhaseAborted
)

// TransientDetectorOption configures a [TransientDetector] at construction
// time.
type TransientDetectorOption func(*TransientDetector)

// WithN0Max sets the cap on warm-up length before the detector aborts.
func WithN0Max(n int) TransientDetectorOption {
	return func(d *TransientDetector) { d.n0Max = n }
}

// WithGamma sets the exchange coefficient controlling window-shift size.
func WithGamma(gamma float64) TransientDetectorOption {
	return func(d *TransientDetector) { d.gamma = gamma }
}

// WithGammaV sets the variance-window safety multiplier (must be <= 2).
func WithGammaV(gammaV float64) TransientDetectorOption {
	return func(d *TransientDetector) { d.gammaV = gammaV }
}

// WithAlphaT sets the Schruben test significance level.
func WithAlphaT(alpha float64) TransientDetectorOption {
	return func(d *TransientDetector) { d.alphaT = alpha }
}

// WithVarianceWindow sets n_v, the number of trailing samples the spectral
// variance estimate is computed over.
func WithVarianceWindow(nV int) TransientDetectorOption {
	return func(d *TransientDetector) { d.nV = nV }
}

// WithPeriodogramPoints sets n_ap, the number of log-periodogram points fit
// (must be <= n_v/4).
func WithPeriodogramPoints(nAP int) TransientDetectorOption {
	return func(d *TransientDetector) { d.nAP = nAP }
}

// WithPolynomialDegree sets delta, the degree of the polynomial fit to the
// log-periodogram.
func WithPolynomialDegree(degree int) TransientDetectorOption {
	return func(d *TransientDetector) { d.degree = degree }
}

// WithSafetyFactor sets the multiplier applied to n_t when determining how
// many trailing samples are retained as the steady-state replay set.
func WithSafetyFactor(f float64) TransientDetectorOption {
	return func(d *TransientDetector) { d.safetyFactor = f }
}

// WithEpsilon sets the float-comparison tolerance used by the mean-crossing
// count.
func WithEpsilon(eps float64) TransientDetectorOption {
	return func(d *TransientDetector) { d.epsilon = eps }
}

// WithSpectralVarianceEstimator overrides the reference
// [numeric.SpectralVarianceEstimator] used to compute sigma-hat^2/kappa.
func WithSpectralVarianceEstimator(e numeric.SpectralVarianceEstimator) TransientDetectorOption {
	return func(d *TransientDetector) { d.spectral = e }
}

// WithStudentT overrides the reference [numeric.StudentT] used for the
// Schruben acceptance test.
func WithStudentT(t numeric.StudentT) TransientDetectorOption {
	return func(d *TransientDetector) { d.studentT = t }
}

// TransientDetector sequentially estimates the warm-up length n0 of a
// non-stationary sample path using Schruben's test with Heidelberger-Welch
// spectral variance estimation (rule R5 for the initial heuristic phase).
type TransientDetector struct {
	n0Max        int
	gamma        float64
	gammaV       float64
	alphaT       float64
	nV           int
	nAP          int
	degree       int
	k            int
	safetyFactor float64
	epsilon      float64

	spectral numeric.SpectralVarianceEstimator
	studentT numeric.StudentT

	phase TransientPhase

	all []float64 // every sample ever collected, for crossing-count bookkeeping

	crossings   int
	runningMean float64
	runningSum  float64
	runningN    int
	lastSign    int // -1, 0, +1: sign of x_{i-1} - mean at previous step

	n0star int
	gammaN0star int
	nT     int
	window []float64 // the current n_t-length test window

	n0 int // accepted warm-up length, valid once phase == PhaseDone

	replaySamples []float64 // steady-state samples retained for downstream replay
}

// NewTransientDetector constructs a [TransientDetector] with Schruben's
// published defaults (n0_max=2000, gamma=1, gammaV=1.5, alphaT=0.05, nV=64,
// nAP=16, degree=2, K=25, safetyFactor=1.0, epsilon=1e-9), overridden by
// opts.
func NewTransientDetector(opts ...TransientDetectorOption) *TransientDetector {
	d := &TransientDetector{
		n0Max:        2000,
		gamma:        1.0,
		gammaV:       1.5,
		alphaT:       0.05,
		nV:           64,
		nAP:          16,
		degree:       2,
		k:            25,
		safetyFactor: 1.0,
		epsilon:      1e-9,
	}
	for _, o := range opts {
		o(d)
	}
	if d.spectral == nil {
		d.spectral = numeric.NewSpectralVarianceEstimator(numeric.NewPolynomialFitter())
	}
	if d.studentT == nil {
		d.studentT = numeric.NewStudentT()
	}
	return d
}

// Phase returns the detector's current lifecycle phase.
func (d *TransientDetector) Phase() TransientPhase { return d.phase }

// Done reports whether the detector has accepted stationarity.
func (d *TransientDetector) Done() bool { return d.phase == PhaseDone }

// Aborted reports whether the detector exceeded n0_max without converging.
func (d *TransientDetector) Aborted() bool { return d.phase == PhaseAborted }

// N0 returns the accepted warm-up length. Valid only once Done() is true.
func (d *TransientDetector) N0() int { return d.n0 }

// ReplaySamples returns the steady-state samples retained to seed the
// downstream size detector, valid once Done() is true. The slice holds at
// least safetyFactor*n_t samples (clamped to what was actually observed),
// per the hard-floor resolution of the SafetyBuffer open question.
func (d *TransientDetector) ReplaySamples() []float64 {
	return d.replaySamples
}

// Reset returns the detector to its initial (pre-heuristic) state, keeping
// configured parameters.
func (d *TransientDetector) Reset() {
	d.phase = PhaseHeuristic
	d.all = nil
	d.crossings = 0
	d.runningMean = 0
	d.runningSum = 0
	d.runningN = 0
	d.lastSign = 0
	d.n0star = 0
	d.gammaN0star = 0
	d.nT = 0
	d.window = nil
	d.n0 = 0
	d.replaySamples = nil
}

// Collect feeds a single raw observation to the detector, advancing its
// state machine. No-op once Done or Aborted.
func (d *TransientDetector) Collect(x float64) {
	if d.phase == PhaseDone || d.phase == PhaseAborted {
		return
	}
	d.all = append(d.all, x)

	if d.phase == PhaseHeuristic {
		d.collectHeuristic(x)
		return
	}

	d.window = append(d.window, x)
	if len(d.window) > d.nT {
		d.window = d.window[len(d.window)-d.nT:]
	}
	if len(d.window) == d.nT {
		d.evaluateSchruben()
	}
}

func (d *TransientDetector) collectHeuristic(x float64) {
	d.runningN++
	d.runningSum += x
	d.runningMean = d.runningSum / float64(d.runningN)

	sign := 0
	diff := x - d.runningMean
	switch {
	case diff > d.epsilon:
		sign = 1
	case diff < -d.epsilon:
		sign = -1
	}
	if d.lastSign != 0 && sign != 0 && sign != d.lastSign {
		d.crossings++
	} else if sign == 0 {
		d.crossings++
	}
	if sign != 0 {
		d.lastSign = sign
	}

	if d.crossings >= 25 {
		d.n0star = d.runningN
		d.gammaN0star = int(math.Floor(d.gamma * float64(d.n0star)))
		if d.gammaN0star < 1 {
			d.gammaN0star = 1
		}
		d.nT = d.gammaN0star
		if minWindow := int(math.Floor(d.gammaV * float64(d.nV))); minWindow > d.nT {
			d.nT = minWindow
		}
		d.phase = PhaseSchruben
		// seed the test window from the most recently observed samples
		if len(d.all) >= d.nT {
			d.window = append([]float64(nil), d.all[len(d.all)-d.nT:]...)
			d.evaluateSchruben()
		} else {
			d.window = append([]float64(nil), d.all...)
		}
		return
	}

	if d.runningN >= d.n0Max/2 {
		d.phase = PhaseAborted
	}
}

func (d *TransientDetector) evaluateSchruben() {
	nT := len(d.window)
	if nT < d.nV {
		return
	}
	tail := d.window[nT-d.nV:]

	sigma2, kappa, err := d.spectral.Estimate(tail, d.nAP, d.degree, d.k)
	if err != nil || sigma2 <= 0 || math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		d.shiftOrAbort()
		return
	}

	xbar := 0.0
	for _, v := range d.window {
		xbar += v
	}
	xbar /= float64(nT)

	var cumulative, stat float64
	for k := 1; k <= nT; k++ {
		cumulative += d.window[k-1]
		deviation := xbar - cumulative/float64(k)
		weight := float64(k) * (1 - float64(k)/float64(nT))
		stat += weight * deviation
	}
	denom := float64(nT) * math.Sqrt(float64(nT)*float64(d.nV)*sigma2)
	var T float64
	if denom != 0 {
		T = stat * math.Sqrt(45) / denom
	}

	threshold := d.studentT.Quantile(d.alphaT, kappa)
	if math.Abs(T) <= threshold {
		d.accept(nT)
		return
	}
	d.shiftOrAbort()
}

func (d *TransientDetector) accept(nT int) {
	d.phase = PhaseDone
	d.n0 = len(d.all) - nT

	safeN := int(math.Ceil(d.safetyFactor * float64(nT)))
	if safeN > nT {
		safeN = nT
	}
	if safeN < 1 {
		safeN = nT
	}
	d.replaySamples = append([]float64(nil), d.window[nT-safeN:]...)
}

func (d *TransientDetector) shiftOrAbort() {
	d.n0star += d.gammaN0star
	if d.n0star > d.n0Max {
		d.phase = PhaseAborted
		return
	}
	// shift the window forward by gammaN0star samples, re-seeding from all
	// observed data so far.
	if len(d.all) >= d.nT {
		d.window = append([]float64(nil), d.all[len(d.all)-d.nT+d.gammaN0star:]...)
	}
}
