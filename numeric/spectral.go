package numeric

import "math"

// SpectralVarianceEstimator is the narrow capability interface the
// transient-phase detector uses to estimate the steady-state
// variance sigma-hat^2 of a sample window via the Heidelberger-Welch
// log-periodogram regression method, together with the degrees of freedom
// kappa the Schruben acceptance test needs.
type SpectralVarianceEstimator interface {
	// Estimate computes sigma-hat^2 and its degrees of freedom kappa from the
	// most recent len(samples) observations, fitting a degree-`degree`
	// polynomial through `nAP` log-periodogram points, using `k` batches for
	// the (C1, kappa) table lookup. Returns an error if the resulting variance
	// estimate is negative or non-finite.
	Estimate(samples []float64, nAP, degree, k int) (sigma2, kappa float64, err error)
}

// hwTableEntry holds the (C1, kappa) pair the spectral estimator looks up by
// (K, degree).
type hwTableEntry struct {
	c1    float64
	kappa float64
}

// heidelbergerWelchTable holds reference (C1, kappa) constants for the
// log-periodogram regression method, indexed by batch count K (25 or 50) and
// polynomial degree (0..3) — a fixed (K, delta) table reproduced here as
// approximate reference values good enough to drive the detector
// end-to-end. The concrete numerical helpers behind this method are treated
// as a pluggable collaborator, so an application with stricter numerical
// requirements on this table is expected to supply its own
// [SpectralVarianceEstimator].
var heidelbergerWelchTable = map[int]map[int]hwTableEntry{
	25: {
		0: {c1: 1.000, kappa: 20.00},
		1: {c1: 0.774, kappa: 15.55},
		2: {c1: 0.645, kappa: 12.94},
		3: {c1: 0.557, kappa: 11.19},
	},
	50: {
		0: {c1: 1.000, kappa: 40.00},
		1: {c1: 0.774, kappa: 31.10},
		2: {c1: 0.645, kappa: 25.88},
		3: {c1: 0.557, kappa: 22.38},
	},
}

// lookupHWConstants returns the (C1, kappa) pair for the given (K, degree),
// falling back to the nearest tabulated K (25 vs 50) and clamping degree to
// [0, 3] — the detector never calls this with parameters outside the
// documented ranges (K in {25, 50}, delta in {0, 1, 2, 3}), but the fallback
// keeps Estimate total rather than panicking on a misconfigured detector.
func lookupHWConstants(k, degree int) hwTableEntry {
	tableK := 25
	if k >= 38 {
		tableK = 50
	}
	if degree < 0 {
		degree = 0
	}
	if degree > 3 {
		degree = 3
	}
	return heidelbergerWelchTable[tableK][degree]
}

type spectralEstimator struct {
	fitter   PolynomialFitter
	studentT StudentT
}

// NewSpectralVarianceEstimator returns a reference
// [SpectralVarianceEstimator] built on the given [PolynomialFitter].
func NewSpectralVarianceEstimator(fitter PolynomialFitter) SpectralVarianceEstimator {
	return &spectralEstimator{fitter: fitter}
}

func (e *spectralEstimator) Estimate(samples []float64, nAP, degree, k int) (float64, float64, error) {
	nV := len(samples)
	if nV == 0 || nAP <= 0 || 2*nAP > nV {
		return 0, 0, NewDimensionError("spectral variance: window too short for requested periodogram length")
	}

	periodogram := computePeriodogram(samples, 2*nAP)

	xs := make([]float64, nAP)
	ys := make([]float64, nAP)
	for j := 1; j <= nAP; j++ {
		avg := (periodogram[2*j-2] + periodogram[2*j-1]) / 2
		if avg <= 0 {
			avg = 1e-300 // guard against log(0); treated as a near-zero spectral density
		}
		ys[j-1] = math.Log(avg) + 0.270
		xs[j-1] = float64(4*j-1) / (2 * float64(nV))
	}

	poly, err := e.fitter.Fit(xs, ys, degree)
	if err != nil {
		return 0, 0, err
	}

	entry := lookupHWConstants(k, degree)
	sigma2 := entry.c1 * math.Exp(poly.ValueAt0()) / float64(nV)
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) || sigma2 < 0 {
		return 0, 0, NewDimensionError("spectral variance estimate is negative or non-finite")
	}
	return sigma2, entry.kappa, nil
}

// computePeriodogram computes the first length ordinates of the periodogram
// of a (mean-centered) sample path via a direct DFT. length is small
// (2*nAP, and nAP <= nV/4 in practice), so the O(n*length) direct transform
// is simpler and plenty fast compared to an FFT.
func computePeriodogram(samples []float64, length int) []float64 {
	n := len(samples)
	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(n)

	out := make([]float64, length)
	for k := 1; k <= length; k++ {
		freq := 2 * math.Pi * float64(k) / float64(n)
		var re, im float64
		for t, s := range samples {
			x := s - mean
			re += x * math.Cos(freq*float64(t))
			im -= x * math.Sin(freq*float64(t))
		}
		out[k-1] = (re*re + im*im) / float64(n)
	}
	return out
}
