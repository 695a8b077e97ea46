package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialSampleMean(t *testing.T) {
	dist := NewExponential(4.0)
	rng := NewRNG(1)
	sum := 0.0
	const n = 200000
	for i := 0; i < n; i++ {
		sum += dist.Sample(rng)
	}
	mean := sum / n
	assert.InDelta(t, 4.0, mean, 0.1)
}

func TestExponentialQuantile(t *testing.T) {
	dist := NewExponential(1.0)
	assert.InDelta(t, math.Log(2), dist.Quantile(0.5), 1e-9)
}

func TestDiscreteDistribution(t *testing.T) {
	d := NewDiscrete([]float64{1, 2, 3}, []float64{1, 1, 2})
	rng := NewRNG(2)
	counts := map[float64]int{}
	const n = 40000
	for i := 0; i < n; i++ {
		counts[d.Sample(rng)]++
	}
	assert.InDelta(t, 0.25, float64(counts[1])/n, 0.03)
	assert.InDelta(t, 0.5, float64(counts[3])/n, 0.03)
}

func TestStudentTApproachesNormalForLargeDF(t *testing.T) {
	st := NewStudentT()
	got := st.Quantile(0.05, 1_000_000)
	assert.InDelta(t, 1.959964, got, 1e-3)
}

func TestStudentTSmallDF(t *testing.T) {
	st := NewStudentT()
	// t_{0.975, 10} is a commonly tabulated value: 2.228
	got := st.Quantile(0.05, 10)
	assert.InDelta(t, 2.228, got, 0.02)
}

func TestPolynomialFitterRecoversExactLine(t *testing.T) {
	fitter := NewPolynomialFitter()
	x := []float64{0, 1, 2, 3, 4}
	y := make([]float64, len(x))
	for i, xv := range x {
		y[i] = 2 + 3*xv
	}
	poly, err := fitter.Fit(x, y, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, poly.ValueAt0(), 1e-6)
	assert.InDelta(t, 3.0, poly.SlopeAt0(), 1e-6)
}

func TestSpectralVarianceEstimatorOnWhiteNoise(t *testing.T) {
	rng := NewRNG(42)
	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = rng.NextUniform()
	}
	est := NewSpectralVarianceEstimator(NewPolynomialFitter())
	sigma2, kappa, err := est.Estimate(samples, 25, 1, 25)
	require.NoError(t, err)
	assert.Greater(t, sigma2, 0.0)
	assert.Greater(t, kappa, 0.0)
}

func TestSpectralVarianceEstimatorRejectsTooShortWindow(t *testing.T) {
	est := NewSpectralVarianceEstimator(NewPolynomialFitter())
	_, _, err := est.Estimate([]float64{1, 2, 3}, 25, 1, 25)
	require.Error(t, err)
}
