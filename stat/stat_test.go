package stat

import (
	"math"
	"testing"

	"github.com/joeycumines/go-desim/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanConvergesOnConstantInput(t *testing.T) {
	m := NewMean("response-time", 0.95, numeric.NewStudentT())
	for i := 0; i < 50; i++ {
		m.Collect(4.0, 1.0)
	}
	assert.Equal(t, 50, m.NumObservations())
	assert.InDelta(t, 4.0, m.Estimate(), 1e-9)
	assert.Equal(t, 0.0, m.Variance())
	assert.Equal(t, "response-time", m.Category())
}

func TestMeanMatchesKnownVariance(t *testing.T) {
	m := NewMean("x", 0.95, numeric.NewStudentT())
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	for _, v := range values {
		m.Collect(v, 1)
	}
	assert.InDelta(t, 5.0, m.Estimate(), 1e-9)
	assert.InDelta(t, 4.571428571, m.Variance(), 1e-6)
}

func TestMeanDisabledSkipsCollect(t *testing.T) {
	m := NewMean("x", 0.95, numeric.NewStudentT())
	m.SetEnabled(false)
	m.Collect(10, 1)
	assert.Equal(t, 0, m.NumObservations())
}

func TestMeanHalfWidthInfiniteBelowTwoObservations(t *testing.T) {
	m := NewMean("x", 0.95, numeric.NewStudentT())
	assert.True(t, math.IsInf(m.HalfWidth(), 1))
	m.Collect(1, 1)
	assert.True(t, math.IsInf(m.HalfWidth(), 1))
	m.Collect(2, 1)
	assert.False(t, math.IsInf(m.HalfWidth(), 1))
}

func TestWeightedMeanWithUniformWeightsMatchesMean(t *testing.T) {
	w := NewWeightedMean("busy", 0.95, numeric.NewStudentT())
	m := NewMean("busy", 0.95, numeric.NewStudentT())
	values := []float64{1, 2, 3, 4, 5}
	for _, v := range values {
		w.Collect(v, 1)
		m.Collect(v, 1)
	}
	assert.InDelta(t, m.Estimate(), w.Estimate(), 1e-9)
	assert.InDelta(t, m.Variance(), w.Variance(), 1e-9)
}

func TestWeightedMeanWeightsBiasEstimate(t *testing.T) {
	w := NewWeightedMean("queue-length", 0.95, numeric.NewStudentT())
	w.Collect(0, 9)
	w.Collect(10, 1)
	assert.InDelta(t, 1.0, w.Estimate(), 1e-9)
}

func TestWeightedMeanIgnoresNonPositiveWeight(t *testing.T) {
	w := NewWeightedMean("x", 0.95, numeric.NewStudentT())
	w.Collect(5, 0)
	w.Collect(5, -1)
	assert.Equal(t, 0, w.NumObservations())
}

func TestQuantileTracksMedianOnSortedStream(t *testing.T) {
	q := NewQuantile("response-time-p50", 0.5, 0.95, numeric.NewStudentT())
	for i := 1; i <= 2000; i++ {
		q.Collect(float64(i), 1)
	}
	assert.InDelta(t, 1000, q.Estimate(), 40)
	assert.Equal(t, 2000, q.NumObservations())
}

func TestQuantileBeforeWarmupReturnsSortedBufferMedian(t *testing.T) {
	q := NewQuantile("x", 0.5, 0.95, numeric.NewStudentT())
	q.Collect(3, 1)
	q.Collect(1, 1)
	q.Collect(2, 1)
	require.Equal(t, 3, q.NumObservations())
	assert.Equal(t, 2.0, q.Estimate())
}

func TestQuantileP99OnUniformStream(t *testing.T) {
	q := NewQuantile("p99", 0.99, 0.95, numeric.NewStudentT())
	for i := 0; i <= 10000; i++ {
		q.Collect(float64(i)/10000.0, 1)
	}
	assert.InDelta(t, 0.99, q.Estimate(), 0.02)
}

func TestStatisticResetClearsObservations(t *testing.T) {
	m := NewMean("x", 0.95, numeric.NewStudentT())
	m.Collect(1, 1)
	m.Collect(2, 1)
	m.Reset()
	assert.Equal(t, 0, m.NumObservations())
	assert.Equal(t, 0.0, m.Estimate())
}

func TestNewMeanPanicsOnInvalidConfidenceLevel(t *testing.T) {
	assert.Panics(t, func() { NewMean("x", 0, numeric.NewStudentT()) })
	assert.Panics(t, func() { NewMean("x", 1, numeric.NewStudentT()) })
}
