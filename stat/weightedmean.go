package stat

import (
	"math"

	"github.com/joeycumines/go-desim/numeric"
)

// WeightedMean is a weighted-mean [Statistic] using West's (1979) running
// formula for numerically stable weighted mean and variance. This is the batch-mean
// accumulator used by [github.com/joeycumines/go-desim/analyze]'s batch-means
// analyzable statistic, where observations within a batch are weighted by the
// simulated-time interval they cover.
type WeightedMean struct {
	base
	n          int
	sumWeight  float64
	mean       float64
	m2         float64
}

// NewWeightedMean constructs a [WeightedMean] statistic.
func NewWeightedMean(category string, confidenceLevel float64, studentT numeric.StudentT) *WeightedMean {
	return &WeightedMean{base: newBase(category, confidenceLevel, studentT)}
}

func (w *WeightedMean) Collect(value, weight float64) {
	if !w.enabled || weight <= 0 {
		return
	}
	w.n++
	newSumWeight := w.sumWeight + weight
	delta := value - w.mean
	r := delta * weight / newSumWeight
	w.mean += r
	w.m2 += w.sumWeight * delta * r
	w.sumWeight = newSumWeight
}

func (w *WeightedMean) Reset() {
	w.n = 0
	w.sumWeight = 0
	w.mean = 0
	w.m2 = 0
}

func (w *WeightedMean) NumObservations() int { return w.n }
func (w *WeightedMean) Estimate() float64    { return w.mean }

func (w *WeightedMean) Variance() float64 {
	if w.n < 2 || w.sumWeight == 0 {
		return 0
	}
	return (w.m2 / w.sumWeight) * float64(w.n) / float64(w.n-1)
}

func (w *WeightedMean) StandardDeviation() float64 { return math.Sqrt(w.Variance()) }

func (w *WeightedMean) HalfWidth() float64 {
	return w.halfWidth(w.StandardDeviation(), w.n)
}

func (w *WeightedMean) RelativePrecision() float64 {
	return relativePrecision(w.HalfWidth(), w.Estimate())
}
