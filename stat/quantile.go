package stat

import (
	"math"

	"github.com/joeycumines/go-desim/numeric"
)

// pSquareEstimator implements the P² algorithm for streaming quantile
// estimation (Jain, R. and Chlamtac, I. (1985), "The P² Algorithm for
// Dynamic Calculation of Quantiles and Histograms Without Storing
// Observations", CACM 28(10)). O(1) per-observation update and O(1)
// retrieval, with no need to retain the sample path.
type pSquareEstimator struct {
	p          float64
	q          [5]float64
	n          [5]int
	np         [5]float64
	dn         [5]float64
	count      int
	initBuffer [5]float64
}

func newPSquareEstimator(p float64) *pSquareEstimator {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &pSquareEstimator{
		p:  p,
		dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (ps *pSquareEstimator) update(x float64) {
	ps.count++

	if ps.count <= 5 {
		ps.initBuffer[ps.count-1] = x
		if ps.count == 5 {
			ps.initialize()
		}
		return
	}

	var k int
	if x < ps.q[0] {
		ps.q[0] = x
		k = 0
	} else if x >= ps.q[4] {
		ps.q[4] = x
		k = 3
	} else {
		for k = 0; k < 4; k++ {
			if ps.q[k] <= x && x < ps.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		ps.n[i]++
	}
	for i := 0; i < 5; i++ {
		ps.np[i] += ps.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := ps.np[i] - float64(ps.n[i])
		if (d >= 1 && ps.n[i+1]-ps.n[i] > 1) || (d <= -1 && ps.n[i-1]-ps.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qPrime := ps.parabolic(i, sign)
			if ps.q[i-1] < qPrime && qPrime < ps.q[i+1] {
				ps.q[i] = qPrime
			} else {
				ps.q[i] = ps.linear(i, sign)
			}
			ps.n[i] += sign
		}
	}
}

func (ps *pSquareEstimator) initialize() {
	for i := 1; i < 5; i++ {
		key := ps.initBuffer[i]
		j := i - 1
		for j >= 0 && ps.initBuffer[j] > key {
			ps.initBuffer[j+1] = ps.initBuffer[j]
			j--
		}
		ps.initBuffer[j+1] = key
	}
	for i := 0; i < 5; i++ {
		ps.q[i] = ps.initBuffer[i]
		ps.n[i] = i
	}
	ps.np = [5]float64{0, 2 * ps.p, 4 * ps.p, 2 + 2*ps.p, 4}
}

func (ps *pSquareEstimator) parabolic(i, d int) float64 {
	df := float64(d)
	ni := float64(ps.n[i])
	niPrev := float64(ps.n[i-1])
	niNext := float64(ps.n[i+1])

	term1 := df / (niNext - niPrev)
	term2 := (ni - niPrev + df) * (ps.q[i+1] - ps.q[i]) / (niNext - ni)
	term3 := (niNext - ni - df) * (ps.q[i] - ps.q[i-1]) / (ni - niPrev)
	return ps.q[i] + term1*(term2+term3)
}

func (ps *pSquareEstimator) linear(i, d int) float64 {
	if d == 1 {
		return ps.q[i] + (ps.q[i+1]-ps.q[i])/float64(ps.n[i+1]-ps.n[i])
	}
	return ps.q[i] - (ps.q[i]-ps.q[i-1])/float64(ps.n[i]-ps.n[i-1])
}

func (ps *pSquareEstimator) quantile() float64 {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		sorted := append([]float64(nil), ps.initBuffer[:ps.count]...)
		for i := 1; i < ps.count; i++ {
			key := sorted[i]
			j := i - 1
			for j >= 0 && sorted[j] > key {
				sorted[j+1] = sorted[j]
				j--
			}
			sorted[j+1] = key
		}
		index := int(float64(ps.count-1) * ps.p)
		if index >= ps.count {
			index = ps.count - 1
		}
		return sorted[index]
	}
	return ps.q[2]
}

// Quantile is a P²-based quantile [Statistic]. Variance/HalfWidth are
// derived from a companion running mean of the same observations: the P²
// algorithm does not itself produce a variance estimate for the quantile
// value (that would need the asymptotic order-statistic variance, a
// numerical helper this module treats as out of scope), so these report the
// dispersion of the underlying sample path rather than the (generally
// tighter) sampling variance of the quantile estimator itself — adequate for
// textual reporting, not for rigorous quantile confidence intervals.
type Quantile struct {
	base
	p   float64
	est *pSquareEstimator
	mu  *Mean
}

// NewQuantile constructs a [Quantile] statistic for target percentile p
// (e.g. 0.99 for P99).
func NewQuantile(category string, p, confidenceLevel float64, studentT numeric.StudentT) *Quantile {
	return &Quantile{
		base: newBase(category, confidenceLevel, studentT),
		p:    p,
		est:  newPSquareEstimator(p),
		mu:   NewMean(category, confidenceLevel, studentT),
	}
}

func (q *Quantile) Collect(value, weight float64) {
	if !q.enabled {
		return
	}
	q.est.update(value)
	q.mu.Collect(value, weight)
}

func (q *Quantile) Reset() {
	q.est = newPSquareEstimator(q.p)
	q.mu.Reset()
}

func (q *Quantile) NumObservations() int     { return q.mu.NumObservations() }
func (q *Quantile) Estimate() float64        { return q.est.quantile() }
func (q *Quantile) Variance() float64        { return q.mu.Variance() }
func (q *Quantile) StandardDeviation() float64 { return math.Sqrt(q.Variance()) }

func (q *Quantile) HalfWidth() float64 {
	return q.halfWidth(q.StandardDeviation(), q.NumObservations())
}

func (q *Quantile) RelativePrecision() float64 {
	return relativePrecision(q.HalfWidth(), q.Estimate())
}
