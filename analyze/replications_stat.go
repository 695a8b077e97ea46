package analyze

import (
	"github.com/joeycumines/go-desim/numeric"
	"github.com/joeycumines/go-desim/stat"
)

// ReplicationsStatistic is the replications-flavoured
// [stat.AnalyzableStatistic]: per-replication accumulation into an inner
// statistic, gated by a transient detector and a batch-size-shaped
// replication-size detector, folded at end-of-replication into a grand-mean
// statistic whose convergence is tracked by a [NumReplicationsDetector].
type ReplicationsStatistic struct {
	category        string
	confidenceLevel float64
	targetPrecision float64
	maxNumObs       int

	transient *TransientDetector
	size      SizeDetector
	numReps   NumReplicationsDetector

	inner     stat.Statistic // accumulator for the current replication
	grandMean stat.Statistic // accumulator over completed replication means

	enabled            bool
	replicationDone    bool
	numReplicationsRun int
}

// NewReplicationsStatistic constructs a [ReplicationsStatistic]. inner is
// the per-replication accumulator constructor (e.g. func() stat.Statistic {
// return stat.NewMean(...) }); grandMean accumulates across replications.
func NewReplicationsStatistic(
	category string,
	confidenceLevel, targetPrecision float64,
	maxNumObs int,
	newInner func() stat.Statistic,
	grandMean stat.Statistic,
	transient *TransientDetector,
	size SizeDetector,
	numReps NumReplicationsDetector,
	_ numeric.StudentT,
) *ReplicationsStatistic {
	return &ReplicationsStatistic{
		category:        category,
		confidenceLevel: confidenceLevel,
		targetPrecision: targetPrecision,
		maxNumObs:       maxNumObs,
		transient:       transient,
		size:            size,
		numReps:         numReps,
		inner:           newInner(),
		grandMean:       grandMean,
		enabled:         true,
	}
}

func (r *ReplicationsStatistic) Collect(value, weight float64) {
	if !r.enabled || r.MaxNumObservations() > 0 && r.grandMean.NumObservations() >= r.MaxNumObservations() {
		return
	}
	if !r.transient.Done() {
		r.transient.Collect(value)
		if r.transient.Aborted() {
			r.enabled = false
			return
		}
		if r.transient.Done() {
			for _, v := range r.transient.ReplaySamples() {
				r.collectPostTransient(v, weight)
			}
		}
		return
	}
	r.collectPostTransient(value, weight)
}

func (r *ReplicationsStatistic) collectPostTransient(value, weight float64) {
	if !r.size.Detected() {
		r.size.Collect(value)
		if r.size.Aborted() {
			r.enabled = false
			return
		}
		if r.size.Detected() {
			for _, v := range r.size.Consumed() {
				r.inner.Collect(v, weight)
			}
		}
		return
	}
	r.inner.Collect(value, weight)
}

func (r *ReplicationsStatistic) Reset() {
	r.transient.Reset()
	r.size.Reset()
	r.inner.Reset()
	r.grandMean.Reset()
	r.numReps.Reset()
	r.replicationDone = false
	r.numReplicationsRun = 0
}

func (r *ReplicationsStatistic) NumObservations() int     { return r.grandMean.NumObservations() }
func (r *ReplicationsStatistic) Estimate() float64        { return r.grandMean.Estimate() }
func (r *ReplicationsStatistic) Variance() float64        { return r.grandMean.Variance() }
func (r *ReplicationsStatistic) StandardDeviation() float64 { return r.grandMean.StandardDeviation() }
func (r *ReplicationsStatistic) HalfWidth() float64       { return r.grandMean.HalfWidth() }
func (r *ReplicationsStatistic) RelativePrecision() float64 { return r.grandMean.RelativePrecision() }
func (r *ReplicationsStatistic) ConfidenceLevel() float64 { return r.confidenceLevel }
func (r *ReplicationsStatistic) Category() string          { return r.category }
func (r *ReplicationsStatistic) Enabled() bool              { return r.enabled }
func (r *ReplicationsStatistic) SetEnabled(enabled bool)    { r.enabled = enabled }

func (r *ReplicationsStatistic) TargetRelativePrecision() float64 { return r.targetPrecision }
func (r *ReplicationsStatistic) MaxNumObservations() int          { return r.maxNumObs }

func (r *ReplicationsStatistic) TargetPrecisionReached() bool {
	rp := r.RelativePrecision()
	return rp <= r.targetPrecision
}

func (r *ReplicationsStatistic) ObservationComplete() bool {
	return r.size.Detected() && r.replicationDone
}

func (r *ReplicationsStatistic) SteadyStateEntered() bool { return r.transient.Done() }

func (r *ReplicationsStatistic) TransientPhaseLength() int {
	if !r.transient.Done() {
		return -1
	}
	return r.transient.N0()
}

func (r *ReplicationsStatistic) InitializeForExperiment() {
	r.transient.Reset()
	r.size.Reset()
	r.inner.Reset()
	r.replicationDone = false
}

func (r *ReplicationsStatistic) FinalizeForExperiment() {
	r.grandMean.Collect(r.inner.Estimate(), 1)
	r.numReplicationsRun++
	r.numReps.Observe(r.grandMean.Estimate(), r.grandMean.StandardDeviation(), r.numReplicationsRun)
	if r.numReps.Aborted() && !r.TargetPrecisionReached() {
		r.enabled = false
	}
}

func (r *ReplicationsStatistic) Refresh() {
	r.replicationDone = r.size.Detected()
}

var _ stat.AnalyzableStatistic = (*ReplicationsStatistic)(nil)
