package analyze

import (
	"github.com/joeycumines/go-desim/stat"
)

// BatchMeansStatistic is the batch-means-flavoured [stat.AnalyzableStatistic]:
// a transient detector gates entry to steady state, then a batch-size
// detector determines the batch length, after which observations accumulate
// into the current batch's weighted mean and, at each batch boundary, into
// an inner weighted-mean statistic over batch means.
type BatchMeansStatistic struct {
	category        string
	confidenceLevel float64
	targetPrecision float64
	maxNumObs       int

	transient *TransientDetector
	size      *BatchSizeDetector

	batch *stat.WeightedMean // accumulator for the batch currently being filled
	inner stat.Statistic     // weighted mean over completed batch means

	batchTarget     int
	batchFill       int
	batchJustClosed bool

	enabled bool
}

// NewBatchMeansStatistic constructs a [BatchMeansStatistic]. inner
// accumulates batch means (typically a [stat.WeightedMean], or a plain
// [stat.Mean]); each batch mean is collected with weight equal to the weight
// of the observation that closed the batch times the batch length.
func NewBatchMeansStatistic(
	category string,
	confidenceLevel, targetPrecision float64,
	maxNumObs int,
	inner stat.Statistic,
	transient *TransientDetector,
	size *BatchSizeDetector,
) *BatchMeansStatistic {
	return &BatchMeansStatistic{
		category:        category,
		confidenceLevel: confidenceLevel,
		targetPrecision: targetPrecision,
		maxNumObs:       maxNumObs,
		transient:       transient,
		size:            size,
		batch:           stat.NewWeightedMean(category+"-batch", confidenceLevel, nil),
		inner:           inner,
		enabled:         true,
	}
}

func (b *BatchMeansStatistic) Collect(value, weight float64) {
	if !b.enabled {
		return
	}
	if b.maxNumObs > 0 && b.inner.NumObservations() >= b.maxNumObs {
		return
	}
	if !b.transient.Done() {
		b.transient.Collect(value)
		if b.transient.Aborted() {
			b.enabled = false
			return
		}
		if b.transient.Done() {
			for _, v := range b.transient.ReplaySamples() {
				b.collectPostTransient(v, weight)
			}
		}
		return
	}
	b.collectPostTransient(value, weight)
}

func (b *BatchMeansStatistic) collectPostTransient(value, weight float64) {
	if !b.size.Detected() {
		b.size.Collect(value)
		if b.size.Aborted() {
			b.enabled = false
			return
		}
		if b.size.Detected() {
			b.batchTarget = b.size.BatchSize()
		}
		return
	}
	b.batch.Collect(value, weight)
	b.batchFill++
	b.batchJustClosed = false
	if b.batchFill >= b.batchTarget {
		b.inner.Collect(b.batch.Estimate(), weight*float64(b.batchFill))
		b.batch.Reset()
		b.batchFill = 0
		b.batchJustClosed = true
	}
}

func (b *BatchMeansStatistic) Reset() {
	b.transient.Reset()
	b.size.Reset()
	b.batch.Reset()
	b.inner.Reset()
	b.batchFill = 0
	b.batchTarget = 0
	b.batchJustClosed = false
}

func (b *BatchMeansStatistic) NumObservations() int       { return b.inner.NumObservations() }
func (b *BatchMeansStatistic) Estimate() float64          { return b.inner.Estimate() }
func (b *BatchMeansStatistic) Variance() float64          { return b.inner.Variance() }
func (b *BatchMeansStatistic) StandardDeviation() float64 { return b.inner.StandardDeviation() }
func (b *BatchMeansStatistic) HalfWidth() float64         { return b.inner.HalfWidth() }
func (b *BatchMeansStatistic) RelativePrecision() float64 { return b.inner.RelativePrecision() }
func (b *BatchMeansStatistic) ConfidenceLevel() float64   { return b.confidenceLevel }
func (b *BatchMeansStatistic) Category() string           { return b.category }
func (b *BatchMeansStatistic) Enabled() bool              { return b.enabled }
func (b *BatchMeansStatistic) SetEnabled(enabled bool)    { b.enabled = enabled }

func (b *BatchMeansStatistic) TargetRelativePrecision() float64 { return b.targetPrecision }
func (b *BatchMeansStatistic) MaxNumObservations() int          { return b.maxNumObs }

func (b *BatchMeansStatistic) TargetPrecisionReached() bool {
	return b.RelativePrecision() <= b.targetPrecision
}

// ObservationComplete reports whether the most recent Collect call closed a
// batch boundary — the batch-means analogue of "replication finished".
func (b *BatchMeansStatistic) ObservationComplete() bool { return b.batchJustClosed }

func (b *BatchMeansStatistic) SteadyStateEntered() bool { return b.transient.Done() }

func (b *BatchMeansStatistic) TransientPhaseLength() int {
	if !b.transient.Done() {
		return -1
	}
	return b.transient.N0()
}

func (b *BatchMeansStatistic) InitializeForExperiment() {
	// batch means runs as a single monolithic replication; per-experiment
	// reset is a no-op beyond construction.
}

func (b *BatchMeansStatistic) FinalizeForExperiment() {
	// nothing to fold at a higher level: inner already accumulates batch
	// means directly as they close.
}

func (b *BatchMeansStatistic) Refresh() {}

var _ stat.AnalyzableStatistic = (*BatchMeansStatistic)(nil)
