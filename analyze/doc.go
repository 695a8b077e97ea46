// Package analyze implements sequential output-analysis detectors — the
// transient-phase (warm-up) detector, the batch-size detector, and the
// num-replications detectors — together with the replications-flavoured and
// batch-means-flavoured [stat.AnalyzableStatistic] implementations built on
// top of them.
package analyze
