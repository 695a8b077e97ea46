// Package stat implements the observation-collecting statistic abstractions
// used throughout the simulation kernel and output-analysis packages —
// arithmetic mean, weighted mean, and quantile estimators, plus the
// [AnalyzableStatistic] extension that adds chunked (replication- or
// batch-scoped) termination semantics. Concrete analyzable statistics
// (replications-flavoured and batch-means-flavoured) live in the sibling
// package github.com/joeycumines/go-desim/analyze, which depends on this
// package.
package stat
