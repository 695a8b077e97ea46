// Package metrics exposes engine, statistic, and queueing-network state as
// Prometheus metrics, for long-running batch-means processes that want a
// live view of convergence without polling the simulation API directly.
//
// Unlike counters incremented imperatively on the hot dispatch path, every
// metric here is computed on demand from the live [desim.Engine],
// [stat.Statistic], and [network.Network] it wraps — so registering a
// [Collector] never changes what the simulation itself records.
package metrics
