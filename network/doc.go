// Package network implements the queueing-network execution model: nodes
// (source, sink, delay, queueing station), customer classes (open and
// closed), service/queueing/routing strategies, and the node- and
// network-scoped statistics that accumulate as customers flow through it.
//
// A [Network] owns id-indexed arenas of [Node]s, [CustomerClass]es, and
// in-flight [Customer]s — relationships between them are ids, not pointers,
// matching the "cyclic references become id-indexed arenas" design used
// throughout this module. The network drives itself off the same
// [github.com/joeycumines/go-desim.Engine] lifecycle sources the rest of the
// kernel uses: it subscribes to begin-of-simulation to emit each open
// class's initial arrival, and to end-of-simulation to finalize time-weighted
// statistics such as utilization.
package network
