// Package desim provides a discrete-event simulation (DES) kernel: a typed
// event and event-source abstraction, a time-ordered future-event set, a
// synchronous dispatch engine, and two controllers built on top of it — the
// Independent Replications method and the batch-means method — for
// steady-state output analysis of stochastic systems.
//
// # Architecture
//
// The kernel is built around an [Engine] core that owns the simulated clock,
// the future-event set, and the lifecycle event sources (begin/end of
// simulation, before/after fire). There are no separate system-init or
// system-finit sources. [ReplicationsEngine] and
// [BatchMeansEngine] specialize [Engine] with the termination semantics
// described in the package-level documentation of each type.
//
// Output analysis lives in the sibling packages
// github.com/joeycumines/go-desim/stat (plain and analyzable statistic
// abstractions) and github.com/joeycumines/go-desim/analyze (transient-phase
// detection, batch-size detection, and num-replications detection). The
// queueing-network execution model lives in
// github.com/joeycumines/go-desim/network.
//
// # Execution model
//
// The engine runs on a single logical goroutine under cooperative,
// event-driven scheduling: the dispatch loop has exclusive mutation rights
// over the future-event set, the simulated clock, and every domain object
// reachable from a handler. Handlers are non-suspending — they run to
// completion between two pops of the future-event set. There is deliberately
// no internal synchronization (no mutexes, no atomics): concurrency
// invariants come from the cooperative schedule, not from locks.
//
// # Usage
//
//	eng := desim.NewEngine()
//	src := eng.NewEventSource("tick")
//	src.Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
//	    fmt.Println("fired at", ctx.Now())
//	})
//	eng.ScheduleEvent(src, 1.0, nil)
//	eng.StopAtTime(10.0)
//	eng.Run()
package desim
