package desim

import (
	"github.com/joeycumines/go-desim/stat"
)

// ReplicationsEngine specializes [Engine] with the Independent Replications
// method: repeated, independent runs of the simulator, each reset to
// simulated time 0, with per-replication lifecycle events bracketing the
// inner dispatch loop and global termination gated by a floor on the number
// of replications performed.
type ReplicationsEngine struct {
	*Engine
	options replicationsOptions

	beginRep    *EventSource
	maybeEndRep *EventSource
	endRep      *EventSource

	replicationEnded   bool
	minDurationReached bool
	numReplications    int
}

// NewReplicationsEngine constructs a [ReplicationsEngine].
func NewReplicationsEngine(engineOpts []EngineOption, repOpts ...ReplicationsEngineOption) *ReplicationsEngine {
	r := &ReplicationsEngine{
		Engine:      NewEngine(engineOpts...),
		options:     resolveReplicationsOptions(repOpts),
		beginRep:    NewEventSource("begin-of-replication"),
		maybeEndRep: NewEventSource("maybe-end-of-replication"),
		endRep:      NewEventSource("end-of-replication"),
	}
	return r
}

// BeginReplicationSource fires once per replication, immediately after the
// clock resets to 0. Payload is the 1-based replication number.
func (r *ReplicationsEngine) BeginReplicationSource() *EventSource { return r.beginRep }

// MaybeEndReplicationSource fires at now + min_replication_duration; whether
// it actually ends the replication depends on whether monitored statistics
// report their chunk complete.
func (r *ReplicationsEngine) MaybeEndReplicationSource() *EventSource { return r.maybeEndRep }

// EndReplicationSource fires once per replication, after the engine's
// end-of-simulation source.
// Payload is the 1-based replication number.
func (r *ReplicationsEngine) EndReplicationSource() *EventSource { return r.endRep }

// NumReplications returns the number of replications completed so far.
func (r *ReplicationsEngine) NumReplications() int { return r.numReplications }

// Run drives replications to completion: each replication runs Engine's
// dispatch loop (reset, begin-of-replication, inner loop gated on
// end-of-replication or empty event list, end-of-simulation, end-of-replication),
// polling every registered analyzable statistic via monitor_statistics_in_replication,
// until min_num_replications is satisfied and every enabled statistic (if
// any) reports target precision reached.
func (r *ReplicationsEngine) Run() error {
	if r.Engine.running {
		return ErrEngineAlreadyRunning
	}

	for {
		if err := r.runOneReplication(); err != nil {
			return err
		}
		r.numReplications++

		for _, cat := range r.Engine.statOrder {
			if as, ok := r.Engine.stats[cat].(stat.AnalyzableStatistic); ok {
				as.FinalizeForExperiment()
			}
		}

		if r.numReplications < r.options.minNumReplications {
			continue
		}
		if len(r.Engine.statOrder) == 0 {
			break
		}
		if r.allStatisticsConverged() {
			break
		}
	}
	return nil
}

func (r *ReplicationsEngine) allStatisticsConverged() bool {
	for _, cat := range r.Engine.statOrder {
		s := r.Engine.stats[cat]
		if !s.Enabled() {
			continue
		}
		as, ok := s.(stat.AnalyzableStatistic)
		if !ok || !as.TargetPrecisionReached() {
			return false
		}
	}
	return true
}

func (r *ReplicationsEngine) runOneReplication() error {
	r.Engine.running = true
	defer func() { r.Engine.running = false }()

	r.Engine.now = 0
	r.Engine.events.clear()
	r.Engine.stopped = false
	r.Engine.hasStopAt = false
	r.replicationEnded = false
	r.minDurationReached = r.options.minReplicationDuration <= 0

	for _, cat := range r.Engine.statOrder {
		if as, ok := r.Engine.stats[cat].(stat.AnalyzableStatistic); ok {
			as.InitializeForExperiment()
		}
	}

	r.Engine.dispatch(r.beginRep, &Event{Payload: r.numReplications + 1, internal: true})
	if r.options.minReplicationDuration > 0 {
		r.Engine.scheduleInternal(r.maybeEndRep, r.options.minReplicationDuration, nil)
	}

	for {
		if r.replicationEnded {
			break
		}
		next := r.Engine.events.peekMin()
		if next == nil {
			break
		}
		r.Engine.events.popMin()
		r.Engine.now = next.FireTime

		if !next.internal {
			r.Engine.dispatch(r.Engine.beforeFire, next)
		}
		next.Source.dispatch(r.Engine, next)
		if next.Source == r.maybeEndRep {
			r.onMaybeEndReplication()
		}
		if !next.internal {
			r.Engine.dispatch(r.Engine.afterFire, next)
		}

		r.monitorStatisticsInReplication()

		for _, mon := range r.Engine.monitors {
			mon(r.Engine)
		}
	}

	r.Engine.dispatch(r.Engine.endSim, nil) // system-finit equivalent for this replication
	r.Engine.dispatch(r.endRep, &Event{Payload: r.numReplications + 1, internal: true})
	return nil
}

func (r *ReplicationsEngine) onMaybeEndReplication() {
	r.minDurationReached = true
	if len(r.Engine.statOrder) == 0 {
		r.replicationEnded = true
	}
}

func (r *ReplicationsEngine) monitorStatisticsInReplication() {
	if !r.minDurationReached {
		return
	}
	if len(r.Engine.statOrder) == 0 {
		return
	}
	allComplete := true
	for _, cat := range r.Engine.statOrder {
		as, ok := r.Engine.stats[cat].(stat.AnalyzableStatistic)
		if !ok {
			continue
		}
		as.Refresh()
		if !as.Enabled() {
			continue
		}
		if !as.ObservationComplete() {
			allComplete = false
		}
	}
	if allComplete {
		r.replicationEnded = true
	}
}
