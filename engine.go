package desim

import (
	"github.com/joeycumines/go-desim/stat"
)

// EngineContext is the handle passed to every [EventListenerFunc] when its
// event fires. It exposes just enough of the engine to let handlers schedule
// follow-up events, read the simulated clock, and touch statistics —
// deliberately narrower than *Engine, so a handler cannot call Run on it
// mid-dispatch.
type EngineContext interface {
	// Now returns the current simulated time.
	Now() float64
	// ScheduleEvent schedules evt to fire at delay time units from now.
	// Returns ErrInvalidArgument-style error if delay < 0.
	ScheduleEvent(source *EventSource, delay float64, payload any) (*Event, error)
	// ScheduleEventAt schedules evt to fire at the given absolute simulated
	// time. A time earlier than Now() is logged as a warning and snapped to
	// Now().
	ScheduleEventAt(source *EventSource, fireTime float64, payload any) (*Event, error)
	// RescheduleEvent moves evt to a new absolute fire time via erase+reinsert.
	// If evt is already at or past its fire time it logs a warning and returns
	// nil without moving it; a new time earlier than Now() is snapped to Now();
	// a new time approximately equal to the current one is a no-op. Logs a
	// warning and returns ErrEventNotFound if evt is not in the future-event
	// set.
	RescheduleEvent(evt *Event, newFireTime float64) error
	// CancelEvent removes evt from the future-event set before it fires.
	// Logs a warning and returns ErrEventNotFound if evt is not pending.
	CancelEvent(evt *Event) error
	// StatisticByCategory returns the most recently registered
	// [stat.Statistic] for category, or nil if none has been registered.
	StatisticByCategory(category string) stat.Statistic
	// Logger returns the engine's configured [Logger].
	Logger() Logger
}

var _ EngineContext = (*Engine)(nil)

// Engine is the discrete-event simulation kernel: a single logical thread of
// control driving a time-ordered future-event set to completion. Grounded on
// the dispatch shape of this module's teacher's run loop (loop.go: pop next
// timer, advance the clock, invoke callbacks), stripped of every concurrency
// primitive that loop needs and this kernel does not — there is exactly one
// goroutine inside Run, so no mutexes, atomics beyond id allocation, or
// channels guard the future-event set.
type Engine struct {
	options engineOptions

	now     float64
	events  *eventList
	running bool
	stopped bool
	stopAt  float64
	hasStopAt bool

	stats map[string]stat.Statistic
	// statOrder preserves registration order for deterministic iteration
	// during monitorStatistics.
	statOrder []string
	monitors  []func(ctx EngineContext)

	beginSim *EventSource
	endSim   *EventSource
	beforeFire *EventSource
	afterFire  *EventSource
}

// NewEngine constructs a ready-to-run [Engine]. The returned engine owns two
// lifecycle event sources, [Engine.BeginSimSource] and [Engine.EndSimSource],
// fired exactly once each per Run call, and two per-event bracketing
// sources, [Engine.BeforeFireSource] and [Engine.AfterFireSource].
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		options:    resolveEngineOptions(opts),
		events:     newEventList(),
		stats:      make(map[string]stat.Statistic),
		beginSim:   NewEventSource("begin-of-simulation"),
		endSim:     NewEventSource("end-of-simulation"),
		beforeFire: NewEventSource("before-fire"),
		afterFire:  NewEventSource("after-fire"),
	}
	return e
}

// BeginSimSource returns the source fired once per Run, before any scheduled
// event is dispatched. It fires at the current simulated time: Run does not
// reset the clock, so this is 0 only on a new engine or after [Engine.Reset].
func (e *Engine) BeginSimSource() *EventSource { return e.beginSim }

// EndSimSource returns the source fired once, after the dispatch loop stops,
// whether by exhausting the future-event set or via [Engine.StopNow] /
// [Engine.StopAtTime].
func (e *Engine) EndSimSource() *EventSource { return e.endSim }

// BeforeFireSource returns the source fired immediately before every
// non-internal event's listeners run.
func (e *Engine) BeforeFireSource() *EventSource { return e.beforeFire }

// AfterFireSource returns the source fired immediately after every
// non-internal event's listeners run.
func (e *Engine) AfterFireSource() *EventSource { return e.afterFire }

// NewEventSource creates and returns a new [EventSource]; a convenience
// wrapper so callers do not need to import this package's EventSource
// constructor separately. The engine does not track created sources — only
// scheduled events, not sources, occupy space in the future-event set.
func (e *Engine) NewEventSource(name string) *EventSource {
	return NewEventSource(name)
}

func (e *Engine) Now() float64 { return e.now }

func (e *Engine) Logger() Logger { return e.options.logger }

func (e *Engine) ScheduleEvent(source *EventSource, delay float64, payload any) (*Event, error) {
	if delay < 0 {
		return nil, NewInvalidArgumentError("delay", "must be >= 0")
	}
	return e.ScheduleEventAt(source, e.now+delay, payload)
}

func (e *Engine) ScheduleEventAt(source *EventSource, fireTime float64, payload any) (*Event, error) {
	if source == nil {
		return nil, NewInvalidArgumentError("source", "must not be nil")
	}
	if fireTime < e.now {
		e.options.logger.Warn("scheduling event in the past, snapping to now",
			F("source", source.Name), F("now", e.now), F("fire_time", fireTime))
		fireTime = e.now
	}
	if !source.Enabled() {
		e.options.logger.Warn("scheduling event on disabled source", F("source", source.Name))
		return nil, nil
	}
	evt := &Event{
		id:           nextEventID(),
		Source:       source,
		ScheduleTime: e.now,
		FireTime:     fireTime,
		Payload:      payload,
	}
	e.events.push(evt)
	return evt, nil
}

func (e *Engine) scheduleInternal(source *EventSource, fireTime float64, payload any) *Event {
	evt := &Event{
		id:           nextEventID(),
		Source:       source,
		ScheduleTime: e.now,
		FireTime:     fireTime,
		Payload:      payload,
		internal:     true,
	}
	e.events.push(evt)
	return evt
}

func (e *Engine) RescheduleEvent(evt *Event, newFireTime float64) error {
	if evt == nil {
		return NewInvalidArgumentError("evt", "must not be nil")
	}
	if !DefinitelyLess(e.now, evt.FireTime) {
		// evt is already due (or past due) — nothing to reschedule.
		e.options.logger.Warn("reschedule of an event already at or past its fire time is a no-op",
			F("event_id", evt.ID()), F("fire_time", evt.FireTime), F("now", e.now))
		return nil
	}
	if newFireTime < e.now {
		e.options.logger.Warn("rescheduling event in the past, snapping to now",
			F("event_id", evt.ID()), F("now", e.now), F("new_fire_time", newFireTime))
		newFireTime = e.now
	}
	if ApproximatelyEqual(newFireTime, evt.FireTime) {
		// avoid spurious rescheduling cascades when the new time is
		// indistinguishable from the event's current fire time.
		return nil
	}
	if !e.events.rekey(evt, newFireTime) {
		e.options.logger.Warn("reschedule of event not found in future-event set", F("event_id", evt.ID()))
		return ErrEventNotFound
	}
	return nil
}

func (e *Engine) CancelEvent(evt *Event) error {
	if evt == nil {
		return NewInvalidArgumentError("evt", "must not be nil")
	}
	if !e.events.erase(evt) {
		e.options.logger.Warn("cancel of event not found in future-event set", F("event_id", evt.ID()))
		return ErrEventNotFound
	}
	return nil
}

// StopNow requests the dispatch loop stop after the current event finishes
// dispatching, without draining the rest of the future-event set.
func (e *Engine) StopNow() {
	e.stopped = true
}

// StopAtTime requests the dispatch loop stop as soon as simulated time would
// advance past t — any events already scheduled exactly at t still fire.
func (e *Engine) StopAtTime(t float64) {
	e.hasStopAt = true
	e.stopAt = t
}

// RegisterStatistic registers s for lookup by [EngineContext.StatisticByCategory]
// and for per-tick polling via [Engine.RegisterMonitor]. Registering a second
// statistic under the same category replaces the first, for lookup and for
// monitoring alike; the category keeps its original registration position.
func (e *Engine) RegisterStatistic(s stat.Statistic) {
	if _, exists := e.stats[s.Category()]; !exists {
		e.statOrder = append(e.statOrder, s.Category())
	}
	e.stats[s.Category()] = s
}

// DeregisterStatistic removes the statistic registered under category, if
// any.
func (e *Engine) DeregisterStatistic(category string) {
	delete(e.stats, category)
	for i, c := range e.statOrder {
		if c == category {
			e.statOrder = append(e.statOrder[:i], e.statOrder[i+1:]...)
			break
		}
	}
}

func (e *Engine) StatisticByCategory(category string) stat.Statistic {
	return e.stats[category]
}

// StatisticCategories returns the categories of every statistic currently
// registered, in registration order. Used by exposition layers (e.g.
// desim/metrics) that need to enumerate statistics without coupling to the
// kernel's internal bookkeeping.
func (e *Engine) StatisticCategories() []string {
	out := make([]string, len(e.statOrder))
	copy(out, e.statOrder)
	return out
}

// RegisterMonitor adds a callback invoked once per dispatch-loop iteration,
// after the current event's listeners (and before/after-fire brackets) have
// all run. Used by [ReplicationsEngine] and [BatchMeansEngine] to poll
// analyzable statistics for termination without coupling the base kernel to
// output analysis.
func (e *Engine) RegisterMonitor(fn func(ctx EngineContext)) {
	e.monitors = append(e.monitors, fn)
}

// Run drains the future-event set, advancing the simulated clock to each
// event's fire time in turn, until the set is empty or a stop condition
// ([Engine.StopNow] / [Engine.StopAtTime]) is reached. Returns
// [ErrEngineAlreadyRunning] if called while already running (including
// re-entrantly, from within a handler).
func (e *Engine) Run() error {
	if e.running {
		return ErrEngineAlreadyRunning
	}
	e.running = true
	e.stopped = false
	defer func() { e.running = false }()

	e.dispatch(e.beginSim, nil)

	for {
		if e.stopped {
			break
		}
		next := e.events.peekMin()
		if next == nil {
			break
		}
		if e.hasStopAt && DefinitelyGreaterEqual(next.FireTime, e.stopAt) && !ApproximatelyEqual(next.FireTime, e.stopAt) {
			break
		}
		e.events.popMin()
		e.now = next.FireTime

		if !next.internal {
			e.dispatch(e.beforeFire, next)
		}
		next.Source.dispatch(e, next)
		if !next.internal {
			e.dispatch(e.afterFire, next)
		}

		for _, mon := range e.monitors {
			mon(e)
			if e.stopped {
				break
			}
		}
	}

	e.dispatch(e.endSim, nil)
	return nil
}

func (e *Engine) dispatch(source *EventSource, evt *Event) {
	if evt == nil {
		evt = &Event{Source: source, ScheduleTime: e.now, FireTime: e.now, internal: true}
	}
	source.dispatch(e, evt)
}

// Reset clears the clock, the future-event set, and all registered
// statistics, returning the engine to a freshly-constructed state (new
// events, but the same lifecycle event source identities so existing
// subscriptions remain valid). [ReplicationsEngine] does not call it between
// replications: it resets the clock and future-event set itself and leaves
// statistics to their InitializeForExperiment hooks.
func (e *Engine) Reset() {
	e.now = 0
	e.stopped = false
	e.hasStopAt = false
	e.events.clear()
	for _, s := range e.stats {
		s.Reset()
	}
}
