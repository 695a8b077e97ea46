package desim

import "sync/atomic"

var eventIDCounter atomic.Uint64

// nextEventID returns a fresh, monotonically increasing event id. Copying an
// [Event] must never invent a new id: it is what
// makes erasing an event from the future-event set well-defined.
func nextEventID() uint64 { return eventIDCounter.Add(1) }

// Event is a timed notification with an opaque, type-erased payload. Events
// are heap-allocated and referenced by ordinary Go pointers: the future-event
// set, the engine, and any handler that reschedules the event may all hold a
// live reference to the same *Event.
type Event struct { //nolint:govet // field order chosen for readability, not alignment
	// id is the monotonic identity assigned at creation time. Erase and
	// reschedule operate by identity, not by (Source, FireTime) equality.
	id uint64

	// Source is the [EventSource] this event was scheduled through.
	Source *EventSource

	// ScheduleTime is the simulated time at which the event was scheduled
	// (i.e. Engine.Now() at the ScheduleEvent call site).
	ScheduleTime float64

	// FireTime is the simulated time at which the event is due to fire.
	// Invariant: FireTime >= the simulated time at the moment
	// the event is popped from the future-event set.
	FireTime float64

	// Payload is an opaque value the subscriber re-interprets. nil is a
	// valid, common payload.
	Payload any

	// internal marks a lifecycle event (begin/end-of-sim,
	// before/after-fire, begin/end/maybe-end-of-replication). Internal events
	// bypass before-fire/after-fire bracketing.
	internal bool
}

// ID returns the event's monotonic identity.
func (e *Event) ID() uint64 { return e.id }

// EventListenerFunc is a callback registered on an [EventSource] via
// [EventSource.Subscribe]. It receives a read-only [EngineContext] and the
// [Event] being dispatched.
type EventListenerFunc func(ctx EngineContext, evt *Event)

var eventSourceIDCounter atomic.Uint64

// EventSource is a named, identity-comparable publisher of events, fanning
// out to zero or more subscriber callbacks ("slots"). Disabling a source
// turns every event scheduled through it into a no-op at dispatch time.
type EventSource struct {
	id      uint64
	Name    string
	slots   []EventListenerFunc
	enabled bool
}

// NewEventSource creates a new, enabled [EventSource] with the given name.
// [Engine.NewEventSource] is an equivalent convenience wrapper; the engine
// does not track the sources it creates.
func NewEventSource(name string) *EventSource {
	return &EventSource{
		id:      eventSourceIDCounter.Add(1),
		Name:    name,
		enabled: true,
	}
}

// ID returns the source's identity. Two sources are equal iff their ids are
// equal — copying a source (see [EventSource.Clone]) preserves the name but
// assigns a fresh id and an empty slot list.
func (s *EventSource) ID() uint64 { return s.id }

// Clone returns a new [EventSource] with the same name, a fresh identity, and
// no subscribers.
func (s *EventSource) Clone() *EventSource {
	return NewEventSource(s.Name)
}

// Subscribe registers a listener and returns nothing removable by value —
// callers that need removal should retain the whole [EventSource] and rebuild
// it; slots are a plain list of callbacks, not individually addressable.
func (s *EventSource) Subscribe(fn EventListenerFunc) {
	if fn == nil {
		return
	}
	s.slots = append(s.slots, fn)
}

// Enabled reports whether the source currently accepts scheduling.
func (s *EventSource) Enabled() bool { return s.enabled }

// SetEnabled enables or disables the source. Disabling it makes every event
// scheduled through it a no-op at the point the engine would otherwise fire
// it or accept new schedules.
func (s *EventSource) SetEnabled(enabled bool) { s.enabled = enabled }

// dispatch fires every subscriber slot in registration order. A disabled
// source fires no slots at all — the event still occupied a future-event
// set slot and consumed its turn on the clock, but its listeners never run.
func (s *EventSource) dispatch(ctx EngineContext, evt *Event) {
	if !s.enabled {
		return
	}
	for _, fn := range s.slots {
		fn(ctx, evt)
	}
}
