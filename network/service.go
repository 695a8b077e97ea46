package network

import (
	desim "github.com/joeycumines/go-desim"
)

// serviceEntry tracks one customer's in-progress service at a station: the
// rate (capacity share) applied since segmentStart, and the event currently
// scheduled to notify the strategy of a state change (completion or, for
// round-robin, quantum expiry).
type serviceEntry struct {
	customer       *Customer
	segmentStart   float64
	rate           float64
	evt            *desim.Event
	quantumMaxFire float64 // round-robin only
}

// accrue folds the work delivered between segmentStart and now (at the
// entry's current rate) into the customer's CompletedWork, then resets
// segmentStart to now.
func (e *serviceEntry) accrue(now float64) {
	e.customer.CompletedWork += (now - e.segmentStart) * e.rate
	e.segmentStart = now
}

func (e *serviceEntry) residual() float64 {
	r := e.customer.ServiceDemand - e.customer.CompletedWork
	if r < 0 {
		r = 0
	}
	return r
}

// ServiceStrategy governs how a [QueueingStation]'s server(s) process
// in-progress customers: load-independent (FCFS multi-server),
// processor-sharing, and round-robin each implement this differently.
type ServiceStrategy interface {
	// Bind wires the strategy to the completion event source it schedules
	// on, called once by the owning station at construction.
	Bind(completionSource *desim.EventSource)
	// HasCapacity reports whether another customer can begin service now.
	HasCapacity() bool
	// Admit begins service for c at simulated time now.
	Admit(ctx desim.EngineContext, now float64, c *Customer)
	// OnEvent handles the strategy's own completion/quantum event firing.
	// Returns the customer whose service is now fully complete, or nil if
	// the event represents an internal state transition (e.g. an RR quantum
	// rotation) with no customer ready to depart yet.
	OnEvent(ctx desim.EngineContext, now float64, evt *desim.Event) *Customer
	// SetCapacityMultiplier updates the server's capacity multiplier,
	// rescheduling in-progress completions as needed.
	SetCapacityMultiplier(ctx desim.EngineContext, now float64, multiplier float64)
	InProgressCount() int
}

// LoadIndependentStrategy is FCFS multi-server: up to Servers concurrent
// customers, each on its own dedicated server running at CapacityMultiplier.
type LoadIndependentStrategy struct {
	Servers            int
	CapacityMultiplier float64

	completionSource *desim.EventSource
	inProgress       []*serviceEntry
}

// NewLoadIndependentStrategy constructs a [LoadIndependentStrategy] with the
// given server count and initial capacity multiplier (typically 1.0).
func NewLoadIndependentStrategy(servers int, capacityMultiplier float64) *LoadIndependentStrategy {
	return &LoadIndependentStrategy{Servers: servers, CapacityMultiplier: capacityMultiplier}
}

func (s *LoadIndependentStrategy) Bind(src *desim.EventSource) { s.completionSource = src }

func (s *LoadIndependentStrategy) HasCapacity() bool { return len(s.inProgress) < s.Servers }

func (s *LoadIndependentStrategy) InProgressCount() int { return len(s.inProgress) }

func (s *LoadIndependentStrategy) Admit(ctx desim.EngineContext, now float64, c *Customer) {
	e := &serviceEntry{customer: c, segmentStart: now, rate: s.CapacityMultiplier}
	evt, _ := ctx.ScheduleEvent(s.completionSource, e.residual()/e.rate, e)
	e.evt = evt
	s.inProgress = append(s.inProgress, e)
}

func (s *LoadIndependentStrategy) OnEvent(ctx desim.EngineContext, now float64, evt *desim.Event) *Customer {
	for i, e := range s.inProgress {
		if e.evt == evt {
			e.accrue(now)
			s.inProgress = append(s.inProgress[:i], s.inProgress[i+1:]...)
			return e.customer
		}
	}
	return nil
}

func (s *LoadIndependentStrategy) SetCapacityMultiplier(ctx desim.EngineContext, now float64, multiplier float64) {
	if multiplier == s.CapacityMultiplier {
		return
	}
	for _, e := range s.inProgress {
		e.accrue(now)
		_ = ctx.CancelEvent(e.evt)
		e.rate = multiplier
		evt, _ := ctx.ScheduleEvent(s.completionSource, e.residual()/e.rate, e)
		e.evt = evt
	}
	s.CapacityMultiplier = multiplier
}

// ProcessorSharingStrategy spreads capacity equally across every in-progress
// customer on Servers parallel servers: each receives
// CapacityMultiplier / (len(inProgress) * Servers).
type ProcessorSharingStrategy struct {
	Servers            int
	CapacityMultiplier float64

	completionSource *desim.EventSource
	inProgress       []*serviceEntry
}

// NewProcessorSharingStrategy constructs a [ProcessorSharingStrategy].
func NewProcessorSharingStrategy(servers int, capacityMultiplier float64) *ProcessorSharingStrategy {
	return &ProcessorSharingStrategy{Servers: servers, CapacityMultiplier: capacityMultiplier}
}

func (s *ProcessorSharingStrategy) Bind(src *desim.EventSource) { s.completionSource = src }

func (s *ProcessorSharingStrategy) HasCapacity() bool { return true }

func (s *ProcessorSharingStrategy) InProgressCount() int { return len(s.inProgress) }

func (s *ProcessorSharingStrategy) Admit(ctx desim.EngineContext, now float64, c *Customer) {
	e := &serviceEntry{customer: c, segmentStart: now}
	s.inProgress = append(s.inProgress, e)
	s.rebalance(ctx, now)
}

func (s *ProcessorSharingStrategy) OnEvent(ctx desim.EngineContext, now float64, evt *desim.Event) *Customer {
	for i, e := range s.inProgress {
		if e.evt == evt {
			e.accrue(now)
			s.inProgress = append(s.inProgress[:i], s.inProgress[i+1:]...)
			s.rebalance(ctx, now)
			return e.customer
		}
	}
	return nil
}

func (s *ProcessorSharingStrategy) SetCapacityMultiplier(ctx desim.EngineContext, now float64, multiplier float64) {
	s.CapacityMultiplier = multiplier
	s.rebalance(ctx, now)
}

// rebalance accrues every in-progress customer's completed work at its old
// rate, recomputes the per-customer share, and reschedules every completion
// event at the new rate.
func (s *ProcessorSharingStrategy) rebalance(ctx desim.EngineContext, now float64) {
	n := len(s.inProgress)
	if n == 0 {
		return
	}
	perCustomerRate := s.CapacityMultiplier / (float64(n) * float64(s.Servers))
	for _, e := range s.inProgress {
		if e.evt != nil {
			e.accrue(now)
			_ = ctx.CancelEvent(e.evt)
		} else {
			e.segmentStart = now
		}
		e.rate = perCustomerRate
		evt, _ := ctx.ScheduleEvent(s.completionSource, e.residual()/e.rate, e)
		e.evt = evt
	}
}

// RoundRobinStrategy serves one server with a FIFO of in-progress customers;
// the head owns the CPU for a quantum of length Quantum (or the customer's
// residual service time, if shorter), then rotates to the tail if unfinished.
type RoundRobinStrategy struct {
	Quantum            float64
	CapacityMultiplier float64

	completionSource *desim.EventSource
	queue            []*serviceEntry // queue[0] is the head (owns the CPU)
}

// NewRoundRobinStrategy constructs a [RoundRobinStrategy] with quantum q and
// initial capacity multiplier (typically 1.0).
func NewRoundRobinStrategy(quantum, capacityMultiplier float64) *RoundRobinStrategy {
	return &RoundRobinStrategy{Quantum: quantum, CapacityMultiplier: capacityMultiplier}
}

func (s *RoundRobinStrategy) Bind(src *desim.EventSource) { s.completionSource = src }

func (s *RoundRobinStrategy) HasCapacity() bool { return true }

func (s *RoundRobinStrategy) InProgressCount() int { return len(s.queue) }

func (s *RoundRobinStrategy) Admit(ctx desim.EngineContext, now float64, c *Customer) {
	e := &serviceEntry{customer: c, segmentStart: now, rate: s.CapacityMultiplier}
	wasEmpty := len(s.queue) == 0
	s.queue = append(s.queue, e)
	if wasEmpty {
		s.scheduleHeadQuantum(ctx, now)
	}
}

// scheduleHeadQuantum schedules the quantum-expiry event for the current
// head, capped at its residual service time.
func (s *RoundRobinStrategy) scheduleHeadQuantum(ctx desim.EngineContext, now float64) {
	head := s.queue[0]
	head.segmentStart = now
	quantumLen := head.residual()
	if quantumLen > s.Quantum {
		quantumLen = s.Quantum
	}
	head.quantumMaxFire = now + s.Quantum
	fireAt := now + quantumLen/head.rate
	if fireAt > head.quantumMaxFire {
		fireAt = head.quantumMaxFire
	}
	evt, _ := ctx.ScheduleEvent(s.completionSource, fireAt-now, head)
	head.evt = evt
}

func (s *RoundRobinStrategy) OnEvent(ctx desim.EngineContext, now float64, evt *desim.Event) *Customer {
	if len(s.queue) == 0 || s.queue[0].evt != evt {
		return nil
	}
	head := s.queue[0]
	head.accrue(now)
	s.queue = s.queue[1:]

	if head.residual() <= 1e-9 {
		if len(s.queue) > 0 {
			s.scheduleHeadQuantum(ctx, now)
		}
		return head.customer
	}

	s.queue = append(s.queue, head)
	if len(s.queue) > 0 {
		s.scheduleHeadQuantum(ctx, now)
	}
	return nil
}

func (s *RoundRobinStrategy) SetCapacityMultiplier(ctx desim.EngineContext, now float64, multiplier float64) {
	s.CapacityMultiplier = multiplier
	if len(s.queue) == 0 {
		return
	}
	head := s.queue[0]
	head.accrue(now)
	oldFireTime := head.evt.FireTime
	head.rate = multiplier
	quantumLen := head.residual()
	remainingQuantum := head.quantumMaxFire - now
	if quantumLen > remainingQuantum {
		quantumLen = remainingQuantum
	}
	newFire := now + quantumLen/head.rate
	if newFire > head.quantumMaxFire {
		newFire = head.quantumMaxFire
	}
	if desim.ApproximatelyEqual(newFire, oldFireTime) {
		return
	}
	_ = ctx.CancelEvent(head.evt)
	evt, _ := ctx.ScheduleEvent(s.completionSource, newFire-now, head)
	head.evt = evt
}

var (
	_ ServiceStrategy = (*LoadIndependentStrategy)(nil)
	_ ServiceStrategy = (*ProcessorSharingStrategy)(nil)
	_ ServiceStrategy = (*RoundRobinStrategy)(nil)
)
