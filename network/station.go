package network

import desim "github.com/joeycumines/go-desim"

// QueueingStation admits arrivals into a [QueueingStrategy] and, whenever
// the [ServiceStrategy] has spare capacity, pulls the next customer into
// service.
type QueueingStation struct {
	baseNode
	network  *Network
	queue    QueueingStrategy
	service  ServiceStrategy
	completion *desim.EventSource
	departure  *desim.EventSource

	onResponseTime func(responseTime float64)
}

// OnResponseTime registers fn to be called with each customer's
// station-local response time (departure time minus this station's
// admission time) as it departs. Used to feed per-sample observations into
// an external [stat.AnalyzableStatistic] without re-deriving them from the
// running mean [NodeStats] keeps.
func (n *QueueingStation) OnResponseTime(fn func(responseTime float64)) {
	n.onResponseTime = fn
}

// NewQueueingStation constructs a [QueueingStation] registered with network,
// using queue for admission/ordering and service for server behaviour.
func NewQueueingStation(id int, name string, network *Network, queue QueueingStrategy, service ServiceStrategy) *QueueingStation {
	n := &QueueingStation{
		baseNode:   newBaseNode(id, name, network.engine),
		network:    network,
		queue:      queue,
		service:    service,
		completion: network.engine.NewEventSource(name + "-completion"),
		departure:  network.engine.NewEventSource(name + "-departure"),
	}
	n.service.Bind(n.completion)
	n.arrival.Subscribe(n.onArrival)
	n.completion.Subscribe(n.onCompletion)
	n.departure.Subscribe(n.onDeparture)
	return n
}

func (n *QueueingStation) onArrival(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := evt.Payload.(*Customer)
	n.stats.recordArrival()

	if !n.queue.CanPush(n.queue.Len()) {
		n.stats.recordDiscard()
		n.network.stats.recordDiscard()
		return
	}

	c.ArrivalTime = now
	c.CurrentNodeID = n.id
	c.CompletedWork = 0
	cls := n.network.classes[c.ClassID]
	c.ServiceDemand = cls.ServiceDistribution(n.id).Sample(n.network.rng)

	n.queue.Push(c)
	n.stats.trackQueueLength(now, n.queue.Len())
	n.serveNext(ctx, now)
}

// serveNext pulls customers out of the queue into the service strategy
// while it has spare capacity.
func (n *QueueingStation) serveNext(ctx desim.EngineContext, now float64) {
	for n.service.HasCapacity() {
		c := n.queue.Pop()
		if c == nil {
			return
		}
		n.stats.trackQueueLength(now, n.queue.Len())
		if n.service.InProgressCount() == 0 {
			n.stats.setBusy(now, true)
		}
		n.service.Admit(ctx, now, c)
	}
}

func (n *QueueingStation) onCompletion(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := n.service.OnEvent(ctx, now, evt)
	if c == nil {
		// internal state transition (round-robin quantum rotation); no
		// customer finished service.
		return
	}
	if n.service.InProgressCount() == 0 {
		n.stats.setBusy(now, false)
	}
	_, _ = ctx.ScheduleEvent(n.departure, 0, c)
	n.serveNext(ctx, now)
}

func (n *QueueingStation) onDeparture(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := evt.Payload.(*Customer)
	responseTime := now - c.ArrivalTime
	n.stats.recordDeparture(responseTime)
	if n.onResponseTime != nil {
		n.onResponseTime(responseTime)
	}
	n.network.send(ctx, n.id, c.ClassID, c)
}

// SetCapacityMultiplier forwards a share/multiplier change to the service
// strategy, which reschedules in-progress completions as needed.
func (n *QueueingStation) SetCapacityMultiplier(ctx desim.EngineContext, multiplier float64) {
	n.service.SetCapacityMultiplier(ctx, ctx.Now(), multiplier)
}
