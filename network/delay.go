package network

import desim "github.com/joeycumines/go-desim"

// DelayNode is an infinite-server think-time/delay station: every arrival
// begins service immediately (no queueing), for a duration sampled from the
// visiting class's service distribution, scaled by CapacityMultiplier.
type DelayNode struct {
	baseNode
	network            *Network
	completion         *desim.EventSource
	departure          *desim.EventSource
	CapacityMultiplier float64
}

// NewDelayNode constructs a [DelayNode] registered with network.
func NewDelayNode(id int, name string, network *Network) *DelayNode {
	n := &DelayNode{
		baseNode:           newBaseNode(id, name, network.engine),
		network:            network,
		completion:         network.engine.NewEventSource(name + "-completion"),
		departure:          network.engine.NewEventSource(name + "-departure"),
		CapacityMultiplier: 1,
	}
	n.arrival.Subscribe(n.onArrival)
	n.completion.Subscribe(n.onCompletion)
	n.departure.Subscribe(n.onDeparture)
	return n
}

func (n *DelayNode) onArrival(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := evt.Payload.(*Customer)
	c.ArrivalTime = now
	c.CurrentNodeID = n.id
	c.CompletedWork = 0
	n.stats.recordArrival()

	cls := n.network.classes[c.ClassID]
	dist := cls.ServiceDistribution(n.id)
	demand := dist.Sample(n.network.rng)
	c.ServiceDemand = demand
	_, _ = ctx.ScheduleEvent(n.completion, demand/n.CapacityMultiplier, c)
}

func (n *DelayNode) onCompletion(ctx desim.EngineContext, evt *desim.Event) {
	c := evt.Payload.(*Customer)
	_, _ = ctx.ScheduleEvent(n.departure, 0, c)
}

func (n *DelayNode) onDeparture(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := evt.Payload.(*Customer)
	n.stats.recordDeparture(now - c.ArrivalTime)
	n.network.send(ctx, n.id, c.ClassID, c)
}
