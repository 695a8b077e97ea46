package network

import desim "github.com/joeycumines/go-desim"

// SourceNode generates customers of a single open [CustomerClass]: an
// initial arrival fires at begin-of-simulation (or when
// [Network.ResetForReplication] begins a replication), and every departure schedules the
// next arrival after an interarrival-time sample.
type SourceNode struct {
	baseNode
	classID   int
	network   *Network
	departure *desim.EventSource
}

// NewSourceNode constructs a [SourceNode] for classID, registering it with
// network.
func NewSourceNode(id int, name string, classID int, network *Network) *SourceNode {
	n := &SourceNode{
		baseNode:  newBaseNode(id, name, network.engine),
		classID:   classID,
		network:   network,
		departure: network.engine.NewEventSource(name + "-departure"),
	}
	n.arrival.Subscribe(n.onArrival)
	n.departure.Subscribe(n.onDeparture)
	return n
}

// initialArrival fires the initial customer: an immediate arrival at the
// current simulated time.
func (n *SourceNode) initialArrival(ctx desim.EngineContext) {
	_, _ = ctx.ScheduleEvent(n.arrival, 0, nil)
}

func (n *SourceNode) onArrival(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := NewCustomer(n.classID, now)
	c.CurrentNodeID = n.id
	n.stats.recordArrival()
	n.network.stats.recordArrival()
	n.network.customers[c.ID] = c
	_, _ = ctx.ScheduleEvent(n.departure, 0, c)
}

func (n *SourceNode) onDeparture(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := evt.Payload.(*Customer)
	n.stats.recordDeparture(now - c.ArrivalTime)

	n.network.send(ctx, n.id, n.classID, c)

	cls := n.network.classes[n.classID]
	delay := cls.Interarrival.Sample(n.network.rng)
	_, _ = ctx.ScheduleEvent(n.arrival, delay, nil)
}
