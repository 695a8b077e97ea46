package network

import desim "github.com/joeycumines/go-desim"

// SinkNode terminates customers: on arrival, it records the network-wide
// departure and drops the reference.
type SinkNode struct {
	baseNode
	network *Network

	onSojournTime func(sojournTime float64)
}

// NewSinkNode constructs a [SinkNode] registered with network.
func NewSinkNode(id int, name string, network *Network) *SinkNode {
	n := &SinkNode{baseNode: newBaseNode(id, name, network.engine), network: network}
	n.arrival.Subscribe(n.onArrival)
	return n
}

// OnSojournTime registers fn to be called with each customer's total
// network sojourn time (sink arrival time minus network arrival time) as it
// leaves the system. Used to feed per-sample observations into an external
// [stat.AnalyzableStatistic].
func (n *SinkNode) OnSojournTime(fn func(sojournTime float64)) {
	n.onSojournTime = fn
}

func (n *SinkNode) onArrival(ctx desim.EngineContext, evt *desim.Event) {
	now := ctx.Now()
	c := evt.Payload.(*Customer)
	n.stats.recordArrival()
	n.stats.recordDeparture(now - c.ArrivalTime)
	sojourn := now - c.NetworkArrivalTime
	n.network.stats.recordDeparture(sojourn)
	if n.onSojournTime != nil {
		n.onSojournTime(sojourn)
	}
	delete(n.network.customers, c.ID)
}
