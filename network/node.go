package network

import desim "github.com/joeycumines/go-desim"

// Node is a queueing-network vertex: source, sink, delay, or queueing
// station. Every node type records arrivals/departures via [NodeStats] and
// participates in routing through the owning [Network]'s internal dispatch.
type Node interface {
	ID() int
	Name() string
	Stats() *NodeStats
	// arrivalSource is the event source a customer's arrival at this node is
	// scheduled on.
	arrivalSource() *desim.EventSource
}

var (
	_ Node = (*SourceNode)(nil)
	_ Node = (*SinkNode)(nil)
	_ Node = (*DelayNode)(nil)
	_ Node = (*QueueingStation)(nil)
)

type baseNode struct {
	id    int
	name  string
	stats *NodeStats

	arrival *desim.EventSource
}

func newBaseNode(id int, name string, eng *desim.Engine) baseNode {
	return baseNode{
		id:      id,
		name:    name,
		stats:   newNodeStats(),
		arrival: eng.NewEventSource(name + "-arrival"),
	}
}

func (n *baseNode) ID() int                         { return n.id }
func (n *baseNode) Name() string                     { return n.name }
func (n *baseNode) Stats() *NodeStats                { return n.stats }
func (n *baseNode) arrivalSource() *desim.EventSource { return n.arrival }
