package network

import (
	"github.com/google/uuid"
	desim "github.com/joeycumines/go-desim"
	"github.com/joeycumines/go-desim/numeric"
)

// Network owns id-indexed arenas of [Node]s, [CustomerClass]es, and
// in-flight [Customer]s, plus the [RoutingStrategy] governing inter-node
// hops and network-scoped statistics.
type Network struct {
	engine *desim.Engine
	rng    numeric.RNG

	nodes     map[int]Node
	classes   map[int]*CustomerClass
	customers map[uuid.UUID]*Customer

	routing RoutingStrategy
	stats   *NodeStats

	startTime float64
	endTime   float64
	finalized bool
}

// NewNetwork constructs an empty [Network] wired to eng's lifecycle sources
// and drawing routing decisions from rng. Nodes and classes are registered
// via [Network.AddNode] / [Network.AddClass] before [desim.Engine.Run].
func NewNetwork(eng *desim.Engine, rng numeric.RNG, routing RoutingStrategy) *Network {
	n := &Network{
		engine:    eng,
		rng:       rng,
		nodes:     make(map[int]Node),
		classes:   make(map[int]*CustomerClass),
		customers: make(map[uuid.UUID]*Customer),
		routing:   routing,
		stats:     newNodeStats(),
	}
	eng.BeginSimSource().Subscribe(n.onBeginSim)
	eng.EndSimSource().Subscribe(n.onEndSim)
	return n
}

// Engine returns the engine this network is attached to.
func (n *Network) Engine() *desim.Engine { return n.engine }

// AddNode registers node under its own id. Registering a second node under
// the same id replaces the first.
func (n *Network) AddNode(node Node) { n.nodes[node.ID()] = node }

// AddClass registers cls under its own id.
func (n *Network) AddClass(cls *CustomerClass) { n.classes[cls.ID] = cls }

// Node looks up a registered node by id, or nil if none is registered.
func (n *Network) Node(id int) Node { return n.nodes[id] }

// Nodes returns every registered node, in no particular order. Used by
// exposition layers (e.g. desim/metrics) that enumerate per-node
// statistics.
func (n *Network) Nodes() []Node {
	out := make([]Node, 0, len(n.nodes))
	for _, node := range n.nodes {
		out = append(out, node)
	}
	return out
}

// Class looks up a registered customer class by id, or nil if none is
// registered.
func (n *Network) Class(id int) *CustomerClass { return n.classes[id] }

// Stats returns the network-scoped statistics (arrivals, departures,
// discards, response time) accumulated across every source/sink boundary
// crossing.
func (n *Network) Stats() *NodeStats { return n.stats }

// onBeginSim fires every open class's initial arrival at its source node(s).
func (n *Network) onBeginSim(ctx desim.EngineContext, evt *desim.Event) {
	n.begin(ctx)
}

// begin stamps startTime and fires every open class's initial arrival.
func (n *Network) begin(ctx desim.EngineContext) {
	n.startTime = ctx.Now()
	n.finalized = false
	for _, node := range n.nodes {
		if src, ok := node.(*SourceNode); ok {
			src.initialArrival(ctx)
		}
	}
}

// ResetForReplication clears all in-flight customers and per-node
// statistics, then begins a fresh observation window — the network's
// counterpart to [desim.Engine.Reset], for callers driving the network
// under a [desim.ReplicationsEngine], whose begin-of-replication event is
// distinct from [desim.Engine.BeginSimSource] and so is never observed by
// the subscription installed in [NewNetwork]. Subscribe this to
// [desim.ReplicationsEngine.BeginReplicationSource].
func (n *Network) ResetForReplication(ctx desim.EngineContext) {
	now := ctx.Now()
	n.customers = make(map[uuid.UUID]*Customer)
	n.stats.reset(now)
	for _, node := range n.nodes {
		node.Stats().reset(now)
		if st, ok := node.(*QueueingStation); ok {
			if q, ok := st.queue.(*FIFOQueue); ok {
				q.items = nil
			}
			switch s := st.service.(type) {
			case *LoadIndependentStrategy:
				s.inProgress = nil
			case *ProcessorSharingStrategy:
				s.inProgress = nil
			case *RoundRobinStrategy:
				s.queue = nil
			}
		}
	}
	n.begin(ctx)
}

// onEndSim finalizes time-weighted statistics (utilization, queue length)
// across the whole network as of the simulation's end time.
func (n *Network) onEndSim(ctx desim.EngineContext, evt *desim.Event) {
	n.endTime = ctx.Now()
	n.finalized = true
	n.stats.finalize(n.endTime)
	for _, node := range n.nodes {
		node.Stats().finalize(n.endTime)
	}
}

// ElapsedTime returns the simulated-time span the network has been running,
// valid once end-of-simulation has fired.
func (n *Network) ElapsedTime() float64 { return n.endTime - n.startTime }

// send routes c away from (srcNodeID, srcClassID) to its destination and
// delivers it there with zero simulated delay — a logic error if the
// routing strategy has no route, or the destination node/class is
// unregistered.
func (n *Network) send(ctx desim.EngineContext, srcNodeID, srcClassID int, c *Customer) {
	dst, err := n.routing.Route(n.rng, srcNodeID, srcClassID)
	if err != nil {
		n.engine.Logger().Error("routing failure", desim.F("error", err.Error()), desim.F("node", srcNodeID))
		return
	}
	dstNode, ok := n.nodes[dst.NodeID]
	if !ok {
		n.engine.Logger().Error("routed to unregistered node", desim.F("node", dst.NodeID))
		return
	}
	c.ClassID = dst.ClassID
	_, _ = ctx.ScheduleEvent(dstNode.arrivalSource(), 0, c)
}
