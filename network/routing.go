package network

import (
	"fmt"

	"github.com/joeycumines/go-desim/numeric"
)

// Destination is a (node, class) pair a customer is routed to.
type Destination struct {
	NodeID  int
	ClassID int
}

// RoutingStrategy decides the next (node, class) for a customer departing
// (srcNodeID, srcClassID).
type RoutingStrategy interface {
	Route(rng numeric.RNG, srcNodeID, srcClassID int) (Destination, error)
}

type routeKey struct {
	nodeID, classID int
}

// DeterministicRouting maps each (src node, src class) to exactly one
// destination. A lookup miss is a logic error: deterministic routing tables
// are expected to be exhaustive for every class that visits the node.
type DeterministicRouting struct {
	routes map[routeKey]Destination
}

// NewDeterministicRouting constructs an empty [DeterministicRouting] table.
func NewDeterministicRouting() *DeterministicRouting {
	return &DeterministicRouting{routes: make(map[routeKey]Destination)}
}

// AddRoute registers the single destination for (srcNodeID, srcClassID).
func (d *DeterministicRouting) AddRoute(srcNodeID, srcClassID int, dst Destination) {
	d.routes[routeKey{srcNodeID, srcClassID}] = dst
}

func (d *DeterministicRouting) Route(_ numeric.RNG, srcNodeID, srcClassID int) (Destination, error) {
	dst, ok := d.routes[routeKey{srcNodeID, srcClassID}]
	if !ok {
		return Destination{}, fmt.Errorf("network: no deterministic route registered for node %d class %d", srcNodeID, srcClassID)
	}
	return dst, nil
}

// ProbabilisticRouting maps each (src node, src class) to a discrete
// distribution over destinations. The distribution table is lazily rebuilt
// the first time it is needed after a route is added.
type ProbabilisticRouting struct {
	weighted map[routeKey][]weightedDestination
	built    map[routeKey]numeric.Discrete
	destsOf  map[routeKey][]Destination
}

type weightedDestination struct {
	dst    Destination
	weight float64
}

// NewProbabilisticRouting constructs an empty [ProbabilisticRouting] table.
func NewProbabilisticRouting() *ProbabilisticRouting {
	return &ProbabilisticRouting{
		weighted: make(map[routeKey][]weightedDestination),
		built:    make(map[routeKey]numeric.Discrete),
		destsOf:  make(map[routeKey][]Destination),
	}
}

// AddRoute adds dst as a candidate destination from (srcNodeID, srcClassID)
// with the given (not necessarily normalized) weight. Invalidates any
// previously built distribution for this key.
func (p *ProbabilisticRouting) AddRoute(srcNodeID, srcClassID int, dst Destination, weight float64) {
	key := routeKey{srcNodeID, srcClassID}
	p.weighted[key] = append(p.weighted[key], weightedDestination{dst: dst, weight: weight})
	delete(p.built, key)
}

func (p *ProbabilisticRouting) Route(rng numeric.RNG, srcNodeID, srcClassID int) (Destination, error) {
	key := routeKey{srcNodeID, srcClassID}
	dist, ok := p.built[key]
	if !ok {
		candidates, ok := p.weighted[key]
		if !ok || len(candidates) == 0 {
			return Destination{}, fmt.Errorf("network: no probabilistic route registered for node %d class %d", srcNodeID, srcClassID)
		}
		values := make([]float64, len(candidates))
		weights := make([]float64, len(candidates))
		dests := make([]Destination, len(candidates))
		for i, c := range candidates {
			values[i] = float64(i)
			weights[i] = c.weight
			dests[i] = c.dst
		}
		dist = numeric.NewDiscrete(values, weights)
		p.built[key] = dist
		p.destsOf[key] = dests
	}
	idx := int(dist.Sample(rng))
	return p.destsOf[key][idx], nil
}

var (
	_ RoutingStrategy = (*DeterministicRouting)(nil)
	_ RoutingStrategy = (*ProbabilisticRouting)(nil)
)
