package network

import "github.com/joeycumines/go-desim/numeric"

// CustomerClass describes a population of customers sharing an arrival
// process (for open classes) and a per-node service-demand distribution.
type CustomerClass struct {
	ID   int
	Name string
	// Open classes generate their own arrivals at a source node via
	// Interarrival. Closed classes have a nil Interarrival and carry no
	// population size; the network does not create customers for them.
	Open         bool
	Interarrival numeric.Distribution

	serviceDemand map[int]numeric.Distribution // node id -> demand distribution
}

// NewCustomerClass constructs an open [CustomerClass] with the given
// interarrival-time distribution.
func NewCustomerClass(id int, name string, interarrival numeric.Distribution) *CustomerClass {
	return &CustomerClass{
		ID:            id,
		Name:          name,
		Open:          true,
		Interarrival:  interarrival,
		serviceDemand: make(map[int]numeric.Distribution),
	}
}

// NewClosedCustomerClass constructs a closed [CustomerClass]: no
// interarrival process. It takes no population size, and no customers are
// seeded for it.
func NewClosedCustomerClass(id int, name string) *CustomerClass {
	return &CustomerClass{
		ID:            id,
		Name:          name,
		Open:          false,
		serviceDemand: make(map[int]numeric.Distribution),
	}
}

// SetServiceDistribution registers the service-demand distribution this
// class draws from when visiting nodeID.
func (c *CustomerClass) SetServiceDistribution(nodeID int, dist numeric.Distribution) {
	c.serviceDemand[nodeID] = dist
}

// ServiceDistribution returns the service-demand distribution for nodeID, or
// nil if none was registered — a [LogicError] condition the caller should
// surface, since a queueing node cannot serve a class it was never given a
// demand distribution for.
func (c *CustomerClass) ServiceDistribution(nodeID int) numeric.Distribution {
	return c.serviceDemand[nodeID]
}
