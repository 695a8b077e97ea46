package network

import "github.com/google/uuid"

// Customer is a single unit of flow through the network. Its current node
// and class are ids, not pointers, so a Customer never holds a reference
// cycle back into the [Network] that owns it.
type Customer struct {
	// ID uniquely identifies this customer for the lifetime of the
	// simulation. Textual ids are a domain-stack convenience (report output,
	// log correlation) — internal bookkeeping never parses them.
	ID uuid.UUID

	ClassID int

	// ArrivalTime is the simulated time this customer last arrived at
	// CurrentNodeID — reset on every inter-node hop, used to compute
	// per-node response time.
	ArrivalTime float64
	// NetworkArrivalTime is the simulated time this customer first entered
	// the network (at a source node) — used for network-scoped response
	// time.
	NetworkArrivalTime float64

	CurrentNodeID int

	// CompletedWork accumulates service already delivered at the current
	// node, in service-demand units — reset to 0 on arrival at a new node.
	// Every in-progress customer satisfies CompletedWork <= ServiceDemand.
	CompletedWork float64
	// ServiceDemand is the total service requirement sampled for the
	// current node visit.
	ServiceDemand float64
}

// NewCustomer constructs a [Customer] for classID, stamped with a fresh id.
func NewCustomer(classID int, now float64) *Customer {
	return &Customer{
		ID:                 uuid.New(),
		ClassID:            classID,
		ArrivalTime:        now,
		NetworkArrivalTime: now,
	}
}
