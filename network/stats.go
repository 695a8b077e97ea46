package network

// NodeStats accumulates the counters and time-weighted measures described for
// node- and network-scoped statistics: arrivals, departures, discards,
// response time, throughput, utilization, queue length, busy time.
type NodeStats struct {
	NumArrivals  int
	NumDepartures int
	NumDiscards  int

	totalResponseTime float64
	busyTime          float64
	busyStart         float64
	busy              bool
	lastUpdate        float64

	queueLengthIntegral float64
	queueLength         int
}

func newNodeStats() *NodeStats { return &NodeStats{} }

// reset returns the statistic to its just-constructed state, for reuse
// across replications in [desim.ReplicationsEngine] mode. lastUpdate is
// seeded with now so the next trackQueueLength call doesn't fold in the
// gap since the previous replication ended.
func (s *NodeStats) reset(now float64) {
	*s = NodeStats{lastUpdate: now}
}

func (s *NodeStats) recordArrival() { s.NumArrivals++ }

func (s *NodeStats) recordDeparture(responseTime float64) {
	s.NumDepartures++
	s.totalResponseTime += responseTime
}

func (s *NodeStats) recordDiscard() { s.NumDiscards++ }

// setBusy marks the server span starting at now as busy (true) or idle
// (false), folding the just-ended span's duration into busyTime.
func (s *NodeStats) setBusy(now float64, busy bool) {
	if s.busy {
		s.busyTime += now - s.busyStart
	}
	s.busy = busy
	s.busyStart = now
}

// trackQueueLength folds the simulated-time-weighted queue length into
// queueLengthIntegral and updates the current length to n.
func (s *NodeStats) trackQueueLength(now float64, n int) {
	s.queueLengthIntegral += float64(s.queueLength) * (now - s.lastUpdate)
	s.lastUpdate = now
	s.queueLength = n
}

// finalize folds any still-open busy span into busyTime as of now — called
// from the network's end-of-simulation hook so utilization/queue-length
// measures reflect the full observation window.
func (s *NodeStats) finalize(now float64) {
	if s.busy {
		s.busyTime += now - s.busyStart
		s.busyStart = now
	}
	s.queueLengthIntegral += float64(s.queueLength) * (now - s.lastUpdate)
	s.lastUpdate = now
}

// MeanResponseTime returns the average departure-minus-arrival response time
// observed so far.
func (s *NodeStats) MeanResponseTime() float64 {
	if s.NumDepartures == 0 {
		return 0
	}
	return s.totalResponseTime / float64(s.NumDepartures)
}

// Throughput returns departures per unit simulated time, given the total
// elapsed simulated time.
func (s *NodeStats) Throughput(elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(s.NumDepartures) / elapsed
}

// Utilization returns busy-time divided by elapsed simulated time, in [0, 1].
// Busy time counts the spans during which at least one customer is in
// service, so for a multi-server node it is not summed across servers.
func (s *NodeStats) Utilization(elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return s.busyTime / elapsed
}

// MeanQueueLength returns the time-weighted average queue length.
func (s *NodeStats) MeanQueueLength(elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return s.queueLengthIntegral / elapsed
}

// BusyTime returns the accumulated busy-time span length.
func (s *NodeStats) BusyTime() float64 { return s.busyTime }
