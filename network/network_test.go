package network

import (
	"testing"

	desim "github.com/joeycumines/go-desim"
	"github.com/joeycumines/go-desim/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSingleQueueNetwork wires Source(0) -> Station(1) -> Sink(2) with
// deterministic routing, FIFO queueing, and a single-server FCFS strategy —
// an M/M/1 layout.
func buildSingleQueueNetwork(eng *desim.Engine, rng numeric.RNG, lambda, mu float64) (*Network, *QueueingStation) {
	routing := NewDeterministicRouting()
	net := NewNetwork(eng, rng, routing)

	cls := NewCustomerClass(0, "arrivals", numeric.NewExponential(1/lambda))
	cls.SetServiceDistribution(1, numeric.NewExponential(1/mu))
	net.AddClass(cls)

	source := NewSourceNode(0, "source", 0, net)
	station := NewQueueingStation(1, "station", net, NewFIFOQueue(0), NewLoadIndependentStrategy(1, 1.0))
	sink := NewSinkNode(2, "sink", net)

	net.AddNode(source)
	net.AddNode(station)
	net.AddNode(sink)

	routing.AddRoute(0, 0, Destination{NodeID: 1, ClassID: 0})
	routing.AddRoute(1, 0, Destination{NodeID: 2, ClassID: 0})

	return net, station
}

func TestSingleQueueNetworkConservesCustomers(t *testing.T) {
	eng := desim.NewEngine()
	rng := numeric.NewRNG(7)
	net, station := buildSingleQueueNetwork(eng, rng, 5.0, 1.0/0.06)
	_ = station

	eng.StopAtTime(500)
	require.NoError(t, eng.Run())

	source := net.Node(0).(*SourceNode)
	sink := net.Node(2)

	assert.Equal(t, source.Stats().NumArrivals, net.Stats().NumArrivals)
	assert.LessOrEqual(t, sink.Stats().NumArrivals, net.Stats().NumArrivals)
	assert.Equal(t, sink.Stats().NumArrivals, net.Stats().NumDepartures)
}

func TestQueueingStationDiscardsWhenAtCapacity(t *testing.T) {
	eng := desim.NewEngine()
	rng := numeric.NewRNG(3)
	routing := NewDeterministicRouting()
	net := NewNetwork(eng, rng, routing)

	cls := NewCustomerClass(0, "fast-arrivals", numeric.NewDeterministic(0.001))
	cls.SetServiceDistribution(1, numeric.NewDeterministic(100))
	net.AddClass(cls)

	source := NewSourceNode(0, "source", 0, net)
	station := NewQueueingStation(1, "station", net, NewFIFOQueue(2), NewLoadIndependentStrategy(1, 1.0))
	sink := NewSinkNode(2, "sink", net)
	net.AddNode(source)
	net.AddNode(station)
	net.AddNode(sink)
	routing.AddRoute(0, 0, Destination{NodeID: 1, ClassID: 0})
	routing.AddRoute(1, 0, Destination{NodeID: 2, ClassID: 0})

	eng.StopAtTime(1)
	require.NoError(t, eng.Run())

	assert.Greater(t, station.Stats().NumDiscards, 0)
}

func TestProcessorSharingSplitsCapacityAcrossInProgress(t *testing.T) {
	eng := desim.NewEngine()
	rng := numeric.NewRNG(11)
	routing := NewDeterministicRouting()
	net := NewNetwork(eng, rng, routing)

	cls := NewCustomerClass(0, "arrivals", numeric.NewExponential(0.03))
	cls.SetServiceDistribution(1, numeric.NewExponential(0.06))
	net.AddClass(cls)

	source := NewSourceNode(0, "source", 0, net)
	station := NewQueueingStation(1, "station", net, NewFIFOQueue(0), NewProcessorSharingStrategy(1, 1.0))
	sink := NewSinkNode(2, "sink", net)
	net.AddNode(source)
	net.AddNode(station)
	net.AddNode(sink)
	routing.AddRoute(0, 0, Destination{NodeID: 1, ClassID: 0})
	routing.AddRoute(1, 0, Destination{NodeID: 2, ClassID: 0})

	eng.StopAtTime(200)
	require.NoError(t, eng.Run())

	assert.Greater(t, station.Stats().NumDepartures, 0)
	assert.Equal(t, 0, station.Stats().NumDiscards)
}

func TestRoundRobinRespectsQuantumCap(t *testing.T) {
	eng := desim.NewEngine()
	rng := numeric.NewRNG(23)
	routing := NewDeterministicRouting()
	net := NewNetwork(eng, rng, routing)

	cls := NewCustomerClass(0, "arrivals", numeric.NewExponential(0.05))
	cls.SetServiceDistribution(1, numeric.NewExponential(0.1))
	net.AddClass(cls)

	source := NewSourceNode(0, "source", 0, net)
	station := NewQueueingStation(1, "station", net, NewFIFOQueue(0), NewRoundRobinStrategy(0.01, 1.0))
	sink := NewSinkNode(2, "sink", net)
	net.AddNode(source)
	net.AddNode(station)
	net.AddNode(sink)
	routing.AddRoute(0, 0, Destination{NodeID: 1, ClassID: 0})
	routing.AddRoute(1, 0, Destination{NodeID: 2, ClassID: 0})

	eng.StopAtTime(50)
	require.NoError(t, eng.Run())

	assert.Greater(t, station.Stats().NumDepartures, 0)
}

func TestProbabilisticRoutingSplitsAcrossDestinations(t *testing.T) {
	eng := desim.NewEngine()
	rng := numeric.NewRNG(99)
	routing := NewProbabilisticRouting()
	net := NewNetwork(eng, rng, routing)

	cls := NewCustomerClass(0, "arrivals", numeric.NewExponential(0.1))
	cls.SetServiceDistribution(1, numeric.NewExponential(0.05))
	cls.SetServiceDistribution(2, numeric.NewExponential(0.05))
	net.AddClass(cls)

	source := NewSourceNode(0, "source", 0, net)
	stationA := NewQueueingStation(1, "station-a", net, NewFIFOQueue(0), NewLoadIndependentStrategy(1, 1.0))
	stationB := NewQueueingStation(2, "station-b", net, NewFIFOQueue(0), NewLoadIndependentStrategy(1, 1.0))
	sink := NewSinkNode(3, "sink", net)
	net.AddNode(source)
	net.AddNode(stationA)
	net.AddNode(stationB)
	net.AddNode(sink)

	routing.AddRoute(0, 0, Destination{NodeID: 1, ClassID: 0}, 0.5)
	routing.AddRoute(0, 0, Destination{NodeID: 2, ClassID: 0}, 0.5)
	routing.AddRoute(1, 0, Destination{NodeID: 3, ClassID: 0}, 1)
	routing.AddRoute(2, 0, Destination{NodeID: 3, ClassID: 0}, 1)

	eng.StopAtTime(200)
	require.NoError(t, eng.Run())

	assert.Greater(t, stationA.Stats().NumArrivals, 0)
	assert.Greater(t, stationB.Stats().NumArrivals, 0)
}

func TestQueueingStationOnResponseTimeObservesEverySample(t *testing.T) {
	eng := desim.NewEngine()
	rng := numeric.NewRNG(5)
	_, station := buildSingleQueueNetwork(eng, rng, 5.0, 1.0/0.06)

	var samples []float64
	station.OnResponseTime(func(rt float64) { samples = append(samples, rt) })

	eng.StopAtTime(200)
	require.NoError(t, eng.Run())

	assert.Len(t, samples, station.Stats().NumDepartures)
	for _, s := range samples {
		assert.GreaterOrEqual(t, s, 0.0)
	}
}

func TestSinkNodeOnSojournTimeObservesEverySample(t *testing.T) {
	eng := desim.NewEngine()
	rng := numeric.NewRNG(6)
	net, _ := buildSingleQueueNetwork(eng, rng, 5.0, 1.0/0.06)
	sink := net.Node(2).(*SinkNode)

	var samples []float64
	sink.OnSojournTime(func(st float64) { samples = append(samples, st) })

	eng.StopAtTime(200)
	require.NoError(t, eng.Run())

	assert.Len(t, samples, sink.Stats().NumArrivals)
	assert.Equal(t, len(samples), net.Stats().NumDepartures)
}

func TestResetForReplicationRestartsArrivalsAndClearsStats(t *testing.T) {
	rep := desim.NewReplicationsEngine(nil, desim.WithMinNumReplications(3), desim.WithMinReplicationDuration(200))
	rng := numeric.NewRNG(8)
	net, station := buildSingleQueueNetwork(rep.Engine, rng, 5.0, 1.0/0.06)
	_ = station

	rep.BeginReplicationSource().Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		net.ResetForReplication(ctx)
	})

	var arrivalsPerRep []int
	rep.EndReplicationSource().Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		arrivalsPerRep = append(arrivalsPerRep, net.Stats().NumArrivals)
	})

	require.NoError(t, rep.Run())

	require.Len(t, arrivalsPerRep, 3)
	for _, n := range arrivalsPerRep {
		assert.Greater(t, n, 0)
	}
}
