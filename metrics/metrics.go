package metrics

import (
	"github.com/joeycumines/go-desim/network"
	"github.com/prometheus/client_golang/prometheus"

	desim "github.com/joeycumines/go-desim"
)

// replicationCounter is satisfied by [desim.ReplicationsEngine]; kept
// unexported so [Collector] can accept it without forcing every caller to
// depend on the replications flavour of the engine.
type replicationCounter interface {
	NumReplications() int
}

// Collector adapts a running simulation onto [prometheus.Collector]: every
// metric is recomputed from live state on each scrape, so wiring a Collector
// into a registry never perturbs the simulation itself.
type Collector struct {
	engine       *desim.Engine
	replications replicationCounter
	network      *network.Network

	replicationsDesc *prometheus.Desc

	statEstimateDesc    *prometheus.Desc
	statHalfWidthDesc   *prometheus.Desc
	statObservationDesc *prometheus.Desc

	nodeArrivalsDesc   *prometheus.Desc
	nodeDeparturesDesc *prometheus.Desc
	nodeDiscardsDesc   *prometheus.Desc
	nodeUtilDesc       *prometheus.Desc
	nodeQueueLenDesc   *prometheus.Desc
	nodeThroughputDesc *prometheus.Desc

	netArrivalsDesc   *prometheus.Desc
	netDeparturesDesc *prometheus.Desc
	netDiscardsDesc   *prometheus.Desc
}

// CollectorOption configures a [Collector] at construction time.
type CollectorOption func(*Collector)

// WithReplicationsEngine reports [desim.ReplicationsEngine.NumReplications]
// as the desim_replications_total gauge.
func WithReplicationsEngine(r *desim.ReplicationsEngine) CollectorOption {
	return func(c *Collector) { c.replications = r }
}

// WithNetwork attaches a [network.Network], exposing per-node and
// network-scoped arrival/departure/discard/utilization/queue-length/
// throughput gauges.
func WithNetwork(net *network.Network) CollectorOption {
	return func(c *Collector) { c.network = net }
}

// NewCollector constructs a [Collector] wrapping engine's registered
// statistics, and whatever optional components opts attach.
func NewCollector(engine *desim.Engine, opts ...CollectorOption) *Collector {
	c := &Collector{
		engine: engine,
		replicationsDesc: prometheus.NewDesc(
			"desim_replications_total",
			"Number of replications completed so far.",
			nil, nil,
		),
		statEstimateDesc: prometheus.NewDesc(
			"desim_statistic_estimate",
			"Current point estimate of a registered statistic.",
			[]string{"category"}, nil,
		),
		statHalfWidthDesc: prometheus.NewDesc(
			"desim_statistic_half_width",
			"Confidence-interval half-width of a registered statistic at its configured confidence level.",
			[]string{"category"}, nil,
		),
		statObservationDesc: prometheus.NewDesc(
			"desim_statistic_observations_total",
			"Number of observations (or chunks, once past transient detection) collected by a registered statistic.",
			[]string{"category"}, nil,
		),
		nodeArrivalsDesc: prometheus.NewDesc(
			"desim_node_arrivals_total",
			"Total arrivals at a queueing-network node.",
			[]string{"node"}, nil,
		),
		nodeDeparturesDesc: prometheus.NewDesc(
			"desim_node_departures_total",
			"Total departures from a queueing-network node.",
			[]string{"node"}, nil,
		),
		nodeDiscardsDesc: prometheus.NewDesc(
			"desim_node_discards_total",
			"Total arrivals discarded by a queueing-network node (queue at capacity).",
			[]string{"node"}, nil,
		),
		nodeUtilDesc: prometheus.NewDesc(
			"desim_node_utilization",
			"Fraction of elapsed simulated time a queueing-network node's server(s) were busy.",
			[]string{"node"}, nil,
		),
		nodeQueueLenDesc: prometheus.NewDesc(
			"desim_node_queue_length",
			"Time-weighted average queue length at a queueing-network node.",
			[]string{"node"}, nil,
		),
		nodeThroughputDesc: prometheus.NewDesc(
			"desim_node_throughput",
			"Departures per unit simulated time at a queueing-network node.",
			[]string{"node"}, nil,
		),
		netArrivalsDesc: prometheus.NewDesc(
			"desim_network_arrivals_total",
			"Total arrivals into the queueing network, across all source nodes.",
			nil, nil,
		),
		netDeparturesDesc: prometheus.NewDesc(
			"desim_network_departures_total",
			"Total departures from the queueing network, across all sink nodes.",
			nil, nil,
		),
		netDiscardsDesc: prometheus.NewDesc(
			"desim_network_discards_total",
			"Total arrivals discarded anywhere in the queueing network.",
			nil, nil,
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.replicationsDesc
	ch <- c.statEstimateDesc
	ch <- c.statHalfWidthDesc
	ch <- c.statObservationDesc
	ch <- c.nodeArrivalsDesc
	ch <- c.nodeDeparturesDesc
	ch <- c.nodeDiscardsDesc
	ch <- c.nodeUtilDesc
	ch <- c.nodeQueueLenDesc
	ch <- c.nodeThroughputDesc
	ch <- c.netArrivalsDesc
	ch <- c.netDeparturesDesc
	ch <- c.netDiscardsDesc
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.replications != nil {
		ch <- prometheus.MustNewConstMetric(c.replicationsDesc, prometheus.GaugeValue, float64(c.replications.NumReplications()))
	}

	for _, category := range c.engine.StatisticCategories() {
		s := c.engine.StatisticByCategory(category)
		if s == nil || !s.Enabled() {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.statEstimateDesc, prometheus.GaugeValue, s.Estimate(), category)
		ch <- prometheus.MustNewConstMetric(c.statHalfWidthDesc, prometheus.GaugeValue, s.HalfWidth(), category)
		ch <- prometheus.MustNewConstMetric(c.statObservationDesc, prometheus.GaugeValue, float64(s.NumObservations()), category)
	}

	if c.network != nil {
		elapsed := c.network.ElapsedTime()
		for _, node := range c.network.Nodes() {
			s := node.Stats()
			name := node.Name()
			ch <- prometheus.MustNewConstMetric(c.nodeArrivalsDesc, prometheus.CounterValue, float64(s.NumArrivals), name)
			ch <- prometheus.MustNewConstMetric(c.nodeDeparturesDesc, prometheus.CounterValue, float64(s.NumDepartures), name)
			ch <- prometheus.MustNewConstMetric(c.nodeDiscardsDesc, prometheus.CounterValue, float64(s.NumDiscards), name)
			ch <- prometheus.MustNewConstMetric(c.nodeUtilDesc, prometheus.GaugeValue, s.Utilization(elapsed), name)
			ch <- prometheus.MustNewConstMetric(c.nodeQueueLenDesc, prometheus.GaugeValue, s.MeanQueueLength(elapsed), name)
			ch <- prometheus.MustNewConstMetric(c.nodeThroughputDesc, prometheus.GaugeValue, s.Throughput(elapsed), name)
		}

		netStats := c.network.Stats()
		ch <- prometheus.MustNewConstMetric(c.netArrivalsDesc, prometheus.CounterValue, float64(netStats.NumArrivals))
		ch <- prometheus.MustNewConstMetric(c.netDeparturesDesc, prometheus.CounterValue, float64(netStats.NumDepartures))
		ch <- prometheus.MustNewConstMetric(c.netDiscardsDesc, prometheus.CounterValue, float64(netStats.NumDiscards))
	}
}

var _ prometheus.Collector = (*Collector)(nil)
