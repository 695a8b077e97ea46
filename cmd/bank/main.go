// Command bank simulates an M/M/c bank-teller queue under the Independent
// Replications method, estimating steady-state mean response time and its
// 99th percentile to a target relative precision. Grounded on the original
// dcs-des bank example: a single open customer class, one queueing station
// with a fixed teller count, deterministic source -> station -> sink
// routing, each replication reset independently. The random generator is
// seeded once and its stream continues across replications; replications
// are not reseeded.
package main

import (
	"fmt"
	"os"

	desim "github.com/joeycumines/go-desim"
	"github.com/joeycumines/go-desim/analyze"
	"github.com/joeycumines/go-desim/logadapter"
	"github.com/joeycumines/go-desim/network"
	"github.com/joeycumines/go-desim/numeric"
	"github.com/joeycumines/go-desim/stat"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bank: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bank",
	Short: "Simulate an M/M/c bank-teller queue via independent replications",
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.Int("tellers", 5, "number of tellers (servers)")
	flags.Float64("arrival-rate", 1.0, "customer arrival rate (customers per time unit)")
	flags.Float64("service-rate", 0.25, "per-teller service rate (customers per time unit)")
	flags.Int("replication-size", 1000, "fixed number of response-time observations per replication")
	flags.Int("num-replications", 5, "minimum number of replications to run")
	flags.Uint64("seed", 5489, "RNG seed")
	flags.Float64("confidence-level", 0.95, "confidence level for interval estimates")
	flags.Float64("relative-precision", 0.04, "target relative precision for both statistics")
	flags.Bool("verbose", true, "log per-replication summaries")
}

func run(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	tellers, _ := flags.GetInt("tellers")
	arrivalRate, _ := flags.GetFloat64("arrival-rate")
	serviceRate, _ := flags.GetFloat64("service-rate")
	replicationSize, _ := flags.GetInt("replication-size")
	numReplications, _ := flags.GetInt("num-replications")
	seed, _ := flags.GetUint64("seed")
	confidenceLevel, _ := flags.GetFloat64("confidence-level")
	relativePrecision, _ := flags.GetFloat64("relative-precision")
	verbose, _ := flags.GetBool("verbose")

	var logger desim.Logger = desim.NewNoOpLogger()
	if verbose {
		logger = logadapter.New(zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger())
	}

	rep := desim.NewReplicationsEngine(
		[]desim.EngineOption{desim.WithLogger(logger)},
		desim.WithMinNumReplications(numReplications),
	)

	rng := numeric.NewRNG(seed)
	routing := network.NewDeterministicRouting()
	net := network.NewNetwork(rep.Engine, rng, routing)

	const (
		classID   = 0
		sourceID  = 0
		stationID = 1
		sinkID    = 2
	)

	cls := network.NewCustomerClass(classID, "customers", numeric.NewExponential(1/arrivalRate))
	cls.SetServiceDistribution(stationID, numeric.NewExponential(1/serviceRate))
	net.AddClass(cls)

	source := network.NewSourceNode(sourceID, "arrivals", classID, net)
	station := network.NewQueueingStation(stationID, "tellers", net, network.NewFIFOQueue(0), network.NewLoadIndependentStrategy(tellers, 1.0))
	sink := network.NewSinkNode(sinkID, "departures", net)
	net.AddNode(source)
	net.AddNode(station)
	net.AddNode(sink)

	routing.AddRoute(sourceID, classID, network.Destination{NodeID: stationID, ClassID: classID})
	routing.AddRoute(stationID, classID, network.Destination{NodeID: sinkID, ClassID: classID})

	rep.BeginReplicationSource().Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		net.ResetForReplication(ctx)
	})

	studentT := numeric.NewStudentT()

	meanStat := analyze.NewReplicationsStatistic(
		"response_time_mean",
		confidenceLevel, relativePrecision, 0,
		func() stat.Statistic { return stat.NewMean("response_time_mean", confidenceLevel, studentT) },
		stat.NewMean("response_time_mean_grand", confidenceLevel, studentT),
		analyze.NewTransientDetector(analyze.WithN0Max(300)),
		analyze.NewFixedSizeDetector(replicationSize),
		analyze.NewFixedCountDetector(numReplications),
		studentT,
	)
	quantileStat := analyze.NewReplicationsStatistic(
		"response_time_p99",
		confidenceLevel, relativePrecision, 0,
		func() stat.Statistic { return stat.NewQuantile("response_time_p99", 0.99, confidenceLevel, studentT) },
		stat.NewMean("response_time_p99_grand", confidenceLevel, studentT),
		analyze.NewTransientDetector(analyze.WithN0Max(300)),
		analyze.NewFixedSizeDetector(replicationSize),
		analyze.NewFixedCountDetector(numReplications),
		studentT,
	)
	rep.RegisterStatistic(meanStat)
	rep.RegisterStatistic(quantileStat)

	station.OnResponseTime(func(responseTime float64) {
		meanStat.Collect(responseTime, 1)
		quantileStat.Collect(responseTime, 1)
	})

	rep.EndReplicationSource().Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		meanStat.Refresh()
		quantileStat.Refresh()
		if !verbose {
			return
		}
		n := evt.Payload.(int)
		logger.Info("replication complete",
			desim.F("replication", n),
			desim.F("arrivals", net.Stats().NumArrivals),
			desim.F("departures", net.Stats().NumDepartures),
			desim.F("discards", net.Stats().NumDiscards),
			desim.F("mean_response_time", meanStat.Estimate()),
			desim.F("p99_response_time", quantileStat.Estimate()),
		)
	})

	if err := rep.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Printf("tellers=%d arrival_rate=%g service_rate=%g replications=%d\n", tellers, arrivalRate, serviceRate, rep.NumReplications())
	fmt.Printf("mean response time: %.6f +/- %.6f (relative precision %.4f)\n", meanStat.Estimate(), meanStat.HalfWidth(), meanStat.RelativePrecision())
	fmt.Printf("p99 response time:  %.6f +/- %.6f (relative precision %.4f)\n", quantileStat.Estimate(), quantileStat.HalfWidth(), quantileStat.RelativePrecision())
	return nil
}
