// Command qnet simulates an open tandem queueing network (source -> stage_1
// -> ... -> stage_N -> sink) under the Independent Replications method,
// estimating steady-state mean network sojourn time. Grounded on the
// original dcs-des qnet examples: single_class_tandem_qn.cpp (three-stage
// web/app/db tandem, processor-sharing by default) and
// single_class_single_queue_qn.cpp (single-station FCFS case, N=1).
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

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
		fmt.Fprintf(os.Stderr, "qnet: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qnet",
	Short: "Simulate an open tandem queueing network via independent replications",
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.Float64("arrival-rate", 5.3, "customer arrival rate at the source")
	flags.String("service-times", "0.03,0.06,0.03", "comma-separated mean service time per tandem stage")
	flags.String("policy", "ps", "per-stage scheduling policy: fcfs, ps, or rr")
	flags.Float64("quantum", 0.01, "round-robin quantum (policy=rr only)")
	flags.Int("servers", 1, "servers per stage")
	flags.Int("replication-size", 100, "fixed number of sojourn-time observations per replication")
	flags.Int("num-replications", 5, "minimum number of replications to run")
	flags.Uint64("seed", 5489, "RNG seed")
	flags.Float64("confidence-level", 0.95, "confidence level for interval estimates")
	flags.Float64("relative-precision", 0.04, "target relative precision")
	flags.Bool("verbose", true, "log per-replication summaries")
}

func stageName(i, n int) string {
	if n == 3 {
		return [...]string{"Web Server", "App Server", "DB Server"}[i]
	}
	return fmt.Sprintf("Stage %d", i+1)
}

func newStrategy(policy string, servers int, quantum float64) (network.QueueingStrategy, network.ServiceStrategy, error) {
	switch policy {
	case "fcfs":
		return network.NewFIFOQueue(0), network.NewLoadIndependentStrategy(servers, 1.0), nil
	case "ps":
		return network.NewFIFOQueue(0), network.NewProcessorSharingStrategy(servers, 1.0), nil
	case "rr":
		return network.NewFIFOQueue(0), network.NewRoundRobinStrategy(quantum, 1.0), nil
	default:
		return nil, nil, fmt.Errorf("unknown policy %q (want fcfs, ps, or rr)", policy)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	arrivalRate, _ := flags.GetFloat64("arrival-rate")
	serviceTimesRaw, _ := flags.GetString("service-times")
	policy, _ := flags.GetString("policy")
	quantum, _ := flags.GetFloat64("quantum")
	servers, _ := flags.GetInt("servers")
	replicationSize, _ := flags.GetInt("replication-size")
	numReplications, _ := flags.GetInt("num-replications")
	seed, _ := flags.GetUint64("seed")
	confidenceLevel, _ := flags.GetFloat64("confidence-level")
	relativePrecision, _ := flags.GetFloat64("relative-precision")
	verbose, _ := flags.GetBool("verbose")

	var serviceTimes []float64
	for _, s := range strings.Split(serviceTimesRaw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("parsing --service-times: %w", err)
		}
		serviceTimes = append(serviceTimes, v)
	}
	if len(serviceTimes) == 0 {
		return fmt.Errorf("--service-times must name at least one stage")
	}
	numStages := len(serviceTimes)

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

	const classID = 0
	sourceID := 0
	sinkID := numStages + 1

	cls := network.NewCustomerClass(classID, "customers", numeric.NewExponential(1/arrivalRate))
	net.AddClass(cls)

	source := network.NewSourceNode(sourceID, "Source", classID, net)
	net.AddNode(source)

	stations := make([]*network.QueueingStation, numStages)
	prevID := sourceID
	for i := 0; i < numStages; i++ {
		stageID := i + 1
		queue, service, err := newStrategy(policy, servers, quantum)
		if err != nil {
			return err
		}
		cls.SetServiceDistribution(stageID, numeric.NewExponential(serviceTimes[i]))
		station := network.NewQueueingStation(stageID, stageName(i, numStages), net, queue, service)
		net.AddNode(station)
		stations[i] = station
		routing.AddRoute(prevID, classID, network.Destination{NodeID: stageID, ClassID: classID})
		prevID = stageID
	}
	sink := network.NewSinkNode(sinkID, "Sink", net)
	net.AddNode(sink)
	routing.AddRoute(prevID, classID, network.Destination{NodeID: sinkID, ClassID: classID})

	rep.BeginReplicationSource().Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		net.ResetForReplication(ctx)
	})

	studentT := numeric.NewStudentT()
	responseTimeStat := analyze.NewReplicationsStatistic(
		"network_response_time",
		confidenceLevel, relativePrecision, 0,
		func() stat.Statistic { return stat.NewMean("network_response_time", confidenceLevel, studentT) },
		stat.NewMean("network_response_time_grand", confidenceLevel, studentT),
		analyze.NewTransientDetector(analyze.WithN0Max(300)),
		analyze.NewFixedSizeDetector(replicationSize),
		analyze.NewFixedCountDetector(numReplications),
		studentT,
	)
	rep.RegisterStatistic(responseTimeStat)

	sink.OnSojournTime(func(sojournTime float64) {
		responseTimeStat.Collect(sojournTime, 1)
	})

	rep.EndReplicationSource().Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		responseTimeStat.Refresh()
		if !verbose {
			return
		}
		n := evt.Payload.(int)
		logger.Info("replication complete",
			desim.F("replication", n),
			desim.F("arrivals", net.Stats().NumArrivals),
			desim.F("departures", net.Stats().NumDepartures),
			desim.F("mean_network_response_time", responseTimeStat.Estimate()),
		)
	})

	if err := rep.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	elapsed := net.ElapsedTime()
	fmt.Printf("policy=%s stages=%d arrival_rate=%g replications=%d\n", policy, numStages, arrivalRate, rep.NumReplications())
	fmt.Println("MEASURED PERFORMANCE INDICES:")
	fmt.Println("  Network-level:")
	fmt.Printf("    Num Arrivals: %d\n", net.Stats().NumArrivals)
	fmt.Printf("    Num Departures: %d\n", net.Stats().NumDepartures)
	fmt.Printf("    Response Time: %.6f +/- %.6f\n", responseTimeStat.Estimate(), responseTimeStat.HalfWidth())
	fmt.Printf("    Throughput: %.6f\n", net.Stats().Throughput(elapsed))
	fmt.Println("  Node-level:")
	for i, station := range stations {
		s := station.Stats()
		fmt.Printf("    %s:\n", stageName(i, numStages))
		fmt.Printf("      Num Arrivals: %d\n", s.NumArrivals)
		fmt.Printf("      Num Departures: %d\n", s.NumDepartures)
		fmt.Printf("      Busy Time: %.6f\n", s.BusyTime())
		fmt.Printf("      Utilization: %.6f\n", s.Utilization(elapsed)/float64(servers))
		fmt.Printf("      Response Time: %.6f\n", s.MeanResponseTime())
		fmt.Printf("      Throughput: %.6f\n", s.Throughput(elapsed))
		fmt.Printf("      Queue Length: %.6f\n", s.MeanQueueLength(elapsed))
	}
	return nil
}
