// Command simplesim simulates a pool of machines running checkpointed tasks
// under the Batch Means method, estimating steady-state average task
// completion time and average task queueing time. Grounded directly on the
// original dcs-des simple_simulator example's system model: an FCFS task
// queue served by the first free machine in a fixed pool, each task
// periodically suspended for a fixed checkpoint-blocking duration once it
// has accumulated checkpoint_distance time units of execution, then resumed
// from where it left off.
package main

import (
	"container/list"
	"fmt"
	"os"

	desim "github.com/joeycumines/go-desim"
	"github.com/joeycumines/go-desim/analyze"
	"github.com/joeycumines/go-desim/logadapter"
	"github.com/joeycumines/go-desim/numeric"
	"github.com/joeycumines/go-desim/stat"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "simplesim: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "simplesim",
	Short: "Simulate a checkpointed task scheduler via batch means",
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.Int("machines", 16, "number of machines in the pool")
	flags.Uint64("seed", 1435748658, "RNG seed")
	flags.Float64("arrival-rate", 0.02, "task arrival rate")
	flags.Float64("min-task-size", 60, "minimum task execution time")
	flags.Float64("max-task-size", 600, "maximum task execution time")
	flags.Float64("checkpoint-time", 10, "time a task is blocked at each checkpoint")
	flags.Float64("checkpoint-distance", 600, "execution time between checkpoints")
	flags.Float64("relative-precision", 0.025, "target relative precision for both statistics")
	flags.Float64("confidence-level", 0.95, "confidence level for interval estimates")
	flags.Int("max-num-obs", 100000, "cap on observations collected per statistic")
	flags.Bool("verbose", true, "log scheduling anomalies")
}

// task tracks one job's progress through the machine pool: how much
// execution remains, when it last resumed after a checkpoint, and how long
// it waited in queue before being admitted.
type task struct {
	arrivalTime     float64
	executionTime   float64
	remainingTime   float64
	lastRestartTime float64
	queueTime       float64
}

// machine is a single pool slot: idle, or busy running current.
type machine struct {
	id      int
	busy    bool
	current *task
}

func run(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	numMachines, _ := flags.GetInt("machines")
	seed, _ := flags.GetUint64("seed")
	arrivalRate, _ := flags.GetFloat64("arrival-rate")
	minTaskSize, _ := flags.GetFloat64("min-task-size")
	maxTaskSize, _ := flags.GetFloat64("max-task-size")
	checkpointTime, _ := flags.GetFloat64("checkpoint-time")
	checkpointDistance, _ := flags.GetFloat64("checkpoint-distance")
	relativePrecision, _ := flags.GetFloat64("relative-precision")
	confidenceLevel, _ := flags.GetFloat64("confidence-level")
	maxNumObs, _ := flags.GetInt("max-num-obs")
	verbose, _ := flags.GetBool("verbose")

	var logger desim.Logger = desim.NewNoOpLogger()
	if verbose {
		logger = logadapter.New(zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger())
	}

	eng := desim.NewBatchMeansEngine([]desim.EngineOption{desim.WithLogger(logger)})

	studentT := numeric.NewStudentT()
	completionTime := analyze.NewBatchMeansStatistic(
		"task_completion_time",
		confidenceLevel, relativePrecision, maxNumObs,
		stat.NewWeightedMean("task_completion_time", confidenceLevel, studentT),
		analyze.NewTransientDetector(),
		analyze.NewBatchSizeDetector(),
	)
	waitingTime := analyze.NewBatchMeansStatistic(
		"task_waiting_time",
		confidenceLevel, relativePrecision, maxNumObs,
		stat.NewWeightedMean("task_waiting_time", confidenceLevel, studentT),
		analyze.NewTransientDetector(),
		analyze.NewBatchSizeDetector(),
	)
	eng.RegisterStatistic(completionTime)
	eng.RegisterStatistic(waitingTime)

	cfg := schedulerConfig{
		numMachines:        numMachines,
		seed:               seed,
		arrivalRate:        arrivalRate,
		minTaskSize:        minTaskSize,
		maxTaskSize:        maxTaskSize,
		checkpointTime:     checkpointTime,
		checkpointDistance: checkpointDistance,
	}
	if err := simulate(eng, cfg, completionTime, waitingTime); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Println("Simulation Output:")
	fmt.Printf("Average Task Completion Time: %.6f +/- %.6f\n", completionTime.Estimate(), completionTime.HalfWidth())
	fmt.Printf("Average Task Waiting Time: %.6f +/- %.6f\n", waitingTime.Estimate(), waitingTime.HalfWidth())
	return nil
}

// schedulerConfig holds the machine-pool and workload parameters that
// simulate needs, independent of how a caller constructs its detectors.
type schedulerConfig struct {
	numMachines        int
	seed               uint64
	arrivalRate        float64
	minTaskSize        float64
	maxTaskSize        float64
	checkpointTime     float64
	checkpointDistance float64
}

// simulate wires the checkpointed task-scheduler model onto eng and runs it
// to completion, feeding completionTime and waitingTime as it goes. Split
// out from run so tests can supply fast-converging detectors instead of the
// production adaptive ones.
func simulate(eng *desim.BatchMeansEngine, cfg schedulerConfig, completionTime, waitingTime *analyze.BatchMeansStatistic) error {
	rng := numeric.NewRNG(cfg.seed)
	arrival := numeric.NewExponential(1 / cfg.arrivalRate)
	taskSize := numeric.NewUniform(cfg.minTaskSize, cfg.maxTaskSize)
	checkpointTime := cfg.checkpointTime
	checkpointDistance := cfg.checkpointDistance

	machines := make([]*machine, cfg.numMachines)
	for i := range machines {
		machines[i] = &machine{id: i}
	}
	waitingQueue := list.New()

	arrivalSrc := eng.NewEventSource("task-arrival")
	departureSrc := eng.NewEventSource("task-departure")
	suspendSrc := eng.NewEventSource("task-suspend")
	restartSrc := eng.NewEventSource("task-restart")

	schedule := func(ctx desim.EngineContext) {
		if waitingQueue.Len() == 0 {
			return
		}
		var free *machine
		for _, m := range machines {
			if !m.busy {
				free = m
				break
			}
		}
		if free == nil {
			return
		}
		now := ctx.Now()
		front := waitingQueue.Remove(waitingQueue.Front()).(*task)
		front.queueTime = now - front.arrivalTime
		front.lastRestartTime = now
		free.current = front
		free.busy = true

		if front.remainingTime <= checkpointDistance {
			_, _ = ctx.ScheduleEvent(departureSrc, front.remainingTime, free.id)
		} else {
			_, _ = ctx.ScheduleEvent(suspendSrc, checkpointDistance, free.id)
		}
	}

	eng.BeginSimSource().Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		for _, m := range machines {
			m.busy = false
			m.current = nil
		}
		waitingQueue.Init()
		_, _ = ctx.ScheduleEvent(arrivalSrc, arrival.Sample(rng), nil)
	})

	arrivalSrc.Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		_, _ = ctx.ScheduleEvent(arrivalSrc, arrival.Sample(rng), nil)

		exec := taskSize.Sample(rng)
		waitingQueue.PushBack(&task{
			arrivalTime:   ctx.Now(),
			executionTime: exec,
			remainingTime: exec,
		})
		schedule(ctx)
	})

	departureSrc.Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		m := machines[evt.Payload.(int)]
		now := ctx.Now()
		completionTime.Collect(now-m.current.arrivalTime, 1)
		waitingTime.Collect(m.current.queueTime, 1)
		m.current = nil
		m.busy = false
		schedule(ctx)
	})

	suspendSrc.Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		m := machines[evt.Payload.(int)]
		elapsed := ctx.Now() - m.current.lastRestartTime
		m.current.remainingTime -= elapsed
		_, _ = ctx.ScheduleEvent(restartSrc, checkpointTime, m.id)
	})

	restartSrc.Subscribe(func(ctx desim.EngineContext, evt *desim.Event) {
		m := machines[evt.Payload.(int)]
		now := ctx.Now()
		m.current.lastRestartTime = now
		if m.current.remainingTime <= checkpointDistance {
			_, _ = ctx.ScheduleEvent(departureSrc, m.current.remainingTime, m.id)
		} else {
			_, _ = ctx.ScheduleEvent(suspendSrc, checkpointDistance, m.id)
		}
	})

	return eng.Run()
}
