package main

import (
	"testing"

	desim "github.com/joeycumines/go-desim"
	"github.com/joeycumines/go-desim/analyze"
	"github.com/joeycumines/go-desim/numeric"
	"github.com/joeycumines/go-desim/stat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastDetectors builds a transient detector and batch-size detector tuned to
// converge quickly on the small synthetic workload used below, mirroring the
// reduced windows used in the analyze package's own batch-means tests.
func fastDetectors() (*analyze.TransientDetector, *analyze.BatchSizeDetector) {
	return analyze.NewTransientDetector(
			analyze.WithN0Max(200),
			analyze.WithVarianceWindow(8),
			analyze.WithPeriodogramPoints(4),
		),
		analyze.NewBatchSizeDetector(
			analyze.WithInitialBatchSize(5),
			analyze.WithBatchCount(10),
		)
}

func TestSimulateAccumulatesCompletionAndWaitingObservations(t *testing.T) {
	studentT := numeric.NewStudentT()
	transient1, batchSize1 := fastDetectors()
	transient2, batchSize2 := fastDetectors()

	completionTime := analyze.NewBatchMeansStatistic(
		"task_completion_time", 0.95, 0.5, 20000,
		stat.NewWeightedMean("task_completion_time", 0.95, studentT),
		transient1, batchSize1,
	)
	waitingTime := analyze.NewBatchMeansStatistic(
		"task_waiting_time", 0.95, 0.5, 20000,
		stat.NewWeightedMean("task_waiting_time", 0.95, studentT),
		transient2, batchSize2,
	)

	eng := desim.NewBatchMeansEngine(nil)
	eng.RegisterStatistic(completionTime)
	eng.RegisterStatistic(waitingTime)
	eng.StopAtTime(50000)

	cfg := schedulerConfig{
		numMachines:        4,
		seed:               1,
		arrivalRate:        0.05,
		minTaskSize:        10,
		maxTaskSize:        40,
		checkpointTime:     2,
		checkpointDistance: 30,
	}

	require.NoError(t, simulate(eng, cfg, completionTime, waitingTime))

	assert.Greater(t, completionTime.NumObservations(), 0)
	assert.Greater(t, waitingTime.NumObservations(), 0)
	assert.Greater(t, completionTime.Estimate(), 0.0)
	assert.GreaterOrEqual(t, waitingTime.Estimate(), 0.0)
}
