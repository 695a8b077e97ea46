package desim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnalyzable is a minimal hand-rolled [stat.AnalyzableStatistic] test
// double: enough knobs to drive [ReplicationsEngine] and [BatchMeansEngine]
// termination without pulling in the full transient/batch-size/
// num-replications detector stack exercised by analyze_test.go.
type fakeAnalyzable struct {
	category string
	enabled  bool

	collectsTotal    int
	collectsThisInit int
	completeAt       int

	finalizedChunks   int
	targetAfterChunks int

	targetAfterCollects int
}

func (f *fakeAnalyzable) Collect(value, weight float64) {
	if !f.enabled {
		return
	}
	f.collectsTotal++
	f.collectsThisInit++
}
func (f *fakeAnalyzable) Reset() {
	f.collectsTotal = 0
	f.collectsThisInit = 0
	f.finalizedChunks = 0
}
func (f *fakeAnalyzable) NumObservations() int      { return f.finalizedChunks }
func (f *fakeAnalyzable) Estimate() float64         { return 0 }
func (f *fakeAnalyzable) Variance() float64         { return 0 }
func (f *fakeAnalyzable) StandardDeviation() float64 { return 0 }
func (f *fakeAnalyzable) HalfWidth() float64        { return 0 }
func (f *fakeAnalyzable) RelativePrecision() float64 { return 0 }
func (f *fakeAnalyzable) ConfidenceLevel() float64  { return 0.95 }
func (f *fakeAnalyzable) Category() string          { return f.category }
func (f *fakeAnalyzable) Enabled() bool             { return f.enabled }
func (f *fakeAnalyzable) SetEnabled(enabled bool)   { f.enabled = enabled }
func (f *fakeAnalyzable) TargetRelativePrecision() float64 { return 0 }
func (f *fakeAnalyzable) MaxNumObservations() int          { return 0 }
func (f *fakeAnalyzable) TargetPrecisionReached() bool {
	if f.targetAfterChunks > 0 {
		return f.finalizedChunks >= f.targetAfterChunks
	}
	if f.targetAfterCollects > 0 {
		return f.collectsTotal >= f.targetAfterCollects
	}
	return false
}
func (f *fakeAnalyzable) ObservationComplete() bool {
	if f.completeAt <= 0 {
		return true
	}
	return f.collectsThisInit >= f.completeAt
}
func (f *fakeAnalyzable) SteadyStateEntered() bool  { return true }
func (f *fakeAnalyzable) TransientPhaseLength() int { return 0 }
func (f *fakeAnalyzable) InitializeForExperiment()  { f.collectsThisInit = 0 }
func (f *fakeAnalyzable) FinalizeForExperiment()    { f.finalizedChunks++ }
func (f *fakeAnalyzable) Refresh()                  {}

// wireRepeatingTick schedules onTick to run every interval time units,
// starting as soon as startSource first fires, and rescheduling itself
// indefinitely thereafter.
func wireRepeatingTick(eng *Engine, startSource *EventSource, interval float64, onTick func(ctx EngineContext)) {
	tick := eng.NewEventSource("tick")
	var schedule func(ctx EngineContext)
	schedule = func(ctx EngineContext) {
		onTick(ctx)
		_, _ = ctx.ScheduleEvent(tick, interval, nil)
	}
	tick.Subscribe(func(ctx EngineContext, evt *Event) { schedule(ctx) })
	startSource.Subscribe(func(ctx EngineContext, evt *Event) { schedule(ctx) })
}

func TestReplicationsEngineRunsUntilMinReplicationsAndConvergence(t *testing.T) {
	r := NewReplicationsEngine(nil, WithMinNumReplications(3))
	s := &fakeAnalyzable{category: "x", enabled: true, completeAt: 2, targetAfterChunks: 3}
	r.RegisterStatistic(s)

	wireRepeatingTick(r.Engine, r.BeginReplicationSource(), 1, func(ctx EngineContext) { s.Collect(1, 1) })

	require.NoError(t, r.Run())
	assert.Equal(t, 3, r.NumReplications())
	assert.Equal(t, 3, s.finalizedChunks)
}

func TestReplicationsEngineContinuesPastMinIfNotConverged(t *testing.T) {
	r := NewReplicationsEngine(nil, WithMinNumReplications(2))
	s := &fakeAnalyzable{category: "x", enabled: true, completeAt: 1, targetAfterChunks: 5}
	r.RegisterStatistic(s)

	wireRepeatingTick(r.Engine, r.BeginReplicationSource(), 1, func(ctx EngineContext) { s.Collect(1, 1) })

	require.NoError(t, r.Run())
	assert.Equal(t, 5, r.NumReplications())
}

func TestReplicationsEngineFiresBeginAndEndLifecycleEventsPerReplication(t *testing.T) {
	r := NewReplicationsEngine(nil, WithMinNumReplications(3))
	s := &fakeAnalyzable{category: "x", enabled: true, completeAt: 1, targetAfterChunks: 3}
	r.RegisterStatistic(s)

	var begins, ends []int
	r.BeginReplicationSource().Subscribe(func(ctx EngineContext, evt *Event) {
		begins = append(begins, evt.Payload.(int))
	})
	r.EndReplicationSource().Subscribe(func(ctx EngineContext, evt *Event) {
		ends = append(ends, evt.Payload.(int))
	})

	wireRepeatingTick(r.Engine, r.BeginReplicationSource(), 1, func(ctx EngineContext) { s.Collect(1, 1) })

	require.NoError(t, r.Run())
	assert.Equal(t, []int{1, 2, 3}, begins)
	assert.Equal(t, []int{1, 2, 3}, ends)
}

func TestReplicationsEngineGatesOnMinReplicationDuration(t *testing.T) {
	r := NewReplicationsEngine(nil, WithMinNumReplications(1), WithMinReplicationDuration(10))
	// completes instantly on tick 1, well before min duration elapses.
	s := &fakeAnalyzable{category: "x", enabled: true, completeAt: 1, targetAfterChunks: 1}
	r.RegisterStatistic(s)

	var replicationEndTimes []float64
	r.EndReplicationSource().Subscribe(func(ctx EngineContext, evt *Event) {
		replicationEndTimes = append(replicationEndTimes, ctx.Now())
	})

	wireRepeatingTick(r.Engine, r.BeginReplicationSource(), 1, func(ctx EngineContext) { s.Collect(1, 1) })

	require.NoError(t, r.Run())
	require.Len(t, replicationEndTimes, 1)
	assert.GreaterOrEqual(t, replicationEndTimes[0], 10.0)
}

func TestReplicationsEngineRejectsReentrantRun(t *testing.T) {
	r := NewReplicationsEngine(nil, WithMinNumReplications(1))
	r.Engine.running = true
	assert.ErrorIs(t, r.Run(), ErrEngineAlreadyRunning)
}
