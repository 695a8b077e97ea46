package desim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchOrdersByFireTimeThenInsertionOrder(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("tick")

	var order []string
	src.Subscribe(func(ctx EngineContext, evt *Event) {
		order = append(order, evt.Payload.(string))
	})

	_, err := eng.ScheduleEvent(src, 5, "late")
	require.NoError(t, err)
	_, err = eng.ScheduleEvent(src, 1, "early")
	require.NoError(t, err)
	_, err = eng.ScheduleEvent(src, 1, "early-but-second")
	require.NoError(t, err)

	require.NoError(t, eng.Run())
	assert.Equal(t, []string{"early", "early-but-second", "late"}, order)
}

func TestCoTimedEventsFireInScheduleOrder(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("co-timed")

	var order []int
	src.Subscribe(func(ctx EngineContext, evt *Event) {
		order = append(order, evt.Payload.(int))
	})

	for i := 0; i < 5; i++ {
		_, err := eng.ScheduleEventAt(src, 10, i)
		require.NoError(t, err)
	}

	require.NoError(t, eng.Run())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRescheduleEventMovesFireTime(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("reschedulable")

	var fired []float64
	src.Subscribe(func(ctx EngineContext, evt *Event) {
		fired = append(fired, ctx.Now())
	})

	evt, err := eng.ScheduleEvent(src, 10, nil)
	require.NoError(t, err)
	require.NoError(t, eng.RescheduleEvent(evt, 3))

	require.NoError(t, eng.Run())
	require.Equal(t, []float64{3}, fired)
}

func TestRescheduleEventNotFoundReturnsErrEventNotFound(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("ghost")
	evt, err := eng.ScheduleEvent(src, 1, nil)
	require.NoError(t, err)
	require.NoError(t, eng.CancelEvent(evt))

	err = eng.RescheduleEvent(evt, 5)
	assert.True(t, errors.Is(err, ErrEventNotFound))
}

func TestCancelEventIsIdempotentlyRejectedOnSecondCall(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("cancel-me")
	evt, err := eng.ScheduleEvent(src, 1, nil)
	require.NoError(t, err)

	require.NoError(t, eng.CancelEvent(evt))
	err = eng.CancelEvent(evt)
	assert.True(t, errors.Is(err, ErrEventNotFound))
}

func TestDisabledSourceNeverDispatchesListeners(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("off")
	src.SetEnabled(false)

	fired := false
	src.Subscribe(func(ctx EngineContext, evt *Event) { fired = true })

	_, err := eng.ScheduleEvent(src, 1, nil)
	require.NoError(t, err)

	require.NoError(t, eng.Run())
	assert.False(t, fired)
}

func TestScheduleEventOnDisabledSourceReturnsNilEvent(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("off")
	src.SetEnabled(false)

	evt, err := eng.ScheduleEvent(src, 1, nil)
	require.NoError(t, err)
	assert.Nil(t, evt)
}

func TestRescheduleEventIsIdempotentOnApproximatelyEqualFireTime(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("reschedulable")

	evt, err := eng.ScheduleEvent(src, 10, nil)
	require.NoError(t, err)

	require.NoError(t, eng.RescheduleEvent(evt, 10+1e-12))
	assert.Equal(t, 10.0, evt.FireTime)
}

func TestRescheduleEventOnAlreadyDueEventIsNoOp(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("due-now")

	evt, err := eng.ScheduleEvent(src, 0, nil)
	require.NoError(t, err)

	require.NoError(t, eng.RescheduleEvent(evt, 5))
	assert.Equal(t, 0.0, evt.FireTime)
}

func TestStopNowHaltsDispatchAfterCurrentEvent(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("stopper")

	var order []int
	src.Subscribe(func(ctx EngineContext, evt *Event) {
		n := evt.Payload.(int)
		order = append(order, n)
		if n == 1 {
			eng.StopNow()
		}
	})

	for i := 0; i < 5; i++ {
		_, err := eng.ScheduleEvent(src, float64(i), i)
		require.NoError(t, err)
	}

	require.NoError(t, eng.Run())
	assert.Equal(t, []int{0, 1}, order)
}

func TestStopAtTimeStopsBeforeLaterEventsButFiresExactBoundary(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("boundary")

	var fired []float64
	src.Subscribe(func(ctx EngineContext, evt *Event) { fired = append(fired, ctx.Now()) })

	for _, delay := range []float64{1, 5, 5, 9} {
		_, err := eng.ScheduleEvent(src, delay, nil)
		require.NoError(t, err)
	}
	eng.StopAtTime(5)

	require.NoError(t, eng.Run())
	assert.Equal(t, []float64{1, 5, 5}, fired)
}

func TestBeginAndEndSimFireExactlyOncePerRun(t *testing.T) {
	eng := NewEngine()
	begins, ends := 0, 0
	eng.BeginSimSource().Subscribe(func(ctx EngineContext, evt *Event) { begins++ })
	eng.EndSimSource().Subscribe(func(ctx EngineContext, evt *Event) { ends++ })

	require.NoError(t, eng.Run())
	assert.Equal(t, 1, begins)
	assert.Equal(t, 1, ends)
}

func TestBeforeAndAfterFireBracketNonInternalEvents(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("bracketed")

	var order []string
	eng.BeforeFireSource().Subscribe(func(ctx EngineContext, evt *Event) { order = append(order, "before") })
	src.Subscribe(func(ctx EngineContext, evt *Event) { order = append(order, "fire") })
	eng.AfterFireSource().Subscribe(func(ctx EngineContext, evt *Event) { order = append(order, "after") })

	_, err := eng.ScheduleEvent(src, 1, nil)
	require.NoError(t, err)

	require.NoError(t, eng.Run())
	assert.Equal(t, []string{"before", "fire", "after"}, order)
}

func TestRunRejectsReentrantInvocation(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("reentrant")

	var innerErr error
	src.Subscribe(func(ctx EngineContext, evt *Event) { innerErr = eng.Run() })

	_, err := eng.ScheduleEvent(src, 1, nil)
	require.NoError(t, err)

	require.NoError(t, eng.Run())
	assert.True(t, errors.Is(innerErr, ErrEngineAlreadyRunning))
}

func TestScheduleEventRejectsNegativeDelay(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("invalid")
	_, err := eng.ScheduleEvent(src, -1, nil)
	var invalidArg *InvalidArgumentError
	assert.True(t, errors.As(err, &invalidArg))
}

func TestScheduleEventAtSnapsPastFireTimeToNow(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("past-fire-time")
	_, err := eng.ScheduleEvent(src, 10, nil)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	evt, err := eng.ScheduleEventAt(src, -1, nil)
	require.NoError(t, err)
	require.NotNil(t, evt)
	assert.Equal(t, eng.Now(), evt.FireTime)
}

func TestResetClearsClockAndEvents(t *testing.T) {
	eng := NewEngine()
	src := eng.NewEventSource("persists-across-reset")
	fires := 0
	src.Subscribe(func(ctx EngineContext, evt *Event) { fires++ })

	_, err := eng.ScheduleEvent(src, 1, nil)
	require.NoError(t, err)
	require.NoError(t, eng.Run())
	assert.Equal(t, 1, fires)

	eng.Reset()
	assert.Equal(t, float64(0), eng.Now())

	require.NoError(t, eng.Run())
	assert.Equal(t, 1, fires)
}
