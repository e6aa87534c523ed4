package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedSweeper blocks every sweep until release is closed.
type gatedSweeper struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	now     time.Time
}

func newGatedSweeper() *gatedSweeper {
	return &gatedSweeper{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
		now:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (g *gatedSweeper) ProcessSweep(ctx context.Context, now time.Time) domain.SweepResult {
	g.calls.Add(1)
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return domain.SweepResult{Processed: 3, Errors: []string{}}
}

func (g *gatedSweeper) Now() time.Time {
	return g.now
}

func TestTriggerSweep_SingleFlight(t *testing.T) {
	sweeper := newGatedSweeper()
	s := scheduler.New(sweeper, scheduler.Config{Interval: time.Hour})

	done := make(chan bool)
	go func() {
		_, ran := s.TriggerSweep(context.Background())
		done <- ran
	}()
	<-sweeper.entered

	assert.True(t, s.Status().Running)
	result, ran := s.TriggerSweep(context.Background())
	assert.False(t, ran)
	assert.Zero(t, result.Processed)

	close(sweeper.release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), sweeper.calls.Load())

	status := s.Status()
	assert.False(t, status.Running)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 3, status.LastResult.Processed)
	require.NotNil(t, status.LastRunAt)
	assert.Equal(t, sweeper.now, *status.LastRunAt)

	_, ran = s.TriggerSweep(context.Background())
	assert.True(t, ran, "guard is released after a sweep")
}

func TestRun_SweepsOnStartAndTicks(t *testing.T) {
	sweeper := newGatedSweeper()
	close(sweeper.release)
	s := scheduler.New(sweeper, scheduler.Config{Interval: 10 * time.Millisecond, RunOnStart: true})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error)
	go func() { stopped <- s.Run(ctx) }()

	<-sweeper.entered
	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStatus_BeforeFirstRun(t *testing.T) {
	s := scheduler.New(newGatedSweeper(), scheduler.Config{Interval: time.Hour})

	status := s.Status()
	assert.False(t, status.Running)
	assert.Nil(t, status.LastRunAt)
	assert.Nil(t, status.LastResult)
}
