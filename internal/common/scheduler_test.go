package common

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerAdd(t *testing.T) {
	s := NewScheduler()
	noop := func(context.Context) {}

	assert.Error(t, s.Add(Task{Every: time.Second, Action: noop}), "name is required")
	assert.Error(t, s.Add(Task{Name: "fast", Every: 500 * time.Millisecond, Action: noop}))
	require.NoError(t, s.Add(Task{Name: "stats", Every: 10 * time.Second, Action: noop}))
	require.NoError(t, s.Add(Task{Name: "presence", Every: 30 * time.Second, Action: noop}))
	assert.Error(t, s.Add(Task{Name: "stats", Every: time.Minute, Action: noop}), "duplicate name")

	assert.Equal(t, []string{"presence", "stats"}, s.Names())
}

func TestSchedulerFirstRun(t *testing.T) {
	s := NewScheduler()
	ran := make(chan string, 2)
	require.NoError(t, s.Add(Task{Name: "now", Every: time.Hour, Action: func(context.Context) { ran <- "now" }}))
	require.NoError(t, s.Add(Task{Name: "later", Every: time.Hour, Delay: time.Hour, Action: func(context.Context) { ran <- "later" }}))
	require.NoError(t, s.Add(Task{Name: "panics", Every: time.Hour, Action: func(context.Context) { panic("boom") }}))

	s.Start()
	select {
	case name := <-ran:
		assert.Equal(t, "now", name)
	case <-time.After(time.Second):
		t.Fatal("task without delay did not run on start")
	}
	s.Stop()

	select {
	case name := <-ran:
		t.Fatalf("unexpected run of %s", name)
	default:
	}
}

func TestSchedulerStoppedContext(t *testing.T) {
	s := NewScheduler()
	s.Stop()
	ran := false
	s.run(Task{Name: "late", Action: func(context.Context) { ran = true }})
	assert.False(t, ran, "no runs after stop")
}

func TestPeriodNext(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	delayed := &period{every: 1500 * time.Millisecond, delay: 10 * time.Second}
	first := delayed.Next(start)
	assert.Equal(t, start.Add(10*time.Second), first)
	assert.Equal(t, first.Add(1500*time.Millisecond), delayed.Next(first), "the period keeps its milliseconds")

	immediate := &period{every: 1500 * time.Millisecond}
	assert.Equal(t, start.Add(1500*time.Millisecond), immediate.Next(start))
}

// Counts the runs of one task during the given time
func countRuns(t *testing.T, task Task, during time.Duration) int32 {
	var runs atomic.Int32
	task.Name = "counted"
	task.Action = func(context.Context) { runs.Add(1) }

	s := NewScheduler()
	require.NoError(t, s.Add(task))
	s.Start()
	time.Sleep(during)
	s.Stop()
	return runs.Load()
}

func TestSchedulerDelayedTaskRunsOncePerPeriod(t *testing.T) {
	assert.Equal(t, int32(1), countRuns(t, Task{Every: time.Second, Delay: time.Second}, 1500*time.Millisecond))
}

func TestSchedulerExactPeriod(t *testing.T) {
	// On start, then at 1.5s and 3s
	assert.Equal(t, int32(3), countRuns(t, Task{Every: 1500 * time.Millisecond}, 3200*time.Millisecond))
}
