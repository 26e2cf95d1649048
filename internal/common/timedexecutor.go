package common

import (
	"sync"
	"time"
)

// Give the timed executor a task and a timeout.
// Call the execute function from time to time.
// If the function gets called when the timeout has been reached,
// the provided task will execute. If not, the call will do nothing
type TimedExecutor struct {
	mu        sync.Mutex
	stopwatch Stopwatch
	task      func() error
}

// Create a timed executor provided a timeout and a task
func NewTimedExecutor(timeout time.Duration, task func() error) *TimedExecutor {
	return NewTimedExecutorWithClock(timeout, task, time.Now)
}

func NewTimedExecutorWithClock(timeout time.Duration, task func() error, now Clock) *TimedExecutor {
	return &TimedExecutor{stopwatch: NewStopwatchWithClock(timeout, now), task: task}
}

// Execute the task if the timeout has been reached, else do nothing.
// A failed task does not restart the timeout, so the next call retries
func (te *TimedExecutor) Execute() (bool, error) {
	te.mu.Lock()
	defer te.mu.Unlock()
	if stopped, _ := te.stopwatch.Stopped(); !stopped {
		return false, nil
	}
	return true, te.run()
}

// Execute the task now regardless of the timeout
func (te *TimedExecutor) Force() error {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.run()
}

// Make the next call to Execute run the task
func (te *TimedExecutor) Expire() {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.stopwatch.Stop()
}

// Restart the timeout without running the task
func (te *TimedExecutor) Touch() {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.stopwatch.Start()
}

func (te *TimedExecutor) run() error {
	if err := te.task(); err != nil {
		return err
	}
	te.stopwatch.Start()
	return nil
}
