package common

import (
	"time"
)

// Clock returns the current time. Tests replace it to control expiry.
type Clock func() time.Time

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	Timeout   time.Duration
	startTime time.Time
	Running   bool
	now       Clock
}

func NewStopwatch(timeout time.Duration) Stopwatch {
	return NewStopwatchWithClock(timeout, time.Now)
}

func NewStopwatchWithClock(timeout time.Duration, now Clock) Stopwatch {
	if now == nil {
		now = time.Now
	}
	return Stopwatch{Timeout: timeout, now: now}
}

func (s *Stopwatch) Start() {
	s.Running = true
	s.startTime = s.clock()()
}

func (s *Stopwatch) Stop() {
	s.Running = false
}

// Deadline is the moment the timeout is reached
func (s *Stopwatch) Deadline() time.Time {
	return s.startTime.Add(s.Timeout)
}

// Report if the timeout has been reached, together with the time
// elapsed since then.
// A stopwatch that was never started is always stopped
func (s *Stopwatch) Stopped() (bool, time.Duration) {
	if !s.Running {
		return true, 0
	}
	elapsed := s.TimeStopped()
	return elapsed >= 0, elapsed
}

// Return the time elapsed since this stopwatch
// stopped (reached its timeout).
// Note that if the number is negative, the timeout still
// has not been reached
func (s *Stopwatch) TimeStopped() time.Duration {
	return s.clock()().Sub(s.Deadline())
}

func (s *Stopwatch) clock() Clock {
	if s.now == nil {
		return time.Now
	}
	return s.now
}
