package util

import "time"

// Timer measures how long a computation took.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer starting at current time.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the duration since start, or zero for an unstarted timer.
func (t Timer) Elapsed() time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return time.Since(t.start)
}

// ElapsedUs returns the elapsed microseconds since start.
func (t Timer) ElapsedUs() int64 {
	return t.Elapsed().Microseconds()
}

// ElapsedSeconds is the elapsed time as a float, the unit Prometheus histograms expect.
func (t Timer) ElapsedSeconds() float64 {
	return t.Elapsed().Seconds()
}
