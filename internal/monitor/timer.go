// Package monitor records how long each pipeline stage takes.
package monitor

import (
	"math"
	"time"

	"go.uber.org/atomic"
)

// Timer is a thread-safe accumulator of durations
type Timer struct {
	count     *atomic.Int64
	totalTime *atomic.Int64
	minTime   *atomic.Int64
	maxTime   *atomic.Int64
}

// NewTimer creates an empty timer
func NewTimer() *Timer {
	return &Timer{
		count:     atomic.NewInt64(0),
		totalTime: atomic.NewInt64(0),
		minTime:   atomic.NewInt64(math.MaxInt64),
		maxTime:   atomic.NewInt64(0),
	}
}

// Record adds one measurement
func (t *Timer) Record(duration time.Duration) {
	nanos := duration.Nanoseconds()

	t.count.Inc()
	t.totalTime.Add(nanos)

	for {
		current := t.minTime.Load()
		if nanos >= current || t.minTime.CompareAndSwap(current, nanos) {
			break
		}
	}
	for {
		current := t.maxTime.Load()
		if nanos <= current || t.maxTime.CompareAndSwap(current, nanos) {
			break
		}
	}
}

// Count returns the number of measurements
func (t *Timer) Count() int64 {
	return t.count.Load()
}

// TotalTime returns the sum of all measurements
func (t *Timer) TotalTime() time.Duration {
	return time.Duration(t.totalTime.Load())
}

// MinTime returns the shortest measurement, or zero when empty
func (t *Timer) MinTime() time.Duration {
	if t.count.Load() == 0 {
		return 0
	}
	return time.Duration(t.minTime.Load())
}

// MaxTime returns the longest measurement
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(t.maxTime.Load())
}

// AvgTime returns the mean measurement
func (t *Timer) AvgTime() time.Duration {
	count := t.count.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(t.totalTime.Load() / count)
}
