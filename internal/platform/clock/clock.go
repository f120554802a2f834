package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall time in UTC. It is meant for timestamps that get
// persisted; UTC conversion drops the monotonic reading.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// MonotonicClock keeps the monotonic reading so that subtracting two samples
// is immune to wall clock adjustments. Use it for elapsed time only.
type MonotonicClock struct{}

func (MonotonicClock) Now() time.Time {
	return time.Now()
}
