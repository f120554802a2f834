package domain

import "time"

// Status is the lifecycle position of a timer run.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ProgressSample is the value handed to the update callback once per tick.
type ProgressSample struct {
	ClampedElapsedMs float64
	TotalMs          float64
	Fraction         float64
	SegmentIndex     int
}

// Elapsed converts the clamped elapsed milliseconds to a duration.
func (s ProgressSample) Elapsed() time.Duration {
	return time.Duration(s.ClampedElapsedMs * float64(time.Millisecond))
}

// Remaining is the time left until the cycle total, never negative.
func (s ProgressSample) Remaining() time.Duration {
	left := s.TotalMs - s.ClampedElapsedMs
	if left < 0 {
		left = 0
	}
	return time.Duration(left * float64(time.Millisecond))
}

// Degrees maps the fraction onto the ring.
func (s ProgressSample) Degrees() float64 { return s.Fraction * 360 }
