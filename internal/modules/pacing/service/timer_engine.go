package service

import (
	"math"
	"time"

	"yomite/internal/modules/pacing/domain"
	pacingout "yomite/internal/modules/pacing/port/out"
	"yomite/internal/platform/clock"
)

// DefaultMinUnitSeconds is the floor applied to unusable pacing values.
const DefaultMinUnitSeconds = 0.1

// UnitSecondsFunc is read on every frame so pacing changes apply live.
type UnitSecondsFunc func() float64

// TimerEngine drives one segmented countdown at a time. It is not safe for
// concurrent use; callbacks run synchronously inside frames and may call
// Reset or Start.
type TimerEngine struct {
	clock     clock.Clock
	scheduler pacingout.FrameScheduler
	minUnit   float64

	status     domain.Status
	carriedMs  float64
	startedAt  time.Time
	generation uint64
	pending    pacingout.FrameHandle

	model       domain.SegmentModel
	unitSeconds UnitSecondsFunc
	onUpdate    func(domain.ProgressSample)
	onComplete  func()
}

type EngineOption func(*TimerEngine)

// WithMinUnitSeconds overrides the clamp floor. Non-positive values are ignored.
func WithMinUnitSeconds(v float64) EngineOption {
	return func(e *TimerEngine) {
		if v > 0 && !math.IsInf(v, 0) {
			e.minUnit = v
		}
	}
}

func NewTimerEngine(clk clock.Clock, scheduler pacingout.FrameScheduler, opts ...EngineOption) *TimerEngine {
	e := &TimerEngine{clock: clk, scheduler: scheduler, minUnit: DefaultMinUnitSeconds}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a cycle against model. Calling it while running is a no-op.
// Starting from Completed without a Reset completes on the first frame,
// because the carried elapsed time already covers the whole cycle.
func (e *TimerEngine) Start(model domain.SegmentModel, unitSeconds UnitSecondsFunc, onUpdate func(domain.ProgressSample), onComplete func()) error {
	if e.status == domain.StatusRunning {
		return nil
	}
	if model.Len() == 0 {
		return domain.ErrInvalidModel
	}
	e.model = model
	e.unitSeconds = unitSeconds
	e.onUpdate = onUpdate
	e.onComplete = onComplete
	e.startedAt = e.clock.Now()
	e.status = domain.StatusRunning
	e.generation++
	e.schedule()
	return nil
}

// Reset cancels any pending frame and returns to Idle, then calls onReset.
func (e *TimerEngine) Reset(onReset func()) {
	if e.pending != 0 {
		e.scheduler.CancelFrame(e.pending)
		e.pending = 0
	}
	e.generation++
	e.status = domain.StatusIdle
	e.carriedMs = 0
	e.startedAt = time.Time{}
	e.onUpdate = nil
	e.onComplete = nil
	if onReset != nil {
		onReset()
	}
}

func (e *TimerEngine) IsRunning() bool { return e.status == domain.StatusRunning }

// Status is meant for diagnostics only.
func (e *TimerEngine) Status() domain.Status { return e.status }

func (e *TimerEngine) schedule() {
	gen := e.generation
	e.pending = e.scheduler.RequestFrame(func(now time.Time) {
		e.tick(gen, now)
	})
}

func (e *TimerEngine) tick(gen uint64, now time.Time) {
	if gen != e.generation || e.status != domain.StatusRunning {
		return
	}
	e.pending = 0

	unit := e.sanitize(e.readUnitSeconds())
	elapsed := e.carriedMs + float64(now.Sub(e.startedAt))/float64(time.Millisecond)
	totalMs := e.model.TotalWeight() * 1000 * unit
	clamped := math.Min(elapsed, totalMs)
	sample := domain.ProgressSample{
		ClampedElapsedMs: clamped,
		TotalMs:          totalMs,
		Fraction:         clamped / totalMs,
		SegmentIndex:     e.model.SegmentIndexFor(clamped / (1000 * unit)),
	}

	if e.onUpdate != nil {
		e.onUpdate(sample)
	}
	if gen != e.generation {
		return
	}

	if elapsed >= totalMs {
		e.status = domain.StatusCompleted
		e.carriedMs = totalMs
		onComplete := e.onComplete
		e.onUpdate = nil
		e.onComplete = nil
		if onComplete != nil {
			onComplete()
		}
		return
	}
	e.schedule()
}

func (e *TimerEngine) readUnitSeconds() float64 {
	if e.unitSeconds == nil {
		return e.minUnit
	}
	return e.unitSeconds()
}

func (e *TimerEngine) sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return e.minUnit
	}
	return v
}
