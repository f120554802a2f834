package out

import (
	"context"
	"time"

	pacingout "yomite/internal/modules/pacing/port/out"
	"yomite/internal/platform/clock"
)

// LoopScheduler is an explicit frame loop for headless runs. It must be
// driven from a single goroutine.
type LoopScheduler struct {
	clock    clock.Clock
	interval time.Duration
	next     pacingout.FrameHandle
	pending  map[pacingout.FrameHandle]pacingout.FrameFunc
	order    []pacingout.FrameHandle
}

func NewLoopScheduler(clk clock.Clock, interval time.Duration) *LoopScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &LoopScheduler{clock: clk, interval: interval, pending: map[pacingout.FrameHandle]pacingout.FrameFunc{}}
}

func (s *LoopScheduler) RequestFrame(fn pacingout.FrameFunc) pacingout.FrameHandle {
	s.next++
	s.pending[s.next] = fn
	s.order = append(s.order, s.next)
	return s.next
}

func (s *LoopScheduler) CancelFrame(handle pacingout.FrameHandle) {
	delete(s.pending, handle)
}

func (s *LoopScheduler) Pending() int { return len(s.pending) }

// Step runs the frames that were pending when it was called. Frames
// requested meanwhile wait for the next step.
func (s *LoopScheduler) Step(now time.Time) int {
	batch := s.order
	s.order = nil
	ran := 0
	for _, handle := range batch {
		fn, ok := s.pending[handle]
		if !ok {
			continue
		}
		delete(s.pending, handle)
		fn(now)
		ran++
	}
	return ran
}

// Run steps once per interval until no frames remain or ctx is done.
func (s *LoopScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for s.Pending() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step(s.clock.Now())
		}
	}
	return nil
}
