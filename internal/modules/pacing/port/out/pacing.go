package out

import (
	"context"
	"time"
)

// FrameFunc receives the timestamp of the frame it runs in.
type FrameFunc func(now time.Time)

// FrameHandle identifies a requested frame; zero is never issued.
type FrameHandle uint64

// FrameScheduler delivers one-shot frame callbacks on the caller's thread of
// control, one after another.
type FrameScheduler interface {
	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(handle FrameHandle)
}

// PaceStore persists the unit seconds pacing value.
type PaceStore interface {
	LoadUnitSeconds(ctx context.Context) (float64, error)
	SaveUnitSeconds(ctx context.Context, value float64) error
}
