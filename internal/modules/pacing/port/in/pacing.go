package in

import (
	"context"

	"yomite/internal/modules/pacing/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) error
	Reset(ctx context.Context, onReset func())
	IsRunning() bool
	Pace(ctx context.Context) (dto.PaceOutput, error)
	SetUnitSeconds(ctx context.Context, value float64) (dto.PaceOutput, error)
	Segments(ctx context.Context) ([]dto.SegmentOutput, error)
	Ring(ctx context.Context) ([]dto.ArcOutput, error)
}
