package in

import (
	"context"

	pacingdto "yomite/internal/modules/pacing/dto"
	pacingin "yomite/internal/modules/pacing/port/in"
)

type CLIHandler struct {
	usecase pacingin.Usecase
}

func NewCLIHandler(usecase pacingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, input pacingdto.StartInput) error {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) Reset(ctx context.Context) {
	h.usecase.Reset(ctx, nil)
}

func (h CLIHandler) Pace(ctx context.Context) (pacingdto.PaceOutput, error) {
	return h.usecase.Pace(ctx)
}

func (h CLIHandler) SetPace(ctx context.Context, unitSeconds float64) (pacingdto.PaceOutput, error) {
	return h.usecase.SetUnitSeconds(ctx, unitSeconds)
}

func (h CLIHandler) Segments(ctx context.Context) ([]pacingdto.SegmentOutput, error) {
	return h.usecase.Segments(ctx)
}

func (h CLIHandler) Ring(ctx context.Context) ([]pacingdto.ArcOutput, error) {
	return h.usecase.Ring(ctx)
}
