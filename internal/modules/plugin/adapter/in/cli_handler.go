package in

import (
	"context"

	"yomite/internal/modules/plugin/dto"
	pluginin "yomite/internal/modules/plugin/port/in"
)

type CLIHandler struct {
	usecase pluginin.Usecase
}

func NewCLIHandler(usecase pluginin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Dispatch(ctx context.Context, input dto.EventInput) ([]dto.DispatchResult, error) {
	return h.usecase.Dispatch(ctx, input)
}
