package usecase

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"yomite/internal/modules/plugin/domain"
	"yomite/internal/modules/plugin/dto"
	pluginin "yomite/internal/modules/plugin/port/in"
	"yomite/internal/modules/plugin/service"
	apperrors "yomite/internal/platform/errors"
)

type Interactor struct {
	svc    *service.PluginService
	logger hclog.Logger
}

func NewInteractor(svc *service.PluginService, logger hclog.Logger) pluginin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{svc: svc, logger: logger.Named("plugin")}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Dispatch(ctx context.Context, input dto.EventInput) ([]dto.DispatchResult, error) {
	event := domain.Event{
		Kind:         domain.EventKind(input.Kind),
		SegmentIndex: input.SegmentIndex,
		SegmentLabel: input.SegmentLabel,
		CardID:       input.CardID,
		At:           input.At,
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	results, err := i.svc.Dispatch(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", event.Kind, err)
	}
	for _, r := range results {
		if r.Error != "" {
			i.logger.Warn("cue plugin failed", "plugin", r.Name, "event", event.Kind, "error", r.Error)
		}
	}
	return results, nil
}
