package usecase

import (
	"context"
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"yomite/internal/modules/session/domain"
	sessiondto "yomite/internal/modules/session/dto"
	sessionin "yomite/internal/modules/session/port/in"
	sessionout "yomite/internal/modules/session/port/out"
	"yomite/internal/modules/session/service"
	apperrors "yomite/internal/platform/errors"
)

type Interactor struct {
	svc         *service.SessionService
	activeStore sessionout.ActiveSessionStore
	logger      hclog.Logger
}

func NewInteractor(svc *service.SessionService, activeStore sessionout.ActiveSessionStore, logger hclog.Logger) sessionin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{svc: svc, activeStore: activeStore, logger: logger}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	if i.activeStore != nil {
		_, err := i.activeStore.LoadActive(ctx)
		if err == nil {
			return sessiondto.StartOutput{}, apperrors.ErrActiveSessionExists
		}
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return sessiondto.StartOutput{}, err
		}
	}

	active, err := i.svc.Start(ctx, input.Title, input.DeckSize, input.UnitSeconds)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	if i.activeStore != nil {
		if err := i.activeStore.SaveActive(ctx, active); err != nil {
			return sessiondto.StartOutput{}, err
		}
	}
	i.logger.Info("session started", "id", active.SessionID, "deck_size", active.DeckSize)
	return sessiondto.StartOutput{SessionID: active.SessionID, StartedAt: active.StartedAt}, nil
}

func (i *Interactor) RecordCycle(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, err := i.loadActive(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	active.Cycles++
	if err := i.activeStore.SaveActive(ctx, active); err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return activeOutput(active), nil
}

func (i *Interactor) End(ctx context.Context, input sessiondto.EndInput) (sessiondto.EndOutput, error) {
	if input.CardsRead < 0 {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: cards read must be non-negative", apperrors.ErrInvalidInput)
	}
	active, err := i.loadActive(ctx)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if input.SessionID != "" && input.SessionID != active.SessionID {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: session id mismatch", apperrors.ErrInvalidInput)
	}

	session, path, err := i.svc.End(ctx, active, input.Outcome, input.CardsRead)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if err := i.activeStore.ClearActive(ctx); err != nil {
		return sessiondto.EndOutput{}, err
	}
	i.logger.Info("session ended", "id", session.ID, "cycles", session.Cycles, "path", path)
	return sessiondto.EndOutput{
		SessionID:   session.ID,
		Path:        path,
		DurationMin: session.DurationMin,
		CardsRead:   session.CardsRead,
		Cycles:      session.Cycles,
	}, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, err := i.loadActive(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return activeOutput(active), nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error) {
	sessions, err := i.svc.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.SessionOutput, len(sessions))
	for idx, s := range sessions {
		out[idx] = sessiondto.SessionOutput{
			SessionID:   s.ID,
			Title:       s.Title,
			StartedAt:   s.StartedAt,
			DurationMin: s.DurationMin,
			CardsRead:   s.CardsRead,
			Cycles:      s.Cycles,
			UnitSeconds: s.UnitSeconds,
			Outcome:     s.Outcome,
		}
	}
	return out, nil
}

func (i *Interactor) loadActive(ctx context.Context) (domain.ActiveSession, error) {
	if i.activeStore == nil {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return i.activeStore.LoadActive(ctx)
}

func activeOutput(active domain.ActiveSession) sessiondto.ActiveSessionOutput {
	return sessiondto.ActiveSessionOutput{
		SessionID:   active.SessionID,
		Title:       active.Title,
		StartedAt:   active.StartedAt,
		DeckSize:    active.DeckSize,
		UnitSeconds: active.UnitSeconds,
		Cycles:      active.Cycles,
	}
}
