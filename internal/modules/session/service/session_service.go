package service

import (
	"context"
	"fmt"
	"strings"

	"yomite/internal/modules/session/domain"
	sessionout "yomite/internal/modules/session/port/out"
	"yomite/internal/platform/clock"
	apperrors "yomite/internal/platform/errors"
	"yomite/internal/platform/id"
)

const defaultTitle = "practice"

type SessionService struct {
	clock clock.Clock
	idGen id.Generator
	store sessionout.SessionStore
}

func NewSessionService(clock clock.Clock, idGen id.Generator, store sessionout.SessionStore) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, store: store}
}

func (s *SessionService) Start(_ context.Context, title string, deckSize int, unitSeconds float64) (domain.ActiveSession, error) {
	if deckSize < 0 {
		return domain.ActiveSession{}, fmt.Errorf("%w: deck size must be non-negative", apperrors.ErrInvalidInput)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}
	return domain.ActiveSession{
		SessionID:   s.idGen.New(),
		Title:       title,
		StartedAt:   s.clock.Now(),
		DeckSize:    deckSize,
		UnitSeconds: unitSeconds,
	}, nil
}

func (s *SessionService) End(ctx context.Context, active domain.ActiveSession, outcome string, cardsRead int) (domain.Session, string, error) {
	endedAt := s.clock.Now()
	duration := int(endedAt.Sub(active.StartedAt).Minutes())
	if duration < 0 {
		duration = 0
	}
	if cardsRead > active.DeckSize && active.DeckSize > 0 {
		cardsRead = active.DeckSize
	}
	session := domain.Session{
		ID:          active.SessionID,
		Title:       active.Title,
		StartedAt:   active.StartedAt,
		EndedAt:     endedAt,
		DurationMin: duration,
		DeckSize:    active.DeckSize,
		CardsRead:   cardsRead,
		Cycles:      active.Cycles,
		UnitSeconds: active.UnitSeconds,
		Outcome:     outcome,
	}
	path, err := s.store.Save(ctx, session)
	if err != nil {
		return domain.Session{}, "", err
	}
	return session, path, nil
}

func (s *SessionService) History(ctx context.Context, limit int) ([]domain.Session, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}
