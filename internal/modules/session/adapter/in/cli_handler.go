package in

import (
	"context"

	sessiondto "yomite/internal/modules/session/dto"
	sessionin "yomite/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, title string, deckSize int, unitSeconds float64) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Title: title, DeckSize: deckSize, UnitSeconds: unitSeconds})
}

func (h CLIHandler) End(ctx context.Context, sessionID, outcome string, cardsRead int) (sessiondto.EndOutput, error) {
	return h.usecase.End(ctx, sessiondto.EndInput{SessionID: sessionID, Outcome: outcome, CardsRead: cardsRead})
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) RecordCycle(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.RecordCycle(ctx)
}
