package in

import (
	"context"

	deckdto "yomite/internal/modules/deck/dto"
	deckin "yomite/internal/modules/deck/port/in"
)

type CLIHandler struct {
	usecase deckin.Usecase
}

func NewCLIHandler(usecase deckin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Start replaces the selection when ids are given, then builds a fresh deck.
func (h CLIHandler) Start(ctx context.Context, ids []int) (deckdto.DeckOutput, error) {
	if len(ids) > 0 {
		if _, err := h.usecase.SetSelection(ctx, ids); err != nil {
			return deckdto.DeckOutput{}, err
		}
	}
	return h.usecase.Setup(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (deckdto.DeckOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Next(ctx context.Context) (deckdto.DeckOutput, error) {
	return h.usecase.Next(ctx)
}

func (h CLIHandler) Prev(ctx context.Context) (deckdto.DeckOutput, error) {
	return h.usecase.Prev(ctx)
}

func (h CLIHandler) Exit(ctx context.Context) error {
	return h.usecase.Exit(ctx)
}

func (h CLIHandler) Sections(ctx context.Context, sortMode string) ([]deckdto.SectionOutput, error) {
	return h.usecase.Sections(ctx, sortMode)
}

func (h CLIHandler) Selection(ctx context.Context) (deckdto.SelectionOutput, error) {
	return h.usecase.Selection(ctx)
}

func (h CLIHandler) Toggle(ctx context.Context, ids ...int) (deckdto.SelectionOutput, error) {
	return h.usecase.Toggle(ctx, ids...)
}

func (h CLIHandler) ToggleMatrix(ctx context.Context, axis string, index int) (deckdto.SelectionOutput, error) {
	return h.usecase.ToggleMatrix(ctx, axis, index)
}
