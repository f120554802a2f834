package in

import (
	"context"

	"yomite/internal/modules/deck/dto"
)

type Usecase interface {
	Catalog(ctx context.Context) ([]dto.CardOutput, error)
	Sections(ctx context.Context, sortMode string) ([]dto.SectionOutput, error)
	Selection(ctx context.Context) (dto.SelectionOutput, error)
	Toggle(ctx context.Context, ids ...int) (dto.SelectionOutput, error)
	ToggleMatrix(ctx context.Context, axis string, index int) (dto.SelectionOutput, error)
	SetSelection(ctx context.Context, ids []int) (dto.SelectionOutput, error)
	Setup(ctx context.Context) (dto.DeckOutput, error)
	Status(ctx context.Context) (dto.DeckOutput, error)
	Next(ctx context.Context) (dto.DeckOutput, error)
	Prev(ctx context.Context) (dto.DeckOutput, error)
	Exit(ctx context.Context) error
}
