package out

import (
	"context"

	"yomite/internal/modules/deck/domain"
)

// Catalog is the full card set known to the app.
type Catalog struct {
	Joka  domain.Card
	Cards []domain.Card
}

type CardSource interface {
	LoadCatalog(ctx context.Context) (Catalog, error)
}

// StateStore persists practice progress. Load returns apperrors.ErrNotFound
// when nothing was saved yet.
type StateStore interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
}
