package usecase_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/spf13/afero"

	deckadapter "yomite/internal/modules/deck/adapter/out"
	"yomite/internal/modules/deck/domain"
	deckin "yomite/internal/modules/deck/port/in"
	"yomite/internal/modules/deck/service"
	"yomite/internal/modules/deck/usecase"
	apperrors "yomite/internal/platform/errors"
)

type memoryStateStore struct {
	state domain.State
	saved bool
	saves int
}

func (s *memoryStateStore) Load(context.Context) (domain.State, error) {
	if !s.saved {
		return domain.State{}, apperrors.ErrNotFound
	}
	return s.state, nil
}

func (s *memoryStateStore) Save(_ context.Context, state domain.State) error {
	s.state, s.saved = state, true
	s.saves++
	return nil
}

func newDeckUsecase(store *memoryStateStore) deckin.Usecase {
	return usecase.NewInteractor(
		service.NewDeckService(rand.New(rand.NewSource(42))),
		deckadapter.NewYAMLCardSource(afero.NewMemMapFs(), ""),
		store,
		nil,
		usecase.Options{},
	)
}

func TestDeckLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryStateStore{}
	uc := newDeckUsecase(store)

	if _, err := uc.Status(ctx); !errors.Is(err, apperrors.ErrNoActiveDeck) {
		t.Fatalf("expected no active deck, got %v", err)
	}
	sel, err := uc.Selection(ctx)
	if err != nil || len(sel.IDs) != 7 {
		t.Fatalf("default selection expected, got %v %v", sel.IDs, err)
	}

	deck, err := uc.Setup(ctx)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if deck.Progress != "1 / 7" || deck.CanPrev || !deck.CanNext || deck.Previous.CardID != domain.JokaID {
		t.Fatalf("unexpected fresh deck %+v", deck)
	}
	if !deck.Current.DimLower || !deck.Previous.DimUpper {
		t.Fatalf("dimming roles not applied")
	}
	if store.state.DeckIDs[0] != domain.JokaID || len(store.state.DeckIDs) != 8 || store.state.Index != 1 {
		t.Fatalf("deck not persisted: %+v", store.state)
	}

	first := deck.Current.CardID
	deck, err = uc.Next(ctx)
	if err != nil || !deck.Moved || deck.Previous.CardID != first || deck.Index != 2 {
		t.Fatalf("next: %+v %v", deck, err)
	}
	deck, _ = uc.Prev(ctx)
	deck, _ = uc.Prev(ctx)
	if deck.Moved || deck.Index != 1 {
		t.Fatalf("prev must stop at the first card: %+v", deck)
	}
	for i := 0; i < 10; i++ {
		deck, _ = uc.Next(ctx)
	}
	if deck.Index != 7 || deck.CanNext || deck.Moved {
		t.Fatalf("next must stop at the last card: %+v", deck)
	}

	if err := uc.Exit(ctx); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if _, err := uc.Next(ctx); !errors.Is(err, apperrors.ErrNoActiveDeck) {
		t.Fatalf("navigation after exit should fail, got %v", err)
	}
	if len(store.state.Selected) != 7 || len(store.state.DeckIDs) != 0 || store.state.Index != 1 {
		t.Fatalf("exit keeps selection only: %+v", store.state)
	}
}

func TestDeckRestoresPersistedState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryStateStore{saved: true, state: domain.State{DeckIDs: []int{0, 87, 18, 57}, Index: 3, Selected: []int{18, 57, 87}}}
	uc := newDeckUsecase(store)
	deck, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if deck.Current.CardID != 57 || deck.Previous.CardID != 18 || deck.Progress != "3 / 3" {
		t.Fatalf("restored deck mismatch %+v", deck)
	}
	sel, _ := uc.Selection(ctx)
	if len(sel.IDs) != 3 {
		t.Fatalf("restored selection mismatch %v", sel.IDs)
	}
}

func TestSelectionEditsAndEmptySetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryStateStore{}
	uc := newDeckUsecase(store)

	sel, err := uc.Toggle(ctx, 87)
	if err != nil || len(sel.IDs) != 6 {
		t.Fatalf("toggle: %v %v", sel.IDs, err)
	}
	sel, _ = uc.Toggle(ctx, 87, 18)
	if len(sel.IDs) != 7 {
		t.Fatalf("batch with one missing id selects all: %v", sel.IDs)
	}
	if _, err := uc.Toggle(ctx); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("empty toggle should be invalid")
	}
	if _, err := uc.SetSelection(ctx, nil); err != nil {
		t.Fatalf("clear selection: %v", err)
	}
	if _, err := uc.Setup(ctx); !errors.Is(err, apperrors.ErrInvalidInput) || !errors.Is(err, domain.ErrEmptySelection) {
		t.Fatalf("empty selection should fail setup, got %v", err)
	}

	sections, err := uc.Sections(ctx, "group")
	if err != nil || len(sections) != 7 || sections[0].Key != "む" || sections[6].Key != "せ" {
		t.Fatalf("group sections: %+v %v", sections, err)
	}
	if _, err := uc.Sections(ctx, "bogus"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown sort should be invalid input, got %v", err)
	}
}

func TestToggleMatrixLimitsBatchToCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newDeckUsecase(&memoryStateStore{})

	sel, err := uc.ToggleMatrix(ctx, "column", 7)
	if err != nil || len(sel.IDs) != 4 {
		t.Fatalf("column 7 holds 57, 77 and 87, all selected, so all drop: %v %v", sel.IDs, err)
	}
	sel, err = uc.ToggleMatrix(ctx, "column", 7)
	if err != nil || len(sel.IDs) != 7 {
		t.Fatalf("second toggle should reselect: %v %v", sel.IDs, err)
	}
	sel, err = uc.ToggleMatrix(ctx, "row", 8)
	if err != nil || len(sel.IDs) != 5 {
		t.Fatalf("row 8 holds 81 and 87: %v %v", sel.IDs, err)
	}
	if _, err := uc.ToggleMatrix(ctx, "row", 3); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("empty row should be not found, got %v", err)
	}
	if _, err := uc.ToggleMatrix(ctx, "diagonal", 1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown axis should be invalid, got %v", err)
	}
	if _, err := uc.ToggleMatrix(ctx, "row", 10); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("out of range index should be invalid, got %v", err)
	}
}
