package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"yomite/internal/modules/deck/domain"
	deckdto "yomite/internal/modules/deck/dto"
	deckin "yomite/internal/modules/deck/port/in"
	deckout "yomite/internal/modules/deck/port/out"
	"yomite/internal/modules/deck/service"
	apperrors "yomite/internal/platform/errors"
)

type Options struct {
	// Annotate appends ruby readings to rendered verses.
	Annotate bool
}

type Interactor struct {
	svc    *service.DeckService
	source deckout.CardSource
	store  deckout.StateStore
	logger hclog.Logger
	opts   Options

	// mu guards everything below.
	mu        sync.Mutex
	loaded    bool
	catalog   deckout.Catalog
	deck      domain.Deck
	selection domain.Selection
}

func NewInteractor(svc *service.DeckService, source deckout.CardSource, store deckout.StateStore, logger hclog.Logger, opts Options) deckin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{svc: svc, source: source, store: store, logger: logger, opts: opts}
}

func (i *Interactor) Catalog(ctx context.Context) ([]deckdto.CardOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]deckdto.CardOutput, len(i.catalog.Cards))
	for idx, card := range i.catalog.Cards {
		out[idx] = i.cardOutput(card)
	}
	return out, nil
}

func (i *Interactor) Sections(ctx context.Context, sortMode string) ([]deckdto.SectionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	mode, err := domain.ParseSortMode(sortMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	if err := i.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	sections := domain.Sections(i.catalog.Cards, mode)
	out := make([]deckdto.SectionOutput, len(sections))
	for idx, section := range sections {
		cards := make([]deckdto.CardOutput, len(section.Cards))
		for j, card := range section.Cards {
			cards[j] = i.cardOutput(card)
		}
		out[idx] = deckdto.SectionOutput{Key: section.Key, Cards: cards}
	}
	return out, nil
}

func (i *Interactor) Selection(ctx context.Context) (deckdto.SelectionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return deckdto.SelectionOutput{}, err
	}
	return deckdto.SelectionOutput{IDs: i.selection.IDs()}, nil
}

// Toggle flips a single id, or batch toggles several at once.
func (i *Interactor) Toggle(ctx context.Context, ids ...int) (deckdto.SelectionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(ids) == 0 {
		return deckdto.SelectionOutput{}, fmt.Errorf("%w: no ids to toggle", apperrors.ErrInvalidInput)
	}
	if err := i.ensureLoaded(ctx); err != nil {
		return deckdto.SelectionOutput{}, err
	}
	if len(ids) == 1 {
		i.selection = i.selection.Toggle(ids[0])
	} else {
		i.selection = i.selection.BatchToggle(ids)
	}
	if err := i.save(ctx); err != nil {
		return deckdto.SelectionOutput{}, err
	}
	return deckdto.SelectionOutput{IDs: i.selection.IDs()}, nil
}

// ToggleMatrix batch toggles one row or column of the id matrix, limited to
// cards the catalog actually has.
func (i *Interactor) ToggleMatrix(ctx context.Context, axis string, index int) (deckdto.SelectionOutput, error) {
	if index < 0 || index > 9 {
		return deckdto.SelectionOutput{}, fmt.Errorf("%w: matrix index %d out of range", apperrors.ErrInvalidInput, index)
	}
	var ids []int
	switch axis {
	case "row":
		ids = domain.RowIDs(index)
	case "column":
		ids = domain.ColumnIDs(index)
	default:
		return deckdto.SelectionOutput{}, fmt.Errorf("%w: unknown matrix axis %q", apperrors.ErrInvalidInput, axis)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return deckdto.SelectionOutput{}, err
	}
	known := make(map[int]struct{}, len(i.catalog.Cards))
	for _, card := range i.catalog.Cards {
		known[card.ID] = struct{}{}
	}
	batch := ids[:0]
	for _, id := range ids {
		if _, ok := known[id]; ok {
			batch = append(batch, id)
		}
	}
	if len(batch) == 0 {
		return deckdto.SelectionOutput{}, fmt.Errorf("%w: no cards in %s %d", apperrors.ErrNotFound, axis, index)
	}
	i.selection = i.selection.BatchToggle(batch)
	if err := i.save(ctx); err != nil {
		return deckdto.SelectionOutput{}, err
	}
	return deckdto.SelectionOutput{IDs: i.selection.IDs()}, nil
}

func (i *Interactor) SetSelection(ctx context.Context, ids []int) (deckdto.SelectionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return deckdto.SelectionOutput{}, err
	}
	i.selection = domain.NewSelection(ids...)
	if err := i.save(ctx); err != nil {
		return deckdto.SelectionOutput{}, err
	}
	return deckdto.SelectionOutput{IDs: i.selection.IDs()}, nil
}

func (i *Interactor) Setup(ctx context.Context) (deckdto.DeckOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return deckdto.DeckOutput{}, err
	}
	deck, err := i.svc.Build(i.catalog, i.selection)
	if err != nil {
		if errors.Is(err, domain.ErrEmptySelection) {
			return deckdto.DeckOutput{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
		}
		return deckdto.DeckOutput{}, err
	}
	i.deck = deck
	if err := i.save(ctx); err != nil {
		return deckdto.DeckOutput{}, err
	}
	i.logger.Info("deck built", "cards", len(deck.Cards)-1)
	return i.deckOutput(true)
}

func (i *Interactor) Status(ctx context.Context) (deckdto.DeckOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return deckdto.DeckOutput{}, err
	}
	return i.deckOutput(false)
}

func (i *Interactor) Next(ctx context.Context) (deckdto.DeckOutput, error) {
	return i.move(ctx, domain.Deck.Next)
}

func (i *Interactor) Prev(ctx context.Context) (deckdto.DeckOutput, error) {
	return i.move(ctx, domain.Deck.Prev)
}

// Exit drops the deck but keeps the selection for the next setup.
func (i *Interactor) Exit(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return err
	}
	i.deck = domain.Deck{Index: 1}
	return i.save(ctx)
}

func (i *Interactor) move(ctx context.Context, step func(domain.Deck) (domain.Deck, bool)) (deckdto.DeckOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.ensureLoaded(ctx); err != nil {
		return deckdto.DeckOutput{}, err
	}
	if !i.deck.Active() {
		return deckdto.DeckOutput{}, apperrors.ErrNoActiveDeck
	}
	next, moved := step(i.deck)
	if moved {
		i.deck = next
		if err := i.save(ctx); err != nil {
			return deckdto.DeckOutput{}, err
		}
	}
	return i.deckOutput(moved)
}

func (i *Interactor) ensureLoaded(ctx context.Context) error {
	if i.loaded {
		return nil
	}
	catalog, err := i.source.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	i.catalog = catalog
	i.selection = domain.NewSelection(domain.DefaultSelectedIDs...)
	i.deck = domain.Deck{Index: 1}

	if i.store != nil {
		state, err := i.store.Load(ctx)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
		case err != nil:
			return err
		default:
			i.selection = domain.NewSelection(state.Selected...)
			deck, missing := i.svc.Restore(catalog, state)
			if len(missing) > 0 {
				i.logger.Warn("dropped unknown cards from saved deck", "ids", missing)
			}
			i.deck = deck
		}
	}
	i.loaded = true
	return nil
}

func (i *Interactor) save(ctx context.Context) error {
	if i.store == nil {
		return nil
	}
	state := domain.State{Index: i.deck.Index, Selected: i.selection.IDs()}
	if i.deck.Active() {
		state.DeckIDs = i.deck.IDs()
	}
	return i.store.Save(ctx, state)
}

func (i *Interactor) deckOutput(moved bool) (deckdto.DeckOutput, error) {
	if !i.deck.Active() {
		return deckdto.DeckOutput{}, apperrors.ErrNoActiveDeck
	}
	current, err := i.tanka(i.deck.Current(), true)
	if err != nil {
		return deckdto.DeckOutput{}, err
	}
	out := deckdto.DeckOutput{
		Index:    i.deck.Index,
		Total:    len(i.deck.Cards) - 1,
		Progress: i.deck.Progress(),
		Current:  current,
		CanPrev:  i.deck.CanPrev(),
		CanNext:  i.deck.CanNext(),
		Moved:    moved,
	}
	if prev, ok := i.deck.Previous(); ok {
		if out.Previous, err = i.tanka(prev, false); err != nil {
			return deckdto.DeckOutput{}, err
		}
	}
	return out, nil
}

func (i *Interactor) tanka(card domain.Card, upcoming bool) (deckdto.TankaOutput, error) {
	t, err := domain.RenderTanka(card, upcoming, i.opts.Annotate)
	if err != nil {
		return deckdto.TankaOutput{}, err
	}
	return deckdto.TankaOutput{CardID: card.ID, Upper: t.Upper, Lower: t.Lower, DimUpper: t.DimUpper, DimLower: t.DimLower}, nil
}

func (i *Interactor) cardOutput(card domain.Card) deckdto.CardOutput {
	lines := make([]string, len(card.Lines))
	readings := make([]string, len(card.Lines))
	for idx, line := range card.Lines {
		lines[idx] = line.Text()
		readings[idx] = line.Annotated()
	}
	return deckdto.CardOutput{
		ID:       card.ID,
		Kimariji: card.Kimariji,
		Lines:    lines,
		Readings: readings,
		Selected: i.selection.Has(card.ID),
	}
}
