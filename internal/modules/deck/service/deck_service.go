package service

import (
	"math/rand"

	"yomite/internal/modules/deck/domain"
	deckout "yomite/internal/modules/deck/port/out"
)

type DeckService struct {
	rng *rand.Rand
}

func NewDeckService(rng *rand.Rand) *DeckService {
	return &DeckService{rng: rng}
}

func (s *DeckService) Build(catalog deckout.Catalog, selection domain.Selection) (domain.Deck, error) {
	return domain.BuildDeck(catalog.Joka, catalog.Cards, selection.IDs(), s.rng)
}

// Restore rebuilds the persisted deck against the current catalog and
// reports ids that no longer exist.
func (s *DeckService) Restore(catalog deckout.Catalog, state domain.State) (domain.Deck, []int) {
	index := make(map[int]domain.Card, len(catalog.Cards)+1)
	index[catalog.Joka.ID] = catalog.Joka
	for _, card := range catalog.Cards {
		index[card.ID] = card
	}
	return domain.RestoreDeck(state, index)
}
