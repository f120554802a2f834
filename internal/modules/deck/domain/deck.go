package domain

import (
	"fmt"
	"math/rand"
)

// Deck is a shuffled practice order. Cards[0] is the joka and reading
// starts at index 1.
type Deck struct {
	Cards []Card
	Index int
}

// BuildDeck keeps the cards whose ids are selected, shuffles them with
// Fisher-Yates and puts joka in front.
func BuildDeck(joka Card, cards []Card, selected []int, rng *rand.Rand) (Deck, error) {
	if len(selected) == 0 {
		return Deck{}, fmt.Errorf("%w: empty selection", ErrEmptySelection)
	}
	want := make(map[int]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	picked := make([]Card, 0, len(selected))
	for _, card := range cards {
		if card.ID == JokaID {
			continue
		}
		if _, ok := want[card.ID]; ok {
			picked = append(picked, card)
		}
	}
	if len(picked) == 0 {
		return Deck{}, fmt.Errorf("%w: no card matches the selection", ErrEmptySelection)
	}
	for i := len(picked) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return Deck{Cards: append([]Card{joka}, picked...), Index: 1}, nil
}

// Active reports whether there is at least one card after joka.
func (d Deck) Active() bool { return len(d.Cards) >= 2 }

func (d Deck) Current() Card { return d.Cards[d.Index] }

// Previous is the card read before the current one; joka for the first card.
func (d Deck) Previous() (Card, bool) {
	if d.Index <= 0 {
		return Card{}, false
	}
	return d.Cards[d.Index-1], true
}

func (d Deck) CanNext() bool { return d.Index < len(d.Cards)-1 }
func (d Deck) CanPrev() bool { return d.Index > 1 }

func (d Deck) Next() (Deck, bool) {
	if !d.CanNext() {
		return d, false
	}
	d.Index++
	return d, true
}

func (d Deck) Prev() (Deck, bool) {
	if !d.CanPrev() {
		return d, false
	}
	d.Index--
	return d, true
}

// Progress is the "index / total" label, joka excluded from the total.
func (d Deck) Progress() string {
	return fmt.Sprintf("%d / %d", d.Index, len(d.Cards)-1)
}

func (d Deck) IDs() []int {
	ids := make([]int, len(d.Cards))
	for i, c := range d.Cards {
		ids[i] = c.ID
	}
	return ids
}

// State is what gets persisted between runs.
type State struct {
	DeckIDs  []int
	Index    int
	Selected []int
}

// RestoreDeck rebuilds a deck from persisted ids. Unknown ids are dropped and
// the index is clamped into the playable range.
func RestoreDeck(state State, catalog map[int]Card) (Deck, []int) {
	var missing []int
	cards := make([]Card, 0, len(state.DeckIDs))
	for _, id := range state.DeckIDs {
		card, ok := catalog[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		cards = append(cards, card)
	}
	deck := Deck{Cards: cards, Index: state.Index}
	if !deck.Active() {
		return Deck{Index: 1}, missing
	}
	if deck.Index < 1 {
		deck.Index = 1
	}
	if deck.Index > len(cards)-1 {
		deck.Index = len(cards) - 1
	}
	return deck, missing
}
