package out

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"yomite/internal/modules/deck/domain"
	deckout "yomite/internal/modules/deck/port/out"
)

//go:embed data/cards.yaml
var embeddedCards []byte

type cardFile struct {
	Joka  domain.Card   `yaml:"joka"`
	Cards []domain.Card `yaml:"cards"`
}

// YAMLCardSource reads cards from a YAML file on fs, or from the built-in
// set when path is empty.
type YAMLCardSource struct {
	fs   afero.Fs
	path string
}

func NewYAMLCardSource(fs afero.Fs, path string) *YAMLCardSource {
	return &YAMLCardSource{fs: fs, path: path}
}

var _ deckout.CardSource = (*YAMLCardSource)(nil)

func (s *YAMLCardSource) LoadCatalog(_ context.Context) (deckout.Catalog, error) {
	raw := embeddedCards
	origin := "embedded cards"
	if s.path != "" {
		data, err := afero.ReadFile(s.fs, s.path)
		if err != nil {
			return deckout.Catalog{}, fmt.Errorf("read cards file: %w", err)
		}
		raw, origin = data, s.path
	}
	return parseCatalog(raw, origin)
}

func parseCatalog(raw []byte, origin string) (deckout.Catalog, error) {
	var file cardFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return deckout.Catalog{}, fmt.Errorf("parse %s: %w", origin, err)
	}
	if file.Joka.ID != domain.JokaID {
		return deckout.Catalog{}, fmt.Errorf("%s: joka must have id %d, got %d", origin, domain.JokaID, file.Joka.ID)
	}
	if err := file.Joka.Validate(); err != nil {
		return deckout.Catalog{}, fmt.Errorf("%s: %w", origin, err)
	}
	seen := map[int]struct{}{}
	for _, card := range file.Cards {
		if err := card.Validate(); err != nil {
			return deckout.Catalog{}, fmt.Errorf("%s: %w", origin, err)
		}
		if card.ID == domain.JokaID {
			return deckout.Catalog{}, fmt.Errorf("%s: id %d is reserved for joka", origin, domain.JokaID)
		}
		if _, dup := seen[card.ID]; dup {
			return deckout.Catalog{}, fmt.Errorf("%s: duplicate card id %d", origin, card.ID)
		}
		seen[card.ID] = struct{}{}
	}
	if len(file.Cards) == 0 {
		return deckout.Catalog{}, fmt.Errorf("%s: no cards", origin)
	}
	return deckout.Catalog{Joka: file.Joka, Cards: file.Cards}, nil
}
