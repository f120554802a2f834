package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// JokaID is the opening poem, always read first and never picked.
const JokaID = 0

// LinesPerCard is the verse count of a tanka.
const LinesPerCard = 5

// Part is one run of a verse line. Ruby holds the reading of Text when the
// source provided one.
type Part struct {
	Text string
	Ruby string
}

type rubyPart struct {
	RB string `yaml:"rb"`
	RT string `yaml:"rt"`
}

// UnmarshalYAML accepts either a plain string or an {rb, rt} mapping.
func (p *Part) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.Text, p.Ruby = node.Value, ""
		return nil
	case yaml.MappingNode:
		var r rubyPart
		if err := node.Decode(&r); err != nil {
			return err
		}
		if r.RB == "" {
			return fmt.Errorf("line %d: ruby part without rb", node.Line)
		}
		p.Text, p.Ruby = r.RB, r.RT
		return nil
	default:
		return fmt.Errorf("line %d: unsupported part", node.Line)
	}
}

func (p Part) MarshalYAML() (any, error) {
	if p.Ruby == "" {
		return p.Text, nil
	}
	return rubyPart{RB: p.Text, RT: p.Ruby}, nil
}

// Line is one verse of a poem.
type Line []Part

// Text joins the written form of every part.
func (l Line) Text() string {
	var b strings.Builder
	for _, p := range l {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Annotated writes ruby readings after their base text, e.g. 村雨《むらさめ》.
func (l Line) Annotated() string {
	var b strings.Builder
	for _, p := range l {
		b.WriteString(p.Text)
		if p.Ruby != "" {
			b.WriteString("《")
			b.WriteString(p.Ruby)
			b.WriteString("》")
		}
	}
	return b.String()
}

type Card struct {
	ID       int    `yaml:"id"`
	Kimariji string `yaml:"kimariji"`
	Lines    []Line `yaml:"lines"`
}

func (c Card) Validate() error {
	if c.ID < 0 || c.ID > 100 {
		return fmt.Errorf("card id %d out of range", c.ID)
	}
	if len(c.Lines) != LinesPerCard {
		return fmt.Errorf("card %d has %d lines, want %d", c.ID, len(c.Lines), LinesPerCard)
	}
	return nil
}

// Tanka is a card laid out for reading: upper half is lines 1+2 and 3, the
// lower half lines 4 and 5.
type Tanka struct {
	Upper    [2]string
	Lower    [2]string
	DimUpper bool
	DimLower bool
}

// RenderTanka lays out card. The card about to be read dims its lower half
// and the card just read dims its upper half.
func RenderTanka(card Card, upcoming, annotate bool) (Tanka, error) {
	if len(card.Lines) != LinesPerCard {
		return Tanka{}, fmt.Errorf("card %d has %d lines, want %d", card.ID, len(card.Lines), LinesPerCard)
	}
	text := Line.Text
	if annotate {
		text = Line.Annotated
	}
	return Tanka{
		Upper:    [2]string{text(card.Lines[0]) + text(card.Lines[1]), text(card.Lines[2])},
		Lower:    [2]string{text(card.Lines[3]), text(card.Lines[4])},
		DimUpper: !upcoming,
		DimLower: upcoming,
	}, nil
}
