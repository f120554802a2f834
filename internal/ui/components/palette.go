package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yomite/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// PaletteHints must stay in sync with the switch in app/model.go executePalette.
var PaletteHints = []string{
	"pace <seconds>",
	"timer:start",
	"timer:reset",
	"deck:start",
	"deck:next",
	"deck:prev",
	"deck:exit",
	"sort <id|kimariji|kimariji-len|group>",
	"session:start [title]",
	"session:end [outcome]",
	"plugin:doctor",
}

// Palette is the ":" command line. Tab completes the first matching hint;
// up and down walk earlier submissions, newest first.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	history []string
	recall  int
}

const historyLimit = 20

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 128
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.recall = -1
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			p.remember(val)
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matching := Matching(p.input.Value()); len(matching) > 0 {
				p.input.SetValue(Complete(matching[0]))
				p.input.CursorEnd()
			}
			return p, nil
		case "up", "down":
			p.step(msg.String() == "up")
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) remember(val string) {
	if val == "" {
		return
	}
	if len(p.history) > 0 && p.history[0] == val {
		return
	}
	p.history = append([]string{val}, p.history...)
	if len(p.history) > historyLimit {
		p.history = p.history[:historyLimit]
	}
}

func (p *Palette) step(older bool) {
	if len(p.history) == 0 {
		return
	}
	if older {
		p.recall = min(p.recall+1, len(p.history)-1)
	} else {
		p.recall--
	}
	if p.recall < 0 {
		p.recall = -1
		p.input.SetValue("")
		return
	}
	p.input.SetValue(p.history[p.recall])
	p.input.CursorEnd()
}

// Complete turns a hint into typed input: the command word, followed by a
// space when the hint takes arguments.
func Complete(hint string) string {
	word, _, hasArgs := strings.Cut(hint, " ")
	if hasArgs {
		return word + " "
	}
	return word
}

// Matching returns at most five hints starting with prefix.
func Matching(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var matching []string
	for _, h := range PaletteHints {
		if prefix == "" || strings.HasPrefix(h, prefix) {
			matching = append(matching, h)
			if len(matching) == 5 {
				break
			}
		}
	}
	return matching
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matching := Matching(p.input.Value())

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
