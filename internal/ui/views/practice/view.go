package practice

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	deckdto "yomite/internal/modules/deck/dto"
	pacingdto "yomite/internal/modules/pacing/dto"
	"yomite/internal/ui/components"
	"yomite/internal/ui/theme"
)

// PaceSubmitMsg carries a unit-seconds value typed into the pace field.
type PaceSubmitMsg struct{ UnitSeconds float64 }

// PaceInvalidMsg is emitted when the pace field does not hold a number.
type PaceInvalidMsg struct{ Input string }

// Model renders the ring, the current and previous poems, the clock and the
// pace field. It holds no timer state of its own; the app feeds it.
type Model struct {
	arcs     []pacingdto.ArcOutput
	progress pacingdto.ProgressOutput
	pace     pacingdto.PaceOutput
	deck     deckdto.DeckOutput
	hasDeck  bool
	running  bool
	now      time.Time

	paceInput textinput.Model
	editing   bool
	width     int
	height    int
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "seconds per unit"
	ti.CharLimit = 8
	ti.Width = 10
	return Model{paceInput: ti, now: time.Now()}
}

func (m *Model) SetArcs(arcs []pacingdto.ArcOutput)        { m.arcs = arcs }
func (m *Model) SetProgress(p pacingdto.ProgressOutput)    { m.progress = p }
func (m *Model) SetPace(p pacingdto.PaceOutput)            { m.pace = p }
func (m *Model) SetRunning(running bool)                   { m.running = running }
func (m *Model) SetClock(now time.Time)                    { m.now = now }
func (m *Model) SetDeck(d deckdto.DeckOutput, active bool) { m.deck, m.hasDeck = d, active }

// ClearProgress empties the ring sweep after a reset.
func (m *Model) ClearProgress() {
	m.progress = pacingdto.ProgressOutput{TotalMs: m.progress.TotalMs}
}

// Editing reports whether the pace field has focus.
func (m Model) Editing() bool { return m.editing }

// EditPace focuses the pace field prefilled with the current value.
func (m *Model) EditPace() tea.Cmd {
	m.editing = true
	m.paceInput.SetValue(strconv.FormatFloat(m.pace.UnitSeconds, 'f', -1, 64))
	m.paceInput.CursorEnd()
	return m.paceInput.Focus()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if !m.editing {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.editing = false
			m.paceInput.Blur()
			return m, nil
		case "enter":
			m.editing = false
			m.paceInput.Blur()
			raw := strings.TrimSpace(m.paceInput.Value())
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return m, func() tea.Msg { return PaceInvalidMsg{Input: raw} }
			}
			return m, func() tea.Msg { return PaceSubmitMsg{UnitSeconds: value} }
		}
	}
	if !m.editing {
		return m, nil
	}
	var cmd tea.Cmd
	m.paceInput, cmd = m.paceInput.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	radius := 7
	if m.height > 0 && m.height < 2*radius+6 {
		radius = max(3, (m.height-6)/2)
	}
	ring := components.RenderRing(m.arcs, m.progress.Degrees, radius)
	side := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(components.FormatClock(m.now)),
		"",
		m.renderTimer(),
		"",
		components.RenderLegend(m.arcs, m.activeSegment()),
		"",
		m.renderPace(),
	)
	top := lipgloss.JoinHorizontal(lipgloss.Top, ring, "   ", side)
	return lipgloss.JoinVertical(lipgloss.Left, top, "", m.renderCards())
}

func (m Model) activeSegment() int {
	if !m.running && m.progress.Fraction == 0 {
		return -1
	}
	return m.progress.SegmentIndex
}

func (m Model) renderTimer() string {
	state := "idle"
	switch {
	case m.running:
		state = "reading"
	case m.progress.Fraction >= 1:
		state = "done"
	}
	return fmt.Sprintf("%s  %s  %s",
		theme.Hot.Render(state),
		theme.Muted.Render(m.progress.SegmentLabel),
		fmt.Sprintf("%.1fs left", m.progress.RemainingSeconds))
}

func (m Model) renderPace() string {
	if m.editing {
		return "pace: " + m.paceInput.View()
	}
	return theme.Muted.Render(fmt.Sprintf("pace %.2fs/unit  cycle %.1fs", m.pace.UnitSeconds, m.pace.CycleSeconds))
}

func (m Model) renderCards() string {
	if !m.hasDeck {
		return theme.Muted.Render("No deck. Pick cards in the Picker tab and press enter.")
	}
	cur := renderTanka(m.deck.Current)
	prev := renderTanka(m.deck.Previous)
	w := m.width/2 - 4
	if w < 24 {
		w = 24
	}
	curPane := theme.PaneActive.Width(w).Render(theme.Muted.Render("next") + "\n" + cur)
	prevPane := theme.Pane.Width(w).Render(theme.Muted.Render("previous") + "\n" + prev)
	header := theme.Title.Render(m.deck.Progress)
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, prevPane, curPane))
}

func renderTanka(t deckdto.TankaOutput) string {
	style := func(dim bool) lipgloss.Style {
		if dim {
			return theme.Dim
		}
		return theme.Verse
	}
	upper := style(t.DimUpper)
	lower := style(t.DimLower)
	return strings.Join([]string{
		upper.Render(t.Upper[0]),
		upper.Render(t.Upper[1]),
		lower.Render(t.Lower[0]),
		lower.Render(t.Lower[1]),
	}, "\n")
}
