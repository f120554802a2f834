package picker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	deckdto "yomite/internal/modules/deck/dto"
	"yomite/internal/ui/theme"
)

// Port is the slice of the deck usecase the picker needs.
type Port interface {
	Sections(ctx context.Context, sortMode string) ([]deckdto.SectionOutput, error)
	Toggle(ctx context.Context, ids ...int) (deckdto.SelectionOutput, error)
	ToggleMatrix(ctx context.Context, axis string, index int) (deckdto.SelectionOutput, error)
}

// SortModes is the order the sort key cycles through.
var SortModes = []string{"group", "kimariji", "kimariji-len", "id"}

type SectionsLoadedMsg struct {
	Mode     string
	Sections []deckdto.SectionOutput
	Err      error
}

type ToggledMsg struct {
	Selection deckdto.SelectionOutput
	Err       error
}

// StartDeckMsg asks the app to build a deck from the current selection.
type StartDeckMsg struct{}

type cardItem struct {
	card    deckdto.CardOutput
	section string
	batch   []int
}

func (i cardItem) Title() string {
	mark := "[ ]"
	if i.card.Selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %3d  %s", mark, i.card.ID, i.card.Kimariji)
}

func (i cardItem) Description() string {
	first := ""
	if len(i.card.Lines) > 0 {
		first = i.card.Lines[0]
	}
	return i.section + "  " + first
}

func (i cardItem) FilterValue() string {
	return fmt.Sprintf("%d %s", i.card.ID, i.card.Kimariji)
}

type Model struct {
	port     Port
	list     list.Model
	mode     string
	selected int
	status   string
	width    int
	height   int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Cards"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return Model{port: port, list: l, mode: SortModes[0]}
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd(m.mode)
}

// Mode is the active sort mode.
func (m Model) Mode() string { return m.mode }

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// SetMode reloads the list under another sort mode.
func (m *Model) SetMode(mode string) tea.Cmd {
	return m.loadCmd(mode)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case SectionsLoadedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
			return m, nil
		}
		m.mode = msg.Mode
		items := make([]list.Item, 0)
		m.selected = 0
		for _, section := range msg.Sections {
			batch := make([]int, len(section.Cards))
			for i, c := range section.Cards {
				batch[i] = c.ID
			}
			for _, c := range section.Cards {
				items = append(items, cardItem{card: c, section: section.Key, batch: batch})
				if c.Selected {
					m.selected++
				}
			}
		}
		m.list.Title = fmt.Sprintf("Cards by %s", m.mode)
		m.status = ""
		return m, m.list.SetItems(items)

	case ToggledMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
			return m, nil
		}
		return m, m.loadCmd(m.mode)

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case " ", "x":
			if item, ok := m.list.SelectedItem().(cardItem); ok {
				return m, m.toggleCmd(item.card.ID)
			}
			return m, nil
		case "a":
			if item, ok := m.list.SelectedItem().(cardItem); ok {
				return m, m.toggleCmd(item.batch...)
			}
			return m, nil
		case "r", "c":
			if item, ok := m.list.SelectedItem().(cardItem); ok {
				if msg.String() == "r" {
					return m, m.matrixCmd("row", (item.card.ID/10)%10)
				}
				return m, m.matrixCmd("column", item.card.ID%10)
			}
			return m, nil
		case "s":
			return m, m.loadCmd(nextMode(m.mode))
		case "enter":
			return m, func() tea.Msg { return StartDeckMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	footer := theme.Muted.Render(fmt.Sprintf("%d selected  space:toggle  a:section  r/c:row/col  s:sort  enter:start deck", m.selected))
	if m.status != "" {
		footer = theme.Error.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), footer)
}

func nextMode(mode string) string {
	for i, candidate := range SortModes {
		if candidate == mode {
			return SortModes[(i+1)%len(SortModes)]
		}
	}
	return SortModes[0]
}

func (m Model) loadCmd(mode string) tea.Cmd {
	return func() tea.Msg {
		sections, err := m.port.Sections(context.Background(), mode)
		return SectionsLoadedMsg{Mode: mode, Sections: sections, Err: err}
	}
}

func (m Model) toggleCmd(ids ...int) tea.Cmd {
	return func() tea.Msg {
		selection, err := m.port.Toggle(context.Background(), ids...)
		return ToggledMsg{Selection: selection, Err: err}
	}
}

func (m Model) matrixCmd(axis string, index int) tea.Cmd {
	return func() tea.Msg {
		selection, err := m.port.ToggleMatrix(context.Background(), axis, index)
		return ToggledMsg{Selection: selection, Err: err}
	}
}
