package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	plugindto "yomite/internal/modules/plugin/dto"
	"yomite/internal/ui/theme"
)

// Port is the minimal interface this view needs from the plugin use-case.
type Port interface {
	List(ctx context.Context) ([]plugindto.PluginInfo, error)
	Doctor(ctx context.Context) ([]plugindto.DoctorResult, error)
}

type ListLoadedMsg struct {
	Plugins []plugindto.PluginInfo
	Err     error
}

type DoctorDoneMsg struct {
	Results []plugindto.DoctorResult
	Err     error
}

// DispatchedMsg carries the outcome of one cue notification round.
type DispatchedMsg struct {
	Kind    string
	Results []plugindto.DispatchResult
	Err     error
}

// Model is the self-contained Bubble Tea model for the Plugins tab.
type Model struct {
	port     Port
	output   viewport.Model
	spinner  spinner.Model
	plugins  []plugindto.PluginInfo
	doctor   []plugindto.DoctorResult
	lastKind string
	last     []plugindto.DispatchResult
	err      string
	loading  bool
	width    int
	height   int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, output: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return m.listCmd()
}

// RunDoctor starts a doctor pass with the spinner shown.
func (m *Model) RunDoctor() tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.doctorCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = msg.Width - 4
		m.output.Height = msg.Height - 4

	case ListLoadedMsg:
		m.err = ""
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		m.plugins = msg.Plugins

	case DoctorDoneMsg:
		m.loading = false
		m.err = ""
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		m.doctor = msg.Results

	case DispatchedMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		m.lastKind = msg.Kind
		m.last = msg.Results

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "d":
			cmds = append(cmds, m.RunDoctor())
		case "l":
			if m.port != nil {
				cmds = append(cmds, m.listCmd())
			}
		default:
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	m.output.SetContent(m.render())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Checking plugins…")
	}
	header := theme.Title.Render("Cue plugins") + "  " + theme.Muted.Render("d: doctor  l: reload")
	if m.output.Width == 0 {
		return header + "\n" + m.render()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.output.View())
}

func (m Model) render() string {
	var sb strings.Builder
	if m.err != "" {
		sb.WriteString(theme.Error.Render(m.err) + "\n\n")
	}
	if len(m.plugins) == 0 {
		sb.WriteString(theme.Muted.Render("No plugins in plugins/plugins.json") + "\n")
	}
	for _, p := range m.plugins {
		state := "disabled"
		if p.Enabled {
			state = "enabled"
		}
		sb.WriteString(fmt.Sprintf("%s %s  %s  [%s]\n", theme.Hot.Render(p.Name), p.Version, state, strings.Join(p.Events, ",")))
	}
	if len(m.doctor) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Doctor") + "\n")
		for _, r := range m.doctor {
			line := fmt.Sprintf("%s  binary=%t checksum=%t lifecycle=%t", r.Name, r.BinaryReachable, r.ChecksumValid, r.LifecycleOK)
			if r.Error != "" {
				line += "  " + theme.Error.Render(r.Error)
			}
			sb.WriteString(line + "\n")
		}
	}
	if m.lastKind != "" {
		sb.WriteString("\n" + theme.Title.Render("Last cue: "+m.lastKind) + "\n")
		if len(m.last) == 0 {
			sb.WriteString(theme.Muted.Render("no subscribers") + "\n")
		}
		for _, r := range m.last {
			if r.Error != "" {
				sb.WriteString(r.Name + "  " + theme.Error.Render(r.Error) + "\n")
				continue
			}
			sb.WriteString(fmt.Sprintf("%s  ack=%t %s\n", r.Name, r.Acknowledged, r.Message))
		}
	}
	return sb.String()
}

func (m Model) listCmd() tea.Cmd {
	return func() tea.Msg {
		plugins, err := m.port.List(context.Background())
		return ListLoadedMsg{Plugins: plugins, Err: err}
	}
}

func (m Model) doctorCmd() tea.Cmd {
	return func() tea.Msg {
		results, err := m.port.Doctor(context.Background())
		return DoctorDoneMsg{Results: results, Err: err}
	}
}
