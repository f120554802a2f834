package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	hclog "github.com/hashicorp/go-hclog"

	deckdto "yomite/internal/modules/deck/dto"
	pacingsched "yomite/internal/modules/pacing/adapter/out"
	pacingdto "yomite/internal/modules/pacing/dto"
	plugindto "yomite/internal/modules/plugin/dto"
	sessiondto "yomite/internal/modules/session/dto"
	apperrors "yomite/internal/platform/errors"
	"yomite/internal/ui/components"
	"yomite/internal/ui/theme"
	pickerview "yomite/internal/ui/views/picker"
	pluginsview "yomite/internal/ui/views/plugins"
	practiceview "yomite/internal/ui/views/practice"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type pacingPort interface {
	Start(ctx context.Context, input pacingdto.StartInput) error
	Reset(ctx context.Context, onReset func())
	IsRunning() bool
	Pace(ctx context.Context) (pacingdto.PaceOutput, error)
	SetUnitSeconds(ctx context.Context, value float64) (pacingdto.PaceOutput, error)
	Ring(ctx context.Context) ([]pacingdto.ArcOutput, error)
}

type deckPort interface {
	pickerview.Port
	Setup(ctx context.Context) (deckdto.DeckOutput, error)
	Status(ctx context.Context) (deckdto.DeckOutput, error)
	Next(ctx context.Context) (deckdto.DeckOutput, error)
	Prev(ctx context.Context) (deckdto.DeckOutput, error)
	Exit(ctx context.Context) error
}

type sessionPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error)
	RecordCycle(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
	End(ctx context.Context, input sessiondto.EndInput) (sessiondto.EndOutput, error)
	GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
}

type pluginPort interface {
	pluginsview.Port
	Dispatch(ctx context.Context, event plugindto.EventInput) ([]plugindto.DispatchResult, error)
}

// Frames is the frame source the timer engine was built with.
type Frames interface {
	Cmd() tea.Cmd
	Fire(msg pacingsched.FrameMsg) bool
}

// Deps bundles what the root model talks to. Plugin and Session may be nil.
type Deps struct {
	Pacing  pacingPort
	Deck    deckPort
	Session sessionPort
	Plugin  pluginPort
	Frames  Frames
	Logger  hclog.Logger
	Now     func() time.Time
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabPractice tabID = iota
	tabPicker
	tabPlugins
	tabCount
)

var tabLabels = [tabCount]string{"Practice", "Picker", "Plugins"}

// ─── async messages ───────────────────────────────────────────────────────────

type activeLoadedMsg struct {
	active sessiondto.ActiveSessionOutput
	err    error
}

type sessionStartedMsg struct {
	active sessiondto.ActiveSessionOutput
	err    error
}

type sessionEndedMsg struct {
	out sessiondto.EndOutput
	err error
}

type cycleRecordedMsg struct {
	active sessiondto.ActiveSessionOutput
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	Reset   key.Binding
	Next    key.Binding
	Prev    key.Binding
	Exit    key.Binding
	Pace    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/reset timer")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset timer")),
		Next:    key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next card")),
		Prev:    key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous card")),
		Exit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "exit deck")),
		Pace:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "edit pace")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Next, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Reset, k.Pace},
		{k.Next, k.Prev, k.Exit},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// timerSink collects engine callbacks fired during one Update call.
type timerSink struct {
	progress  pacingdto.ProgressOutput
	updated   bool
	segments  []pacingdto.SegmentChange
	completed bool
}

func (s *timerSink) drain() timerSink {
	out := *s
	*s = timerSink{}
	return out
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the timer, the
// deck position, the session, the help overlay and the command palette.
// Engine callbacks run inside Update through Frames.Fire.
type Model struct {
	deps   Deps
	logger hclog.Logger
	sink   *timerSink
	// cycleDone is set once a run completes and cleared by any reset.
	cycleDone bool

	practice practiceview.Model
	picker   pickerview.Model
	plugins  pluginsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette

	deck          deckdto.DeckOutput
	hasDeck       bool
	activeSession sessiondto.ActiveSessionOutput
	hasActive     bool
	status        string
	width         int
	height        int
}

func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := Model{
		deps:      deps,
		logger:    deps.Logger.Named("ui"),
		sink:      &timerSink{},
		practice:  practiceview.New(),
		picker:    pickerview.New(deps.Deck),
		activeTab: tabPractice,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
	if deps.Plugin != nil {
		m.plugins = pluginsview.New(deps.Plugin)
	} else {
		m.plugins = pluginsview.New(nil)
	}
	m.practice.SetClock(deps.Now())
	m.loadStatic()
	return m
}

// loadStatic reads the ring, the pace and any persisted deck synchronously.
func (m *Model) loadStatic() {
	ctx := context.Background()
	if arcs, err := m.deps.Pacing.Ring(ctx); err != nil {
		m.status = "ring: " + err.Error()
	} else {
		m.practice.SetArcs(arcs)
	}
	if pace, err := m.deps.Pacing.Pace(ctx); err != nil {
		m.status = "pace: " + err.Error()
	} else {
		m.practice.SetPace(pace)
	}
	deck, err := m.deps.Deck.Status(ctx)
	switch {
	case err == nil:
		m.setDeck(deck, true)
	case errors.Is(err, apperrors.ErrNoActiveDeck):
		m.setDeck(deckdto.DeckOutput{}, false)
		m.activeTab = tabPicker
	default:
		m.status = "deck: " + err.Error()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.picker.Init(), m.plugins.Init(), components.ClockTick()}
	if m.deps.Session != nil {
		cmds = append(cmds, m.loadActiveCmd())
	}
	return tea.Batch(cmds...)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case pacingsched.FrameMsg:
		m.deps.Frames.Fire(msg)
		return m, m.afterTimer()

	case components.ClockTickMsg:
		m.practice.SetClock(msg.At)
		return m, components.ClockTick()

	case practiceview.PaceSubmitMsg:
		return m, m.setPace(msg.UnitSeconds)

	case practiceview.PaceInvalidMsg:
		m.status = fmt.Sprintf("pace: %q is not a number", msg.Input)
		return m, nil

	case pickerview.StartDeckMsg:
		return m, m.setupDeck()

	case pluginsview.DispatchedMsg:
		if msg.Err != nil {
			m.logger.Warn("cue dispatch failed", "event", msg.Kind, "error", msg.Err)
		}
		var cmd tea.Cmd
		m.plugins, cmd = m.plugins.Update(msg)
		return m, cmd

	case activeLoadedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, apperrors.ErrNoActiveSession) {
				m.status = "active session check: " + msg.err.Error()
			}
			m.hasActive = false
		} else {
			m.hasActive = true
			m.activeSession = msg.active
			m.status = "session recovered: " + msg.active.Title
		}
		return m, nil

	case sessionStartedMsg:
		if msg.err != nil {
			m.status = "session start failed: " + msg.err.Error()
		} else {
			m.hasActive = true
			m.activeSession = msg.active
			m.status = "session started: " + msg.active.Title
		}
		return m, nil

	case cycleRecordedMsg:
		if msg.err != nil {
			m.logger.Warn("record cycle failed", "error", msg.err)
		} else {
			m.activeSession = msg.active
		}
		return m, nil

	case sessionEndedMsg:
		if msg.err != nil {
			m.status = "session end failed: " + msg.err.Error()
		} else {
			m.hasActive = false
			m.activeSession = sessiondto.ActiveSessionOutput{}
			m.status = fmt.Sprintf("session saved: %d cards, %d cycles → %s", msg.out.CardsRead, msg.out.Cycles, msg.out.Path)
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabPractice && m.practice.Editing() {
			var cmd tea.Cmd
			m.practice, cmd = m.practice.Update(msg)
			return m, cmd
		}
		if m.activeTab == tabPicker && m.picker.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.deps.Pacing.Reset(context.Background(), nil)
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}

		if m.activeTab == tabPractice {
			switch {
			case key.Matches(msg, m.keys.Start):
				if m.deps.Pacing.IsRunning() {
					return m, m.resetTimer()
				}
				return m, m.startTimer()
			case key.Matches(msg, m.keys.Reset):
				return m, m.resetTimer()
			case key.Matches(msg, m.keys.Next):
				return m, m.moveDeck(m.deps.Deck.Next, true)
			case key.Matches(msg, m.keys.Prev):
				return m, m.moveDeck(m.deps.Deck.Prev, false)
			case key.Matches(msg, m.keys.Exit):
				return m, m.exitDeck()
			case key.Matches(msg, m.keys.Pace):
				return m, m.practice.EditPace()
			}
			return m, nil
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabPractice:
		m.practice, tabCmd = m.practice.Update(msg)
	case tabPicker:
		m.picker, tabCmd = m.picker.Update(msg)
	case tabPlugins:
		m.plugins, tabCmd = m.plugins.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	// Async results for inactive tabs still need to land.
	switch msg.(type) {
	case pickerview.SectionsLoadedMsg, pickerview.ToggledMsg:
		if m.activeTab != tabPicker {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			cmds = append(cmds, cmd)
		}
	case pluginsview.ListLoadedMsg, pluginsview.DoctorDoneMsg:
		if m.activeTab != tabPlugins {
			var cmd tea.Cmd
			m.plugins, cmd = m.plugins.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// ─── timer ────────────────────────────────────────────────────────────────────

func (m *Model) startTimer() tea.Cmd {
	sink := m.sink
	if m.cycleDone {
		// A completed engine would finish again on its first frame.
		m.deps.Pacing.Reset(context.Background(), func() { sink.drain() })
		m.practice.ClearProgress()
		m.cycleDone = false
	}
	err := m.deps.Pacing.Start(context.Background(), pacingdto.StartInput{
		OnUpdate: func(p pacingdto.ProgressOutput) {
			sink.progress = p
			sink.updated = true
		},
		OnSegment: func(c pacingdto.SegmentChange) {
			sink.segments = append(sink.segments, c)
		},
		OnComplete: func() {
			sink.completed = true
		},
	})
	if err != nil {
		m.status = "start: " + err.Error()
		return nil
	}
	m.practice.SetRunning(m.deps.Pacing.IsRunning())
	m.status = "reading"
	return m.deps.Frames.Cmd()
}

func (m *Model) resetTimer() tea.Cmd {
	sink := m.sink
	m.cycleDone = false
	m.deps.Pacing.Reset(context.Background(), func() { sink.drain() })
	m.practice.SetRunning(false)
	m.practice.ClearProgress()
	return m.dispatchCmd(plugindto.EventInput{Kind: "reset", CardID: m.currentCardID(), At: m.deps.Now()})
}

// afterTimer applies whatever the engine reported during the last frame.
func (m *Model) afterTimer() tea.Cmd {
	events := m.sink.drain()
	var cmds []tea.Cmd
	if events.updated {
		m.practice.SetProgress(events.progress)
	}
	for _, change := range events.segments {
		cmds = append(cmds, m.dispatchCmd(plugindto.EventInput{
			Kind:         "segment",
			SegmentIndex: change.Index,
			SegmentLabel: change.Label,
			CardID:       m.currentCardID(),
			At:           m.deps.Now(),
		}))
	}
	if events.completed {
		m.cycleDone = true
		m.practice.SetRunning(false)
		m.status = "cycle complete"
		cmds = append(cmds, m.dispatchCmd(plugindto.EventInput{Kind: "complete", CardID: m.currentCardID(), At: m.deps.Now()}))
		if m.hasActive && m.deps.Session != nil {
			cmds = append(cmds, m.recordCycleCmd())
		}
	}
	cmds = append(cmds, m.deps.Frames.Cmd())
	return tea.Batch(cmds...)
}

func (m *Model) setPace(value float64) tea.Cmd {
	pace, err := m.deps.Pacing.SetUnitSeconds(context.Background(), value)
	if err != nil {
		m.status = "pace: " + err.Error()
		return nil
	}
	m.practice.SetPace(pace)
	m.status = fmt.Sprintf("pace set to %.2fs", pace.UnitSeconds)
	return nil
}

// ─── deck ─────────────────────────────────────────────────────────────────────

func (m *Model) setDeck(deck deckdto.DeckOutput, active bool) {
	m.deck = deck
	m.hasDeck = active
	m.practice.SetDeck(deck, active)
}

func (m Model) currentCardID() int {
	if !m.hasDeck {
		return 0
	}
	return m.deck.Current.CardID
}

func (m *Model) setupDeck() tea.Cmd {
	deck, err := m.deps.Deck.Setup(context.Background())
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			m.status = "select at least one card first"
		} else {
			m.status = "deck: " + err.Error()
		}
		return nil
	}
	m.setDeck(deck, true)
	m.activeTab = tabPractice
	m.status = "deck ready: " + deck.Progress
	return m.resetTimer()
}

// moveDeck steps the deck. Only moving forward restarts the timer; going
// back leaves a running cycle alone.
func (m *Model) moveDeck(step func(context.Context) (deckdto.DeckOutput, error), reset bool) tea.Cmd {
	deck, err := step(context.Background())
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveDeck) {
			m.status = "no deck, pick cards first"
		} else {
			m.status = "deck: " + err.Error()
		}
		return nil
	}
	m.setDeck(deck, true)
	if !deck.Moved {
		return nil
	}
	m.status = deck.Progress
	if !reset {
		return nil
	}
	return m.resetTimer()
}

func (m *Model) exitDeck() tea.Cmd {
	if err := m.deps.Deck.Exit(context.Background()); err != nil {
		m.status = "deck: " + err.Error()
		return nil
	}
	m.setDeck(deckdto.DeckOutput{}, false)
	m.activeTab = tabPicker
	m.status = "deck cleared"
	return m.resetTimer()
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabPractice:
		return m.practice.View()
	case tabPicker:
		return m.picker.View()
	case tabPlugins:
		return m.plugins.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	bar := "yomite  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.hasActive {
		left = theme.Hot.Render(fmt.Sprintf("● %s (%d cycles)", m.activeSession.Title, m.activeSession.Cycles)) + "  " + left
	}
	right := m.help.ShortHelpView(m.keys.ShortHelp())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "pace":
		if rest == "" {
			m.status = "usage: pace <seconds>"
			return m, nil
		}
		value, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			m.status = "invalid pace"
			return m, nil
		}
		return m, m.setPace(value)
	case "timer:start":
		m.activeTab = tabPractice
		return m, m.startTimer()
	case "timer:reset":
		return m, m.resetTimer()
	case "deck:start":
		return m, m.setupDeck()
	case "deck:next":
		return m, m.moveDeck(m.deps.Deck.Next, true)
	case "deck:prev":
		return m, m.moveDeck(m.deps.Deck.Prev, false)
	case "deck:exit":
		return m, m.exitDeck()
	case "sort":
		m.activeTab = tabPicker
		return m, m.picker.SetMode(rest)
	case "session:start":
		if m.deps.Session == nil {
			m.status = "sessions unavailable"
			return m, nil
		}
		return m, m.startSessionCmd(rest)
	case "session:end":
		if m.deps.Session == nil || !m.hasActive {
			m.status = "no active session"
			return m, nil
		}
		return m, m.endSessionCmd(rest)
	case "plugin:doctor":
		m.activeTab = tabPlugins
		return m, m.plugins.RunDoctor()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.practice, _ = m.practice.Update(sz)
	m.picker, _ = m.picker.Update(sz)
	m.plugins, _ = m.plugins.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) dispatchCmd(event plugindto.EventInput) tea.Cmd {
	if m.deps.Plugin == nil {
		return nil
	}
	plugin := m.deps.Plugin
	return func() tea.Msg {
		results, err := plugin.Dispatch(context.Background(), event)
		return pluginsview.DispatchedMsg{Kind: event.Kind, Results: results, Err: err}
	}
}

func (m Model) loadActiveCmd() tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		active, err := session.GetActive(context.Background())
		return activeLoadedMsg{active: active, err: err}
	}
}

func (m Model) startSessionCmd(title string) tea.Cmd {
	session := m.deps.Session
	pace, _ := m.deps.Pacing.Pace(context.Background())
	deckSize := m.deck.Total
	return func() tea.Msg {
		out, err := session.Start(context.Background(), sessiondto.StartInput{Title: title, DeckSize: deckSize, UnitSeconds: pace.UnitSeconds})
		if err != nil {
			return sessionStartedMsg{err: err}
		}
		active, err := session.GetActive(context.Background())
		if err != nil {
			return sessionStartedMsg{active: sessiondto.ActiveSessionOutput{SessionID: out.SessionID, Title: title, StartedAt: out.StartedAt}}
		}
		return sessionStartedMsg{active: active}
	}
}

func (m Model) recordCycleCmd() tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		active, err := session.RecordCycle(context.Background())
		return cycleRecordedMsg{active: active, err: err}
	}
}

func (m Model) endSessionCmd(outcome string) tea.Cmd {
	session := m.deps.Session
	input := sessiondto.EndInput{SessionID: m.activeSession.SessionID, Outcome: outcome}
	if m.hasDeck {
		input.CardsRead = m.deck.Index
	}
	return func() tea.Msg {
		out, err := session.End(context.Background(), input)
		return sessionEndedMsg{out: out, err: err}
	}
}
