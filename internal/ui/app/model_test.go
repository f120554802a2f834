package app_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	deckdto "yomite/internal/modules/deck/dto"
	pacingadapter "yomite/internal/modules/pacing/adapter/out"
	pacingout "yomite/internal/modules/pacing/port/out"
	"yomite/internal/modules/pacing/service"
	"yomite/internal/modules/pacing/usecase"
	plugindto "yomite/internal/modules/plugin/dto"
	sessiondto "yomite/internal/modules/session/dto"
	apperrors "yomite/internal/platform/errors"
	"yomite/internal/ui/app"
	"yomite/internal/ui/components"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

type memoryPaceStore struct{ value float64 }

func (s *memoryPaceStore) LoadUnitSeconds(context.Context) (float64, error) {
	if s.value == 0 {
		return 0, apperrors.ErrNotFound
	}
	return s.value, nil
}

func (s *memoryPaceStore) SaveUnitSeconds(_ context.Context, v float64) error {
	s.value = v
	return nil
}

type fakeDeck struct {
	index  int
	active bool
	setups int
}

func (d *fakeDeck) output(moved bool) deckdto.DeckOutput {
	return deckdto.DeckOutput{
		Index:    d.index,
		Total:    7,
		Progress: "progress",
		Current:  deckdto.TankaOutput{CardID: 80 + d.index},
		CanPrev:  d.index > 1,
		CanNext:  d.index < 7,
		Moved:    moved,
	}
}

func (d *fakeDeck) Sections(context.Context, string) ([]deckdto.SectionOutput, error) {
	return nil, nil
}
func (d *fakeDeck) Toggle(_ context.Context, ids ...int) (deckdto.SelectionOutput, error) {
	return deckdto.SelectionOutput{IDs: ids}, nil
}
func (d *fakeDeck) ToggleMatrix(context.Context, string, int) (deckdto.SelectionOutput, error) {
	return deckdto.SelectionOutput{}, nil
}
func (d *fakeDeck) Setup(context.Context) (deckdto.DeckOutput, error) {
	d.index, d.active = 1, true
	d.setups++
	return d.output(false), nil
}
func (d *fakeDeck) Status(context.Context) (deckdto.DeckOutput, error) {
	if !d.active {
		return deckdto.DeckOutput{}, apperrors.ErrNoActiveDeck
	}
	return d.output(false), nil
}
func (d *fakeDeck) Next(context.Context) (deckdto.DeckOutput, error) {
	if d.index >= 7 {
		return d.output(false), nil
	}
	d.index++
	return d.output(true), nil
}
func (d *fakeDeck) Prev(context.Context) (deckdto.DeckOutput, error) {
	if d.index <= 1 {
		return d.output(false), nil
	}
	d.index--
	return d.output(true), nil
}
func (d *fakeDeck) Exit(context.Context) error {
	d.active = false
	return nil
}

type fakePlugins struct {
	mu     sync.Mutex
	events []plugindto.EventInput
}

func (p *fakePlugins) List(context.Context) ([]plugindto.PluginInfo, error) { return nil, nil }
func (p *fakePlugins) Doctor(context.Context) ([]plugindto.DoctorResult, error) {
	return nil, nil
}
func (p *fakePlugins) Dispatch(_ context.Context, e plugindto.EventInput) ([]plugindto.DispatchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil, nil
}

func (p *fakePlugins) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

type fakeSession struct {
	cycles int
}

func (s *fakeSession) Start(context.Context, sessiondto.StartInput) (sessiondto.StartOutput, error) {
	return sessiondto.StartOutput{SessionID: "s1"}, nil
}
func (s *fakeSession) RecordCycle(context.Context) (sessiondto.ActiveSessionOutput, error) {
	s.cycles++
	return sessiondto.ActiveSessionOutput{SessionID: "s1", Cycles: s.cycles}, nil
}
func (s *fakeSession) End(context.Context, sessiondto.EndInput) (sessiondto.EndOutput, error) {
	return sessiondto.EndOutput{}, nil
}
func (s *fakeSession) GetActive(context.Context) (sessiondto.ActiveSessionOutput, error) {
	return sessiondto.ActiveSessionOutput{SessionID: "s1", Title: "practice"}, nil
}

type fixture struct {
	clock   *manualClock
	start   time.Time
	deck    *fakeDeck
	plugins *fakePlugins
	session *fakeSession
	model   tea.Model
}

func newFixture(t *testing.T, deckActive bool) *fixture {
	t.Helper()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := &manualClock{now: start}
	frames := pacingadapter.NewTeaScheduler(time.Millisecond)
	engine := service.NewTimerEngine(clk, frames)
	pacing, err := usecase.NewInteractor(engine, &memoryPaceStore{}, usecase.Cycle{
		Weights:            []float64{5, 3, 1, 6},
		Labels:             []string{"下の句", "余韻", "間合い", "上の句"},
		Colors:             []string{"#22c55e", "#f59e0b", "#3b82f6", "#ef4444"},
		DefaultUnitSeconds: 1,
		MinUnitSeconds:     0.1,
	}, nil)
	if err != nil {
		t.Fatalf("new pacing: %v", err)
	}
	f := &fixture{
		clock:   clk,
		start:   start,
		deck:    &fakeDeck{index: 1, active: deckActive},
		plugins: &fakePlugins{},
		session: &fakeSession{},
	}
	f.model = app.NewModel(app.Deps{
		Pacing:  pacing,
		Deck:    f.deck,
		Session: f.session,
		Plugin:  f.plugins,
		Frames:  frames,
		Now:     func() time.Time { return clk.now },
	})
	f.model, _ = f.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return f
}

// send delivers msg and runs every resulting command, feeding their
// messages back except frames, which the test drives itself.
func (f *fixture) send(msg tea.Msg) {
	var cmd tea.Cmd
	f.model, cmd = f.model.Update(msg)
	for _, out := range run(cmd) {
		if _, isFrame := out.(pacingadapter.FrameMsg); isFrame {
			continue
		}
		f.model, _ = f.model.Update(out)
	}
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func (f *fixture) frame(handle uint64, afterMs int) {
	f.send(pacingadapter.FrameMsg{Handle: pacingout.FrameHandle(handle), At: f.start.Add(time.Duration(afterMs) * time.Millisecond)})
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTimerCycleDispatchesCuesAndRecordsCycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.send(components.PaletteSubmitMsg{Input: "session:start practice"})

	f.send(key(" "))
	f.frame(1, 1000)
	f.frame(2, 6000)
	f.frame(3, 15000)

	got := strings.Join(f.plugins.kinds(), ",")
	if got != "segment,segment,segment,complete" {
		t.Fatalf("unexpected cue sequence: %s", got)
	}
	if f.session.cycles != 1 {
		t.Fatalf("expected one recorded cycle, got %d", f.session.cycles)
	}
	if view := f.model.View(); !strings.Contains(view, "cycle complete") {
		t.Fatalf("expected completion status in view:\n%s", view)
	}
}

func TestNextCardResetsTimer(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	f.send(key(" "))
	f.frame(1, 1000)
	f.send(key("n"))
	if f.deck.index != 2 {
		t.Fatalf("expected deck to advance, index=%d", f.deck.index)
	}
	kinds := f.plugins.kinds()
	if kinds[len(kinds)-1] != "reset" {
		t.Fatalf("expected reset cue after next, got %v", kinds)
	}

	// The pending frame from the first run is stale after the reset.
	before := len(f.plugins.kinds())
	f.frame(2, 9000)
	if len(f.plugins.kinds()) != before {
		t.Fatalf("stale frame produced cues: %v", f.plugins.kinds())
	}
}

func TestNoDeckOpensPickerAndEnterStartsDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	if view := f.model.View(); !strings.Contains(view, "Cards") {
		t.Fatalf("expected picker view, got:\n%s", view)
	}
	f.send(tea.KeyMsg{Type: tea.KeyEnter})
	if f.deck.setups != 1 {
		t.Fatalf("expected deck setup, got %d", f.deck.setups)
	}
	if view := f.model.View(); !strings.Contains(view, "deck ready") {
		t.Fatalf("expected practice view after setup:\n%s", view)
	}
}

func TestPalettePaceCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.send(components.PaletteSubmitMsg{Input: "pace 2"})
	if view := f.model.View(); !strings.Contains(view, "pace set to 2.00s") {
		t.Fatalf("expected pace status:\n%s", view)
	}
	f.send(components.PaletteSubmitMsg{Input: "pace -1"})
	if view := f.model.View(); !strings.Contains(view, "pace:") {
		t.Fatalf("expected pace error:\n%s", view)
	}
}

func TestStartAfterCompletionRunsAFreshCycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.send(components.PaletteSubmitMsg{Input: "session:start practice"})

	f.send(key(" "))
	f.frame(1, 1000)
	f.frame(2, 15000)
	if f.session.cycles != 1 {
		t.Fatalf("expected first cycle recorded, got %d", f.session.cycles)
	}

	f.send(key(" "))
	f.frame(3, 1000)
	got := strings.Join(f.plugins.kinds(), ",")
	if got != "segment,segment,complete,segment" {
		t.Fatalf("second start must not complete instantly, cues: %s", got)
	}
	if f.session.cycles != 1 {
		t.Fatalf("no cycle may be recorded before the second run ends, got %d", f.session.cycles)
	}

	f.frame(4, 15000)
	if f.session.cycles != 2 {
		t.Fatalf("expected the second run to be recorded, got %d", f.session.cycles)
	}
}

func TestPrevCardKeepsTimerRunning(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.send(key("n"))
	f.send(key(" "))
	f.frame(1, 1000)
	before := len(f.plugins.kinds())

	f.send(key("p"))
	if f.deck.index != 1 {
		t.Fatalf("expected deck to step back, index=%d", f.deck.index)
	}
	for _, kind := range f.plugins.kinds()[before:] {
		if kind == "reset" {
			t.Fatalf("prev must not reset the timer, cues: %v", f.plugins.kinds())
		}
	}
	f.frame(2, 6000)
	kinds := f.plugins.kinds()
	if kinds[len(kinds)-1] != "segment" {
		t.Fatalf("the running cycle should keep emitting, cues: %v", kinds)
	}
}
