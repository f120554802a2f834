package components_test

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	pacingdto "yomite/internal/modules/pacing/dto"
	"yomite/internal/ui/components"
)

func defaultArcs() []pacingdto.ArcOutput {
	return []pacingdto.ArcOutput{
		{Segment: 0, Label: "upper", Color: "#22c55e", StartDeg: 0, EndDeg: 120},
		{Segment: 1, Label: "lower", Color: "#3b82f6", StartDeg: 120, EndDeg: 192},
		{Segment: 2, Label: "pause", Color: "#f59e0b", StartDeg: 192, EndDeg: 216},
		{Segment: 3, Label: "next", Color: "#ef4444", StartDeg: 216, EndDeg: 360},
	}
}

func TestFormatClockUsesJapaneseWeekday(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 10, 17, 9, 5, 3, 0, time.Local)
	if got := components.FormatClock(at); got != "10/17(土) 09:05:03" {
		t.Fatalf("unexpected clock: %q", got)
	}
}

func TestRingCellsQuadrants(t *testing.T) {
	t.Parallel()
	radius := 6
	grid := components.RingCells(defaultArcs(), 0, radius)
	if len(grid) != 2*radius+1 || len(grid[0]) != 2*(2*radius+1) {
		t.Fatalf("unexpected grid size %dx%d", len(grid), len(grid[0]))
	}
	mid := radius
	center := len(grid[0]) / 2

	top := grid[0][center]
	if top.Arc != 0 {
		t.Fatalf("expected first arc at 12 o'clock, got %+v", top)
	}
	right := grid[mid][len(grid[0])-1]
	if right.Arc != 0 {
		t.Fatalf("expected first arc at 3 o'clock (90°), got %+v", right)
	}
	bottom := grid[len(grid)-1][center]
	if bottom.Arc != 1 {
		t.Fatalf("expected second arc at 6 o'clock (180°), got %+v", bottom)
	}
	left := grid[mid][0]
	if left.Arc != 3 {
		t.Fatalf("expected last arc at 9 o'clock (270°), got %+v", left)
	}
	if hole := grid[mid][center]; hole.Arc != -1 {
		t.Fatalf("expected empty center, got %+v", hole)
	}
}

func TestRingCellsSweep(t *testing.T) {
	t.Parallel()
	radius := 6
	grid := components.RingCells(defaultArcs(), 180, radius)
	mid := radius
	if !grid[mid][len(grid[0])-1].Filled {
		t.Fatalf("expected 90° filled at sweep 180")
	}
	if grid[mid][0].Filled {
		t.Fatalf("expected 270° empty at sweep 180")
	}

	full := components.RingCells(defaultArcs(), 360, radius)
	for _, row := range full {
		for _, cell := range row {
			if cell.Arc >= 0 && !cell.Filled {
				t.Fatalf("expected every ring cell filled at 360")
			}
		}
	}
}

func TestRenderRingWithoutArcsIsBlank(t *testing.T) {
	t.Parallel()
	out := components.RenderRing(nil, 90, 2)
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected blank ring, got %q", out)
	}
}

func TestPaletteMatchingPrefix(t *testing.T) {
	t.Parallel()
	got := components.Matching("deck:")
	if len(got) != 4 || got[0] != "deck:start" {
		t.Fatalf("unexpected matches: %v", got)
	}
	if len(components.Matching("")) != 5 {
		t.Fatalf("expected at most five hints")
	}
}

func submit(t *testing.T, p components.Palette, keys ...tea.KeyMsg) (components.Palette, string) {
	t.Helper()
	p.Open()
	for _, k := range keys {
		p, _ = p.Update(k)
	}
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := cmd().(components.PaletteSubmitMsg)
	if !ok {
		t.Fatalf("expected submit message")
	}
	return p, msg.Input
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestPaletteTabCompletesAndRecallsHistory(t *testing.T) {
	t.Parallel()
	tab := tea.KeyMsg{Type: tea.KeyTab}
	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	p := components.NewPalette()
	p, got := submit(t, p, runes("pa"), tab, runes("2"))
	if got != "pace 2" {
		t.Fatalf("tab should complete to the command word, got %q", got)
	}
	p, got = submit(t, p, runes("time"), tab)
	if got != "timer:start" {
		t.Fatalf("hint without args completes without a space, got %q", got)
	}
	p, got = submit(t, p, up, up)
	if got != "pace 2" {
		t.Fatalf("second up should recall the older command, got %q", got)
	}
	_, got = submit(t, p, up, down, down)
	if got != "" {
		t.Fatalf("walking past the newest entry clears the input, got %q", got)
	}
}

func TestCompleteHint(t *testing.T) {
	t.Parallel()
	if components.Complete("sort <id|kimariji|kimariji-len|group>") != "sort " || components.Complete("deck:next") != "deck:next" {
		t.Fatal("unexpected completion")
	}
}
