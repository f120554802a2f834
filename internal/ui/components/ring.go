package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"yomite/internal/modules/pacing/domain"
	pacingdto "yomite/internal/modules/pacing/dto"
	"yomite/internal/ui/theme"
)

const (
	ringFilled = "█"
	ringTrack  = "░"
	ringInner  = 0.55
)

// RingCell is one terminal cell of the ring. Arc is -1 outside the band.
type RingCell struct {
	Arc    int
	Filled bool
}

// RingCells lays the arcs out on a grid of 2r+1 rows and 2(2r+1) columns,
// two columns per row unit to compensate for tall terminal cells. Cells
// whose angle, clockwise from 12 o'clock, is below sweep are filled.
func RingCells(arcs []pacingdto.ArcOutput, sweep float64, radius int) [][]RingCell {
	if radius < 1 {
		radius = 1
	}
	rows := 2*radius + 1
	cols := 2 * rows
	r := float64(radius)
	painted := domainArcs(arcs)
	grid := make([][]RingCell, rows)
	for row := 0; row < rows; row++ {
		grid[row] = make([]RingCell, cols)
		for col := 0; col < cols; col++ {
			dy := r - float64(row)
			dx := (float64(col)+0.5)/2 - (r + 0.5)
			d := math.Hypot(dx, dy)
			if len(arcs) == 0 || d > r+0.5 || d < r*ringInner {
				grid[row][col] = RingCell{Arc: -1}
				continue
			}
			deg := math.Atan2(dx, dy) * 180 / math.Pi
			if deg < 0 {
				deg += 360
			}
			arc, _ := domain.ArcAt(painted, deg)
			grid[row][col] = RingCell{Arc: arc.Segment, Filled: sweep >= 360 || deg < sweep}
		}
	}
	return grid
}

// domainArcs indexes arcs by position so ArcAt hands back slice indexes.
func domainArcs(arcs []pacingdto.ArcOutput) []domain.Arc {
	out := make([]domain.Arc, len(arcs))
	for i, arc := range arcs {
		out[i] = domain.Arc{Segment: i, Color: domain.Color(arc.Color), StartDeg: arc.StartDeg, EndDeg: arc.EndDeg}
	}
	return out
}

// RenderRing draws the painted ring with the elapsed sweep filled in.
func RenderRing(arcs []pacingdto.ArcOutput, sweep float64, radius int) string {
	grid := RingCells(arcs, sweep, radius)
	styles := make([]lipgloss.Style, len(arcs))
	for i, arc := range arcs {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(arc.Color))
	}
	track := lipgloss.NewStyle().Foreground(theme.Surface1)

	var sb strings.Builder
	for i, row := range grid {
		for _, cell := range row {
			switch {
			case cell.Arc < 0:
				sb.WriteByte(' ')
			case cell.Filled:
				sb.WriteString(styles[cell.Arc].Render(ringFilled))
			default:
				sb.WriteString(track.Render(ringTrack))
			}
		}
		if i < len(grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// RenderLegend lists the segments in ring order with their colors.
func RenderLegend(arcs []pacingdto.ArcOutput, active int) string {
	parts := make([]string, 0, len(arcs))
	for i, arc := range arcs {
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(arc.Color)).Render("■") + " " + arc.Label
		if i == active {
			label = theme.Hot.Render("▸ ") + label
		} else {
			label = "  " + label
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "\n")
}
