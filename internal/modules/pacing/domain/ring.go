package domain

import (
	"fmt"
	"math"
)

// Color is a palette entry, typically a hex string such as "#22c55e".
type Color string

// Arc is the angular span painted for one segment, in degrees clockwise
// from 12 o'clock.
type Arc struct {
	Segment  int
	Color    Color
	StartDeg float64
	EndDeg   float64
}

// Span is the arc width in degrees.
func (a Arc) Span() float64 { return a.EndDeg - a.StartDeg }

// Contains reports whether deg falls inside [StartDeg, EndDeg).
func (a Arc) Contains(deg float64) bool {
	return deg >= a.StartDeg && deg < a.EndDeg
}

// PaintRing maps every segment to a contiguous arc covering [0, 360).
// It depends only on the model, never on a running timer.
func PaintRing(model SegmentModel, palette []Color) ([]Arc, error) {
	if model.Len() == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrInvalidModel)
	}
	if len(palette) != model.Len() {
		return nil, fmt.Errorf("%w: %d colors for %d segments", ErrPaletteMismatch, len(palette), model.Len())
	}
	total := model.TotalWeight()
	arcs := make([]Arc, model.Len())
	start := 0.0
	for i, threshold := range model.thresholds {
		end := threshold / total * 360
		if i == len(model.thresholds)-1 {
			end = 360
		}
		arcs[i] = Arc{Segment: i, Color: palette[i], StartDeg: start, EndDeg: end}
		start = end
	}
	return arcs, nil
}

// ArcAt returns the arc covering deg, normalized into [0, 360). NaN and
// infinite angles match nothing.
func ArcAt(arcs []Arc, deg float64) (Arc, bool) {
	if len(arcs) == 0 || math.IsNaN(deg) || math.IsInf(deg, 0) {
		return Arc{}, false
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	for _, arc := range arcs {
		if arc.Contains(deg) {
			return arc, true
		}
	}
	return arcs[len(arcs)-1], true
}
