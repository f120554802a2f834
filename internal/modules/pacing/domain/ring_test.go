package domain_test

import (
	"errors"
	"math"
	"testing"

	"yomite/internal/modules/pacing/domain"
)

var fourColors = []domain.Color{"#22c55e", "#f59e0b", "#3b82f6", "#ef4444"}

func TestPaintRingContiguousFullCircle(t *testing.T) {
	t.Parallel()
	for _, weights := range [][]float64{
		{5, 3, 1, 6},
		{1, 1, 1, 1},
		{0.3, 7.77, 1e-3, 2},
		{1e-6, 3, 1e6, 0.5},
	} {
		model, err := domain.NewSegmentModel(weights)
		if err != nil {
			t.Fatalf("new model: %v", err)
		}
		arcs, err := domain.PaintRing(model, fourColors)
		if err != nil {
			t.Fatalf("paint: %v", err)
		}
		if arcs[0].StartDeg != 0 || arcs[len(arcs)-1].EndDeg != 360 {
			t.Fatalf("%v: ring must span [0, 360], got %v..%v", weights, arcs[0].StartDeg, arcs[len(arcs)-1].EndDeg)
		}
		sum := 0.0
		for i, arc := range arcs {
			if arc.Color != fourColors[i] || arc.Segment != i {
				t.Fatalf("arc %d carries wrong segment/color: %+v", i, arc)
			}
			if i > 0 && arcs[i-1].EndDeg != arc.StartDeg {
				t.Fatalf("%v: gap between arc %d and %d", weights, i-1, i)
			}
			want := weights[i] / model.TotalWeight() * 360
			if math.Abs(arc.Span()-want) > 1e-9 {
				t.Fatalf("%v: arc %d span %v want %v", weights, i, arc.Span(), want)
			}
			sum += arc.Span()
		}
		if math.Abs(sum-360) > 1e-9 {
			t.Fatalf("%v: spans sum to %v", weights, sum)
		}
	}
}

func TestPaintRingDefaultCycleIsExact(t *testing.T) {
	t.Parallel()
	model, _ := domain.NewSegmentModel([]float64{5, 3, 1, 6})
	arcs, err := domain.PaintRing(model, fourColors)
	if err != nil {
		t.Fatalf("paint: %v", err)
	}
	want := []float64{0, 120, 192, 216, 360}
	sum := 0.0
	for i, arc := range arcs {
		if arc.StartDeg != want[i] || arc.EndDeg != want[i+1] {
			t.Fatalf("arc %d: %v..%v want %v..%v", i, arc.StartDeg, arc.EndDeg, want[i], want[i+1])
		}
		sum += arc.Span()
	}
	if sum != 360 {
		t.Fatalf("spans sum to %v", sum)
	}
}

func TestPaintRingPaletteMismatch(t *testing.T) {
	t.Parallel()
	model, _ := domain.NewSegmentModel([]float64{5, 3, 1, 6})
	if _, err := domain.PaintRing(model, fourColors[:3]); !errors.Is(err, domain.ErrPaletteMismatch) {
		t.Fatalf("expected ErrPaletteMismatch, got %v", err)
	}
	if _, err := domain.PaintRing(domain.SegmentModel{}, nil); !errors.Is(err, domain.ErrInvalidModel) {
		t.Fatalf("zero model should be invalid, got %v", err)
	}
}

func TestArcAtNormalizesAngles(t *testing.T) {
	t.Parallel()
	model, _ := domain.NewSegmentModel([]float64{5, 3, 1, 6})
	arcs, _ := domain.PaintRing(model, fourColors)
	cases := map[float64]int{0: 0, 119.9: 0, 120: 1, 200: 2, 359.99: 3, 360: 0, -10: 3, 480: 1}
	for deg, want := range cases {
		arc, ok := domain.ArcAt(arcs, deg)
		if !ok || arc.Segment != want {
			t.Fatalf("ArcAt(%v) = %d, want %d", deg, arc.Segment, want)
		}
	}
	if _, ok := domain.ArcAt(nil, 10); ok {
		t.Fatalf("empty ring should not resolve an arc")
	}
	if arc, ok := domain.ArcAt(arcs, 1e20); !ok || arc.Segment < 0 || arc.Segment > 3 {
		t.Fatalf("huge angle should still resolve, got %+v %v", arc, ok)
	}
	if arc, ok := domain.ArcAt(arcs, -3600-10); !ok || arc.Segment != 3 {
		t.Fatalf("many negative turns should wrap, got %+v %v", arc, ok)
	}
	for _, deg := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if _, ok := domain.ArcAt(arcs, deg); ok {
			t.Fatalf("ArcAt(%v) should not resolve", deg)
		}
	}
}
