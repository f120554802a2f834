package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidModel    = errors.New("invalid segment model")
	ErrPaletteMismatch = errors.New("palette length does not match segment count")
)

// SegmentModel is an immutable, validated cycle of relative segment weights.
// The zero value has no segments and is rejected by the timer engine.
type SegmentModel struct {
	weights    []float64
	thresholds []float64
}

// NewSegmentModel validates weights once; every later lookup trusts them.
func NewSegmentModel(weights []float64) (SegmentModel, error) {
	if len(weights) == 0 {
		return SegmentModel{}, fmt.Errorf("%w: no segments", ErrInvalidModel)
	}
	owned := make([]float64, len(weights))
	thresholds := make([]float64, len(weights))
	acc := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return SegmentModel{}, fmt.Errorf("%w: weight %d is %v", ErrInvalidModel, i, w)
		}
		next := acc + w
		if next <= acc || math.IsInf(next, 0) {
			return SegmentModel{}, fmt.Errorf("%w: weight %d does not advance the cycle", ErrInvalidModel, i)
		}
		acc = next
		owned[i] = w
		thresholds[i] = acc
	}
	return SegmentModel{weights: owned, thresholds: thresholds}, nil
}

func (m SegmentModel) Len() int { return len(m.weights) }

func (m SegmentModel) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}

// TotalWeight is the sum of all weights; it equals the last threshold.
func (m SegmentModel) TotalWeight() float64 {
	if len(m.thresholds) == 0 {
		return 0
	}
	return m.thresholds[len(m.thresholds)-1]
}

// CumulativeThresholds returns the strictly increasing prefix sums.
func (m SegmentModel) CumulativeThresholds() []float64 {
	return append([]float64(nil), m.thresholds...)
}

// SegmentIndexFor returns the first segment whose threshold lies beyond
// elapsedUnits. Values at or past the total saturate to the last segment.
func (m SegmentModel) SegmentIndexFor(elapsedUnits float64) int {
	for i, threshold := range m.thresholds {
		if elapsedUnits < threshold {
			return i
		}
	}
	return len(m.thresholds) - 1
}
