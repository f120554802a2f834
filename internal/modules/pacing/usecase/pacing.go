package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	hclog "github.com/hashicorp/go-hclog"

	"yomite/internal/modules/pacing/domain"
	pacingdto "yomite/internal/modules/pacing/dto"
	pacingin "yomite/internal/modules/pacing/port/in"
	pacingout "yomite/internal/modules/pacing/port/out"
	"yomite/internal/modules/pacing/service"
	apperrors "yomite/internal/platform/errors"
)

// Cycle is the configured segment layout.
type Cycle struct {
	Weights            []float64
	Labels             []string
	Colors             []string
	DefaultUnitSeconds float64
	MinUnitSeconds     float64
}

type Interactor struct {
	engine *service.TimerEngine
	store  pacingout.PaceStore
	logger hclog.Logger

	model   domain.SegmentModel
	labels  []string
	palette []domain.Color

	defaultUnit float64
	minUnit     float64
	unit        float64
	loaded      bool
}

func NewInteractor(engine *service.TimerEngine, store pacingout.PaceStore, cycle Cycle, logger hclog.Logger) (pacingin.Usecase, error) {
	model, err := domain.NewSegmentModel(cycle.Weights)
	if err != nil {
		return nil, err
	}
	palette := make([]domain.Color, len(cycle.Colors))
	for i, c := range cycle.Colors {
		palette[i] = domain.Color(c)
	}
	if len(palette) != model.Len() {
		return nil, fmt.Errorf("%w: %d colors for %d segments", domain.ErrPaletteMismatch, len(palette), model.Len())
	}
	labels := make([]string, model.Len())
	for i := range labels {
		if i < len(cycle.Labels) && cycle.Labels[i] != "" {
			labels[i] = cycle.Labels[i]
		} else {
			labels[i] = fmt.Sprintf("segment %d", i+1)
		}
	}
	minUnit := cycle.MinUnitSeconds
	if !(minUnit > 0) || math.IsInf(minUnit, 0) {
		minUnit = service.DefaultMinUnitSeconds
	}
	defaultUnit := cycle.DefaultUnitSeconds
	if !(defaultUnit > 0) || math.IsInf(defaultUnit, 0) {
		defaultUnit = 1
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{
		engine:      engine,
		store:       store,
		logger:      logger,
		model:       model,
		labels:      labels,
		palette:     palette,
		defaultUnit: defaultUnit,
		minUnit:     minUnit,
		unit:        defaultUnit,
	}, nil
}

func (i *Interactor) Start(ctx context.Context, input pacingdto.StartInput) error {
	if i.engine.IsRunning() {
		return nil
	}
	if err := i.ensureLoaded(ctx); err != nil {
		return err
	}
	lastSegment := -1
	onUpdate := func(sample domain.ProgressSample) {
		if sample.SegmentIndex != lastSegment {
			lastSegment = sample.SegmentIndex
			if input.OnSegment != nil {
				input.OnSegment(pacingdto.SegmentChange{Index: sample.SegmentIndex, Label: i.labels[sample.SegmentIndex]})
			}
		}
		if input.OnUpdate != nil {
			input.OnUpdate(i.progress(sample))
		}
	}
	if err := i.engine.Start(i.model, i.unitSeconds, onUpdate, input.OnComplete); err != nil {
		return err
	}
	i.logger.Debug("timer started", "unit_seconds", i.unit, "cycle_seconds", i.model.TotalWeight()*i.unit)
	return nil
}

func (i *Interactor) Reset(_ context.Context, onReset func()) {
	i.engine.Reset(onReset)
	i.logger.Debug("timer reset")
}

func (i *Interactor) IsRunning() bool {
	return i.engine.IsRunning()
}

func (i *Interactor) Pace(ctx context.Context) (pacingdto.PaceOutput, error) {
	if err := i.ensureLoaded(ctx); err != nil {
		return pacingdto.PaceOutput{}, err
	}
	return i.paceOutput(), nil
}

// SetUnitSeconds changes pacing without restarting a running timer. NaN and
// zero restore the default; values below the minimum are raised to it.
func (i *Interactor) SetUnitSeconds(ctx context.Context, value float64) (pacingdto.PaceOutput, error) {
	if math.IsInf(value, 0) || value < 0 {
		return pacingdto.PaceOutput{}, fmt.Errorf("%w: unit seconds %v", apperrors.ErrInvalidInput, value)
	}
	if err := i.ensureLoaded(ctx); err != nil {
		return pacingdto.PaceOutput{}, err
	}
	i.unit = i.normalize(value)
	if i.store != nil {
		if err := i.store.SaveUnitSeconds(ctx, i.unit); err != nil {
			return pacingdto.PaceOutput{}, err
		}
	}
	i.logger.Info("pace changed", "unit_seconds", i.unit)
	return i.paceOutput(), nil
}

func (i *Interactor) Segments(ctx context.Context) ([]pacingdto.SegmentOutput, error) {
	if err := i.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	weights := i.model.Weights()
	thresholds := i.model.CumulativeThresholds()
	out := make([]pacingdto.SegmentOutput, len(weights))
	start := 0.0
	for idx, w := range weights {
		end := thresholds[idx] * i.unit
		out[idx] = pacingdto.SegmentOutput{
			Index:        idx,
			Label:        i.labels[idx],
			Weight:       w,
			Color:        string(i.palette[idx]),
			StartSeconds: start,
			EndSeconds:   end,
		}
		start = end
	}
	return out, nil
}

func (i *Interactor) Ring(_ context.Context) ([]pacingdto.ArcOutput, error) {
	arcs, err := domain.PaintRing(i.model, i.palette)
	if err != nil {
		return nil, err
	}
	out := make([]pacingdto.ArcOutput, len(arcs))
	for idx, arc := range arcs {
		out[idx] = pacingdto.ArcOutput{
			Segment:  arc.Segment,
			Label:    i.labels[arc.Segment],
			Color:    string(arc.Color),
			StartDeg: arc.StartDeg,
			EndDeg:   arc.EndDeg,
		}
	}
	return out, nil
}

func (i *Interactor) ensureLoaded(ctx context.Context) error {
	if i.loaded || i.store == nil {
		i.loaded = true
		return nil
	}
	value, err := i.store.LoadUnitSeconds(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
	case err != nil:
		return err
	default:
		i.unit = i.normalize(value)
	}
	i.loaded = true
	return nil
}

func (i *Interactor) normalize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		value = i.defaultUnit
	}
	return math.Max(value, i.minUnit)
}

func (i *Interactor) unitSeconds() float64 {
	return i.unit
}

func (i *Interactor) paceOutput() pacingdto.PaceOutput {
	return pacingdto.PaceOutput{
		UnitSeconds:    i.unit,
		MinUnitSeconds: i.minUnit,
		CycleSeconds:   i.model.TotalWeight() * i.unit,
	}
}

func (i *Interactor) progress(sample domain.ProgressSample) pacingdto.ProgressOutput {
	return pacingdto.ProgressOutput{
		ElapsedMs:        sample.ClampedElapsedMs,
		TotalMs:          sample.TotalMs,
		Fraction:         sample.Fraction,
		Degrees:          sample.Degrees(),
		SegmentIndex:     sample.SegmentIndex,
		SegmentLabel:     i.labels[sample.SegmentIndex],
		RemainingSeconds: sample.Remaining().Seconds(),
	}
}
