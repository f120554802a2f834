package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"yomite/internal/bootstrap"
	pacingdto "yomite/internal/modules/pacing/dto"
	plugindto "yomite/internal/modules/plugin/dto"
	apperrors "yomite/internal/platform/errors"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var cycles int
	run := &cobra.Command{
		Use:   "run",
		Short: "Run reading cycles in the terminal without the UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cycles < 1 {
				return fmt.Errorf("%w: cycles must be at least 1", apperrors.ErrInvalidInput)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(flags, func(app *bootstrap.App) error {
				return runCycles(ctx, cmd, app, cycles)
			})
		},
	}
	run.Flags().IntVar(&cycles, "cycles", 1, "number of cycles to run back to back")
	return run
}

// cueDispatcher delivers cues off the frame loop so slow plugins never
// stall the bar.
type cueDispatcher struct {
	app   *bootstrap.App
	queue chan plugindto.EventInput
	wg    sync.WaitGroup
}

func newCueDispatcher(app *bootstrap.App) *cueDispatcher {
	d := &cueDispatcher{app: app, queue: make(chan plugindto.EventInput, 16)}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for event := range d.queue {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := d.app.PluginCLI.Dispatch(ctx, event); err != nil {
				d.app.Logger.Warn("cue dispatch failed", "kind", event.Kind, "error", err)
			}
			cancel()
		}
	}()
	return d
}

func (d *cueDispatcher) send(event plugindto.EventInput) {
	select {
	case d.queue <- event:
	default:
		d.app.Logger.Warn("cue dropped, dispatcher busy", "kind", event.Kind)
	}
}

func (d *cueDispatcher) close() {
	close(d.queue)
	d.wg.Wait()
}

func runCycles(ctx context.Context, cmd *cobra.Command, app *bootstrap.App, cycles int) error {
	pace, err := app.PacingCLI.Pace(ctx)
	if err != nil {
		return err
	}
	total := int64(pace.CycleSeconds * 1000)

	cues := newCueDispatcher(app)
	defer cues.close()

	progress := mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(cmd.OutOrStdout()), mpb.WithRefreshRate(50*time.Millisecond))
	defer progress.Wait()

	cardID := 0
	if deck, err := app.DeckCLI.Status(ctx); err == nil {
		cardID = deck.Current.CardID
	}

	for cycle := 1; cycle <= cycles; cycle++ {
		// Decorators render on mpb's own goroutine.
		var label atomic.Value
		label.Store("")
		name := fmt.Sprintf("cycle %d/%d", cycle, cycles)
		bar := progress.New(total,
			mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
			mpb.PrependDecorators(
				decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
				decor.OnComplete(decor.Any(func(decor.Statistics) string { return label.Load().(string) }, decor.WC{W: 10}), "done"),
			),
			mpb.AppendDecorators(
				decor.Any(func(s decor.Statistics) string {
					return fmt.Sprintf("%5.1fs", float64(s.Total-s.Current)/1000)
				}),
			),
		)

		// A completed engine keeps its elapsed time until reset.
		app.PacingCLI.Reset(ctx)
		completed := false
		err := app.PacingCLI.Start(ctx, pacingdto.StartInput{
			OnUpdate: func(p pacingdto.ProgressOutput) {
				label.Store(p.SegmentLabel)
				bar.SetCurrent(int64(p.ElapsedMs))
			},
			OnSegment: func(change pacingdto.SegmentChange) {
				cues.send(plugindto.EventInput{
					Kind:         "segment",
					SegmentIndex: change.Index,
					SegmentLabel: change.Label,
					CardID:       cardID,
					At:           time.Now(),
				})
			},
			OnComplete: func() {
				completed = true
				bar.SetCurrent(total)
				cues.send(plugindto.EventInput{Kind: "complete", CardID: cardID, At: time.Now()})
			},
		})
		if err != nil {
			bar.Abort(false)
			return err
		}

		if err := app.Loop.Run(ctx); err != nil {
			app.PacingCLI.Reset(context.Background())
			bar.Abort(false)
			cues.send(plugindto.EventInput{Kind: "reset", CardID: cardID, At: time.Now()})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if !completed {
			bar.Abort(false)
			continue
		}
		if _, err := app.SessionCLI.RecordCycle(ctx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
			app.Logger.Warn("record cycle failed", "error", err)
		}
	}
	return nil
}
