package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pacingdto "yomite/internal/modules/pacing/dto"
	"yomite/internal/platform/config"
	apperrors "yomite/internal/platform/errors"
	"yomite/internal/platform/logging"
)

func newTestApp(t *testing.T, settingsYAML string) (*App, error) {
	t.Helper()
	dir := t.TempDir()
	if settingsYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(settingsYAML), 0o644); err != nil {
			t.Fatalf("write settings: %v", err)
		}
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := New(cfg, Options{Logger: logging.Discard(), Seed: 7})
	if app != nil {
		t.Cleanup(func() { _ = app.Close() })
	}
	return app, err
}

func TestNewWiresDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	app, err := newTestApp(t, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	pace, err := app.PacingCLI.Pace(ctx)
	if err != nil || pace.UnitSeconds != 1.0 || pace.CycleSeconds != 15 {
		t.Fatalf("default pace: %+v %v", pace, err)
	}
	deck, err := app.DeckCLI.Start(ctx, nil)
	if err != nil || deck.Total != 7 || deck.Index != 1 {
		t.Fatalf("deck start: %+v %v", deck, err)
	}
	if _, err := app.SessionCLI.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
	plugins, err := app.PluginCLI.List(ctx)
	if err != nil || len(plugins) != 0 {
		t.Fatalf("expected no plugins, got %v %v", plugins, err)
	}
}

func TestLoopRunsHeadlessCycle(t *testing.T) {
	t.Parallel()
	app, err := newTestApp(t, "unit_seconds: 0.01\nmin_unit_seconds: 0.01\nframe_rate: 200\n")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := app.SessionCLI.Start(ctx, "loop", 7, 0.01); err != nil {
		t.Fatalf("session start: %v", err)
	}
	var segments []int
	completed := false
	err = app.PacingCLI.Start(ctx, pacingdto.StartInput{
		OnSegment:  func(change pacingdto.SegmentChange) { segments = append(segments, change.Index) },
		OnComplete: func() { completed = true },
	})
	if err != nil {
		t.Fatalf("pacing start: %v", err)
	}
	if err := app.Loop.Run(ctx); err != nil {
		t.Fatalf("loop: %v", err)
	}
	if !completed || len(segments) == 0 || segments[0] != 0 || segments[len(segments)-1] != 3 {
		t.Fatalf("cycle did not run through: completed=%t segments=%v", completed, segments)
	}

	active, err := app.SessionCLI.RecordCycle(ctx)
	if err != nil || active.Cycles != 1 {
		t.Fatalf("record cycle: %+v %v", active, err)
	}
}

func TestNewRejectsInvalidWeights(t *testing.T) {
	t.Parallel()
	_, err := newTestApp(t, "segments:\n  - label: a\n    weight: 0\n  - label: b\n    weight: -1\n")
	if err == nil {
		t.Fatal("expected invalid weights to fail")
	}
}
