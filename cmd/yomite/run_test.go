package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"yomite/internal/bootstrap"
	"yomite/internal/platform/config"
	"yomite/internal/platform/logging"
)

func TestRunCyclesRunsEachCycleInFull(t *testing.T) {
	if testing.Short() {
		t.Skip("runs real timer cycles")
	}
	t.Parallel()
	dir := t.TempDir()
	// 15 weight units at 20ms each: 300ms per cycle.
	settings := "unit_seconds: 0.02\nmin_unit_seconds: 0.01\nframe_rate: 200\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(settings), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := bootstrap.New(cfg, bootstrap.Options{Logger: logging.Discard(), Seed: 1})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := app.SessionCLI.Start(ctx, "run", 0, 0.02); err != nil {
		t.Fatalf("session start: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	began := time.Now()
	if err := runCycles(ctx, cmd, app, 3); err != nil {
		t.Fatalf("run cycles: %v", err)
	}
	took := time.Since(began)
	if took < 850*time.Millisecond {
		t.Fatalf("3 cycles of 300ms each took only %v", took)
	}

	active, err := app.SessionCLI.GetActive(ctx)
	if err != nil || active.Cycles != 3 {
		t.Fatalf("expected 3 recorded cycles, got %+v %v", active, err)
	}
}
