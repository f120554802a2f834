package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	deckinadapter "yomite/internal/modules/deck/adapter/in"
	deckoutadapter "yomite/internal/modules/deck/adapter/out"
	deckin "yomite/internal/modules/deck/port/in"
	deckservice "yomite/internal/modules/deck/service"
	deckusecase "yomite/internal/modules/deck/usecase"
	pacinginadapter "yomite/internal/modules/pacing/adapter/in"
	pacingoutadapter "yomite/internal/modules/pacing/adapter/out"
	pacingin "yomite/internal/modules/pacing/port/in"
	pacingout "yomite/internal/modules/pacing/port/out"
	pacingservice "yomite/internal/modules/pacing/service"
	pacingusecase "yomite/internal/modules/pacing/usecase"
	plugininadapter "yomite/internal/modules/plugin/adapter/in"
	pluginoutadapter "yomite/internal/modules/plugin/adapter/out"
	pluginin "yomite/internal/modules/plugin/port/in"
	pluginservice "yomite/internal/modules/plugin/service"
	pluginusecase "yomite/internal/modules/plugin/usecase"
	sessioninadapter "yomite/internal/modules/session/adapter/in"
	sessionoutadapter "yomite/internal/modules/session/adapter/out"
	sessionin "yomite/internal/modules/session/port/in"
	sessionservice "yomite/internal/modules/session/service"
	sessionusecase "yomite/internal/modules/session/usecase"
	"yomite/internal/platform/clock"
	"yomite/internal/platform/config"
	"yomite/internal/platform/id"
	"yomite/internal/platform/logging"
	uiapp "yomite/internal/ui/app"
)

// Options tune how New builds the application.
type Options struct {
	// LogLevel overrides the level from settings when set.
	LogLevel string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Logger skips opening the log file when set.
	Logger hclog.Logger
	// Seed fixes the deck shuffle; zero seeds from the clock.
	Seed int64
}

type App struct {
	Config   config.Config
	Settings config.Settings
	Logger   hclog.Logger

	PacingCLI  pacinginadapter.CLIHandler
	DeckCLI    deckinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	PluginCLI  plugininadapter.CLIHandler

	// Loop drives the pacing instance behind PacingCLI for headless runs.
	Loop *pacingoutadapter.LoopScheduler

	deckUC    deckin.Usecase
	sessionUC sessionin.Usecase
	pluginUC  pluginin.Usecase
	paceStore pacingout.PaceStore
	closers   []io.Closer
}

func New(cfg config.Config, opts Options) (*App, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	settings, err := config.LoadSettings(fs, cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	level := settings.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	app := &App{Config: cfg, Settings: settings}
	logger := opts.Logger
	if logger == nil {
		var closer io.Closer
		logger, closer, err = logging.New(cfg.LogPath, level)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, closer)
	}
	app.Logger = logger

	if err := app.wire(fs, opts); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(fs afero.Fs, opts Options) error {
	cfg := a.Config
	clk := clock.SystemClock{}

	paceStore, err := pacingoutadapter.NewSQLitePaceStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("new pace store: %w", err)
	}
	a.closers = append(a.closers, paceStore)
	a.paceStore = paceStore

	a.Loop = pacingoutadapter.NewLoopScheduler(clock.MonotonicClock{}, a.Settings.FrameInterval())
	pacingUC, err := a.NewPacing(a.Loop)
	if err != nil {
		return err
	}
	a.PacingCLI = pacinginadapter.NewCLIHandler(pacingUC)

	stateStore, err := deckoutadapter.NewSQLiteStateStore(cfg.DBPath, clk)
	if err != nil {
		return fmt.Errorf("new state store: %w", err)
	}
	a.closers = append(a.closers, stateStore)
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a.deckUC = deckusecase.NewInteractor(
		deckservice.NewDeckService(rand.New(rand.NewSource(seed))),
		deckoutadapter.NewYAMLCardSource(fs, a.Settings.CardsFile),
		stateStore,
		a.Logger.Named("deck"),
		deckusecase.Options{},
	)
	a.DeckCLI = deckinadapter.NewCLIHandler(a.deckUC)

	a.sessionUC = sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, id.RandomHex{}, sessionoutadapter.NewNoteSessionStore(fs, cfg.DataPath)),
		sessionoutadapter.NewFileActiveSessionStore(fs, cfg.DataPath),
		a.Logger,
	)
	a.SessionCLI = sessioninadapter.NewCLIHandler(a.sessionUC)

	host := pluginoutadapter.NewGRPCHost(a.Logger)
	a.closers = append(a.closers, host)
	a.pluginUC = pluginusecase.NewInteractor(
		pluginservice.NewPluginService(fs, pluginoutadapter.NewFileManifestStore(fs, cfg.DataPath), host),
		a.Logger,
	)
	a.PluginCLI = plugininadapter.NewCLIHandler(a.pluginUC)
	return nil
}

// NewPacing builds a pacing usecase driven by scheduler and backed by the
// shared pace store.
func (a *App) NewPacing(scheduler pacingout.FrameScheduler) (pacingin.Usecase, error) {
	engine := pacingservice.NewTimerEngine(clock.MonotonicClock{}, scheduler,
		pacingservice.WithMinUnitSeconds(a.Settings.MinUnitSeconds))
	uc, err := pacingusecase.NewInteractor(engine, a.paceStore, pacingusecase.Cycle{
		Weights:            a.Settings.Weights(),
		Labels:             a.Settings.Labels(),
		Colors:             a.Settings.Colors(),
		DefaultUnitSeconds: a.Settings.UnitSeconds,
		MinUnitSeconds:     a.Settings.MinUnitSeconds,
	}, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("build pacing cycle from %s: %w", a.Config.SettingsPath, err)
	}
	return uc, nil
}

// Close releases stores, plugin processes and the log file, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RunTUI runs the terminal UI with its own frame-driven pacing instance.
func RunTUI(app *App) error {
	frames := pacingoutadapter.NewTeaScheduler(app.Settings.FrameInterval())
	pacing, err := app.NewPacing(frames)
	if err != nil {
		return err
	}
	model := uiapp.NewModel(uiapp.Deps{
		Pacing:  pacing,
		Deck:    app.deckUC,
		Session: app.sessionUC,
		Plugin:  app.pluginUC,
		Frames:  frames,
		Logger:  app.Logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
