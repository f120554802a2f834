package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"yomite/internal/bootstrap"
	deckdto "yomite/internal/modules/deck/dto"
	"yomite/internal/platform/config"
	apperrors "yomite/internal/platform/errors"
	"yomite/internal/ui/components"
)

type rootFlags struct {
	dataPath   string
	configPath string
	logLevel   string
	seed       int64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "yomite",
		Short:         "Paced reading timer for karuta practice",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataPath, "data", ".", "data directory (state db, sessions, plugins)")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "settings file (default <data>/settings.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override: trace|debug|info|warn|error")
	root.PersistentFlags().Int64Var(&flags.seed, "seed", 0, "deck shuffle seed (0 = random)")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newRingCmd(flags))
	root.AddCommand(newPaceCmd(flags))
	root.AddCommand(newDeckCmd(flags))
	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newPluginCmd(flags))
	return root
}

func loadApp(flags *rootFlags) (*bootstrap.App, error) {
	cfg, err := config.New(flags.dataPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg.WithSettingsPath(flags.configPath), bootstrap.Options{
		LogLevel: flags.logLevel,
		Seed:     flags.seed,
	})
}

// withApp loads the app, runs fn and always releases it.
func withApp(flags *rootFlags, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(flags)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the practice terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.RunTUI)
		},
	}
}

func newRingCmd(flags *rootFlags) *cobra.Command {
	var radius int
	ring := &cobra.Command{
		Use:   "ring",
		Short: "Print the segment ring and its timings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				ctx := context.Background()
				arcs, err := app.PacingCLI.Ring(ctx)
				if err != nil {
					return err
				}
				segments, err := app.PacingCLI.Segments(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, components.RenderRing(arcs, 0, radius))
				for i, s := range segments {
					_, _ = fmt.Fprintf(out, "%d\t%s\t%s\tweight=%g\t%.0f°-%.0f°\t%.2fs-%.2fs\n",
						s.Index, s.Label, s.Color, s.Weight, arcs[i].StartDeg, arcs[i].EndDeg, s.StartSeconds, s.EndSeconds)
				}
				return nil
			})
		},
	}
	ring.Flags().IntVar(&radius, "radius", 6, "ring radius in rows")
	return ring
}

func newPaceCmd(flags *rootFlags) *cobra.Command {
	pace := &cobra.Command{Use: "pace", Short: "Show or change seconds per weight unit"}

	pace.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the current pace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.PacingCLI.Pace(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "unit=%.3fs min=%.3fs cycle=%.2fs\n", out.UnitSeconds, out.MinUnitSeconds, out.CycleSeconds)
				return nil
			})
		},
	})

	pace.AddCommand(&cobra.Command{
		Use:   "set <seconds>",
		Short: "Persist a new pace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parse seconds: %w", err)
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.PacingCLI.SetPace(context.Background(), value)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pace set: unit=%.3fs cycle=%.2fs\n", out.UnitSeconds, out.CycleSeconds)
				return nil
			})
		},
	})
	return pace
}

func newDeckCmd(flags *rootFlags) *cobra.Command {
	deck := &cobra.Command{Use: "deck", Short: "Build and walk a practice deck"}

	deck.AddCommand(&cobra.Command{
		Use:   "start [card ids...]",
		Short: "Shuffle a deck from the selection (or the given ids)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("parse card id %q: %w", arg, err)
				}
				ids = append(ids, v)
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.DeckCLI.Start(context.Background(), ids)
				if err != nil {
					return err
				}
				printDeck(cmd, out)
				return nil
			})
		},
	})

	for _, step := range []struct {
		use, short string
		call       func(app *bootstrap.App) (deckdto.DeckOutput, error)
	}{
		{"status", "Show the current position", func(app *bootstrap.App) (deckdto.DeckOutput, error) {
			return app.DeckCLI.Status(context.Background())
		}},
		{"next", "Advance to the next card", func(app *bootstrap.App) (deckdto.DeckOutput, error) {
			return app.DeckCLI.Next(context.Background())
		}},
		{"prev", "Go back one card", func(app *bootstrap.App) (deckdto.DeckOutput, error) {
			return app.DeckCLI.Prev(context.Background())
		}},
	} {
		deck.AddCommand(&cobra.Command{
			Use:   step.use,
			Short: step.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(flags, func(app *bootstrap.App) error {
					out, err := step.call(app)
					if errors.Is(err, apperrors.ErrNoActiveDeck) {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active deck")
						return nil
					}
					if err != nil {
						return err
					}
					printDeck(cmd, out)
					return nil
				})
			},
		})
	}

	deck.AddCommand(&cobra.Command{
		Use:   "exit",
		Short: "Drop the deck, keeping the selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				if err := app.DeckCLI.Exit(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deck cleared")
				return nil
			})
		},
	})

	var row, column int
	toggle := &cobra.Command{
		Use:   "toggle [card ids...]",
		Short: "Flip cards in the picker selection, or a whole matrix row/column",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("parse card id %q: %w", arg, err)
				}
				ids = append(ids, v)
			}
			return withApp(flags, func(app *bootstrap.App) error {
				ctx := context.Background()
				var (
					out deckdto.SelectionOutput
					err error
				)
				switch {
				case cmd.Flags().Changed("row"):
					out, err = app.DeckCLI.ToggleMatrix(ctx, "row", row)
				case cmd.Flags().Changed("column"):
					out, err = app.DeckCLI.ToggleMatrix(ctx, "column", column)
				default:
					out, err = app.DeckCLI.Toggle(ctx, ids...)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "selected (%d): %v\n", len(out.IDs), out.IDs)
				return nil
			})
		},
	}
	toggle.Flags().IntVar(&row, "row", 0, "toggle every card whose tens digit is N (row 0 holds 1-9 and 100)")
	toggle.Flags().IntVar(&column, "column", 0, "toggle every card whose ones digit is N")
	toggle.MarkFlagsMutuallyExclusive("row", "column")
	deck.AddCommand(toggle)

	var sortMode string
	sections := &cobra.Command{
		Use:   "sections",
		Short: "List cards grouped for the picker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.DeckCLI.Sections(context.Background(), sortMode)
				if err != nil {
					return err
				}
				for _, section := range out {
					parts := make([]string, 0, len(section.Cards))
					for _, c := range section.Cards {
						mark := ""
						if c.Selected {
							mark = "*"
						}
						parts = append(parts, fmt.Sprintf("%d%s(%s)", c.ID, mark, c.Kimariji))
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", section.Key, strings.Join(parts, " "))
				}
				return nil
			})
		},
	}
	sections.Flags().StringVar(&sortMode, "sort", "group", "sort mode: id|kimariji|kimariji-len|group")
	deck.AddCommand(sections)
	return deck
}

func printDeck(cmd *cobra.Command, out deckdto.DeckOutput) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s  (prev=%t next=%t)\n", out.Progress, out.CanPrev, out.CanNext)
	_, _ = fmt.Fprintf(w, "next #%d: %s %s / %s %s\n", out.Current.CardID, out.Current.Upper[0], out.Current.Upper[1], out.Current.Lower[0], out.Current.Lower[1])
	if out.Previous.CardID != 0 || out.Index > 1 {
		_, _ = fmt.Fprintf(w, "prev #%d: %s %s\n", out.Previous.CardID, out.Previous.Lower[0], out.Previous.Lower[1])
	}
}

func newSessionCmd(flags *rootFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Practice session log"}

	var title string
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a practice session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				ctx := context.Background()
				deckSize := 0
				if deck, err := app.DeckCLI.Status(ctx); err == nil {
					deckSize = deck.Total
				}
				pace, err := app.PacingCLI.Pace(ctx)
				if err != nil {
					return err
				}
				out, err := app.SessionCLI.Start(ctx, title, deckSize, pace.UnitSeconds)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s at=%s\n", out.SessionID, out.StartedAt.Format("2006-01-02T15:04:05Z07:00"))
				return nil
			})
		},
	}
	start.Flags().StringVar(&title, "title", "", "session title")
	session.AddCommand(start)

	session.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				active, err := app.SessionCLI.GetActive(context.Background())
				if errors.Is(err, apperrors.ErrNoActiveSession) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					return nil
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %q started=%s deck=%d cycles=%d unit=%.2fs\n",
					active.SessionID, active.Title, active.StartedAt.Format("2006-01-02T15:04:05Z07:00"), active.DeckSize, active.Cycles, active.UnitSeconds)
				return nil
			})
		},
	})

	var outcome string
	var cardsRead int
	end := &cobra.Command{
		Use:   "end",
		Short: "End the active session and write its note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.End(context.Background(), "", outcome, cardsRead)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session ended: %s duration=%dm cards=%d cycles=%d note=%s\n",
					out.SessionID, out.DurationMin, out.CardsRead, out.Cycles, out.Path)
				return nil
			})
		},
	}
	end.Flags().StringVar(&outcome, "outcome", "", "free-form outcome")
	end.Flags().IntVar(&cardsRead, "cards", 0, "cards read")
	session.AddCommand(end)

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List past sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				items, err := app.SessionCLI.History(context.Background(), limit)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%dm\tcards=%d\tcycles=%d\t%s\n",
						s.StartedAt.Format("2006-01-02 15:04"), s.Title, s.DurationMin, s.CardsRead, s.Cycles, s.Outcome)
				}
				return nil
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 10, "maximum sessions to list (0 = all)")
	session.AddCommand(history)
	return session
}

func newPluginCmd(flags *rootFlags) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Cue plugin management"}

	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered cue plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				plugins, err := app.PluginCLI.List(context.Background())
				if err != nil {
					return err
				}
				if len(plugins) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins")
					return nil
				}
				for _, p := range plugins {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tenabled=%t\tevents=%s\t%s\n",
						p.Name, p.Version, p.Enabled, strings.Join(p.Events, ","), p.Binary)
				}
				return nil
			})
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check manifests, binaries, checksums and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				results, err := app.PluginCLI.Doctor(context.Background())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tbinary=%t\tchecksum=%t\tlifecycle=%t\t%s\n",
						r.Name, r.BinaryReachable, r.ChecksumValid, r.LifecycleOK, r.Error)
				}
				return nil
			})
		},
	})
	return plugin
}
