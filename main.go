package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/runway/internal/app"
	"github.com/colonyops/runway/internal/commands"
	"github.com/colonyops/runway/internal/core/config"
	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/core/styles"
	"github.com/colonyops/runway/internal/printer"
	"github.com/colonyops/runway/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// skipsApp reports whether the command runs without opening the stores, so a
// broken backend config can still be inspected.
func skipsApp(c *cli.Command) bool {
	return c.Args().First() == "config"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logCloser func()

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "runway",
		Usage:     "Track your pipeline, tasks and runway from the terminal",
		UsageText: "runway [global options] command [command options]",
		Description: `Runway is a small CRM and startup metrics dashboard.

Deals, tasks and insights are updated optimistically: the change shows at
once and is rolled back with a notification if the backend rejects it.

Run 'runway' with no arguments to open the interactive dashboard.
Run 'runway --demo' to explore with sample data that is never saved.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("RUNWAY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/runway.log)",
				Sources:     cli.EnvVars("RUNWAY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RUNWAY_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("RUNWAY_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.BoolFlag{
				Name:        "demo",
				Usage:       "use seeded in-memory data and the offline generator",
				Sources:     cli.EnvVars("RUNWAY_DEMO"),
				Destination: &flags.Demo,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "runway.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, logging.ContextHook{})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(c.Root().Writer, c.Root().ErrWriter))

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			if skipsApp(c) {
				return ctx, nil
			}

			a, err := app.New(ctx, cfg, app.Options{Demo: flags.Demo})
			if err != nil {
				return ctx, fmt.Errorf("open app: %w", err)
			}
			flags.App = a

			log.Info().
				Str("backend", string(a.Backend())).
				Bool("demo", a.Demo()).
				Msg("runway started")

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.App != nil {
				if err := flags.App.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close app")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	root = tuiCmd.Register(root)
	root = commands.NewDealsCmd(flags).Register(root)
	root = commands.NewTasksCmd(flags).Register(root)
	root = commands.NewCustomersCmd(flags).Register(root)
	root = commands.NewInsightsCmd(flags).Register(root)
	root = commands.NewMetricsCmd(flags).Register(root)
	root = commands.NewGenerateCmd(flags).Register(root)
	root = commands.NewNotificationsCmd(flags).Register(root)
	root = commands.NewSeedCmd(flags).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	// Register TUI flags on root command
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	// Open the dashboard when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'runway --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
