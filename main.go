package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/todosync/internal/commands"
	"github.com/colonyops/todosync/internal/core/logging"
	"github.com/colonyops/todosync/internal/core/styles"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/colonyops/todosync/pkg/logutils"
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

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
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

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		logCloser func()
		todoApp   = &commands.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "todosync",
		Usage:     "Local-first todo list synced with a remote server",
		UsageText: "todosync [global options] command [command options]",
		Description: `todosync keeps a todo list on disk and mirrors every change to the
todo backend. When the server is unreachable changes are kept locally and the
whole list is pushed on the next successful sync.

Run 'todosync ls' to see your tasks and 'todosync add' to create one.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TODOSYNC_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to the user state directory)",
				Sources:     cli.EnvVars("TODOSYNC_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TODOSYNC_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TODOSYNC_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file so output never mixes with command results
			logFile := flags.LogFile
			if logFile == "" {
				logFile = commands.DefaultLogFile()
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(os.Stderr))

			configOnly := commands.ConfigOnly(c)
			if err := flags.LoadConfig(configOnly); err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg := flags.Config

			if palette, ok := styles.GetPalette(cfg.UI.Theme); ok {
				styles.SetTheme(palette)
			}

			// config subcommands inspect the file only; an invalid config must not stop them
			if configOnly {
				return ctx, nil
			}

			a, err := commands.NewApp(ctx, cfg)
			if err != nil {
				return ctx, err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*todoApp = *a

			log.Debug().Str("store", cfg.StorePath()).Str("format", cfg.Store.Format).Msg("todosync started")
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if todoApp.Sync != nil {
				if err := todoApp.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close store")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewLsCmd(flags, todoApp).Register(app)
	app = commands.NewAddCmd(flags, todoApp).Register(app)
	app = commands.NewEditCmd(flags, todoApp).Register(app)
	app = commands.NewDoneCmd(flags, todoApp).Register(app)
	app = commands.NewRmCmd(flags, todoApp).Register(app)
	app = commands.NewShowCmd(flags, todoApp).Register(app)
	app = commands.NewSyncCmd(flags, todoApp).Register(app)
	app = commands.NewStatusCmd(flags, todoApp).Register(app)
	app = commands.NewExportCmd(flags, todoApp).Register(app)
	app = commands.NewImportCmd(flags, todoApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
