package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/commands"
	"github.com/hay-kot/taskdeck/internal/core/config"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/printer"
	"github.com/hay-kot/taskdeck/internal/store/jsonfile"
	"github.com/hay-kot/taskdeck/pkg/logutils"
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
	ctx := context.Background()

	// A .env file in the working directory is optional
	_ = godotenv.Load()

	var (
		logCloser func()
		busCancel context.CancelFunc
		dashApp   = &dashboard.App{}
	)

	flags := &commands.Flags{}
	app := commands.NewRootCmd(flags, dashApp, build())

	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		// Always log to a file; use explicit path or default to <datadir>/taskdeck.log
		logFile := flags.LogFile
		if logFile == "" {
			logFile = filepath.Join(flags.DataDir, "taskdeck.log")
		}

		logger, closer, err := logutils.New(flags.LogLevel, logFile)
		if err != nil {
			return ctx, fmt.Errorf("setup logger: %w", err)
		}
		log.Logger = logger
		logCloser = closer

		cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
		if err != nil {
			// `config validate` reports the problems itself
			if c.Args().First() != "config" {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			defaults := config.DefaultConfig()
			defaults.DataDir = flags.DataDir
			cfg = &defaults
		}
		flags.Config = cfg

		// Unknown names fall back to the default theme; validation warns about them
		styles.UseTheme(cfg.TUI.Theme)

		baseURL := cfg.API.BaseURL
		if flags.BaseURL != "" {
			baseURL = flags.BaseURL
		}

		client, err := api.New(api.Config{
			BaseURL:   baseURL,
			Timeout:   cfg.API.Timeout,
			UserAgent: "taskdeck/" + version,
		}, api.WithLogger(log.Logger))
		if err != nil {
			return ctx, fmt.Errorf("create api client: %w", err)
		}

		creds := jsonfile.NewCredentialStore(cfg.CredentialFile())

		bus := eventbus.New(64)
		eventbus.NewNotificationRouter(bus).Register()
		eventbus.RegisterDebugLogger(bus, log.With().Str("component", "eventbus").Logger())

		busCtx, cancel := context.WithCancel(context.Background())
		busCancel = cancel
		go bus.Start(busCtx)

		// Populate the pre-allocated App struct (commands already hold a pointer to it)
		*dashApp = *dashboard.NewApp(client, creds, bus, log.Logger, cfg.TaskFilter())

		return printer.NewContext(ctx, printer.New(os.Stderr)), nil
	}

	app.After = func(ctx context.Context, c *cli.Command) error {
		// Stop the event bus
		if busCancel != nil {
			busCancel()
		}

		// Close log file
		if logCloser != nil {
			logCloser()
		}
		return nil
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		var exitErr cli.ExitCoder
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
			if msg := runErr.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
		} else {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, runErr.Error())
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}
