package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/profiler"
	"github.com/hay-kot/taskdeck/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *dashboard.App

	route string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *dashboard.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on 127.0.0.1 at the given port (e.g., 6060)",
			Sources:     cli.EnvVars("TASKDECK_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
		&cli.StringFlag{
			Name:        "open",
			Usage:       "screen to open after signing in (tasks, settings, admin-users, admin-stats)",
			Value:       string(dashboard.RouteTasks),
			Destination: &cmd.route,
			Validator: func(s string) error {
				switch dashboard.Route(s) {
				case dashboard.RouteTasks, dashboard.RouteSettings, dashboard.RouteAdminUsers, dashboard.RouteAdminStats:
					return nil
				}
				return fmt.Errorf("unknown screen %q", s)
			},
		},
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive dashboard",
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	if !interactive() {
		return fmt.Errorf("the dashboard needs a terminal, use the subcommands for scripting")
	}

	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort, log.Logger)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	model := tui.New(cmd.app, tui.Opts{Route: dashboard.Route(cmd.route)})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
