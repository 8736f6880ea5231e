package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/dashboard"
)

// NewRootCmd builds the taskdeck command tree around app. The caller adds
// the Before and After hooks that populate app and release its resources.
func NewRootCmd(flags *Flags, app *dashboard.App, version string) *cli.Command {
	root := &cli.Command{
		Name:      "taskdeck",
		Usage:     "Manage your tasks from the terminal",
		UsageText: "taskdeck [global options] command [command options]",
		Description: `taskdeck is a client for the task management API.

Run 'taskdeck' with no arguments to open the interactive dashboard.
Run 'taskdeck login' to sign in from a script, then 'taskdeck tasks ls'.
Run 'taskdeck devserver' to start a local backend with demo data.`,
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKDECK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/taskdeck.log)",
				Sources:     cli.EnvVars("TASKDECK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKDECK_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKDECK_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "backend base URL, overrides api.base_url from the config file",
				Sources:     cli.EnvVars("TASKDECK_API_URL"),
				Destination: &flags.BaseURL,
			},
		},
	}

	tuiCmd := NewTuiCmd(flags, app)

	root = NewAuthCmd(flags, app).Register(root)
	root = NewTasksCmd(flags, app).Register(root)
	root = NewAdminCmd(flags, app).Register(root)
	root = NewSettingsCmd(flags, app).Register(root)
	root = NewDevServerCmd(flags).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	root = tuiCmd.Register(root)

	// TUI flags also live on the root command, which opens the dashboard
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'taskdeck --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	return root
}
