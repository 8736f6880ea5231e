package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/dashboard"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests the ids of the
// first page of tasks as positional completions. Set this as the
// ShellComplete field on any cli.Command that accepts a task id.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(app *dashboard.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		// Completion stays silent when no session is stored.
		if err := restoreSession(ctx, app, dashboard.RouteTasks); err != nil {
			return
		}
		if err := app.Tasks.Fetch(ctx); err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range app.Tasks.Tasks() {
			// zsh and fish show the text after the colon as a description
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, t.Title)
		}
	}
}
