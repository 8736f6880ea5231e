package commands

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/printer"
)

// ErrNotLoggedIn is returned by commands that need a session when none is
// stored or the stored one was rejected.
var ErrNotLoggedIn = errors.New("not logged in, run 'taskdeck login'")

// interactive reports whether prompts can be shown. Tests replace it.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// restoreSession confirms the stored credential and asks the guard whether
// route may be used.
func restoreSession(ctx context.Context, app *dashboard.App, route dashboard.Route) error {
	if err := app.Session.Init(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	decision := app.Guard.Decide(route)
	switch decision.Kind {
	case dashboard.DecisionRender:
		return nil
	case dashboard.DecisionRedirectLogin:
		return ErrNotLoggedIn
	case dashboard.DecisionDeny:
		return errors.New(decision.Message)
	default:
		return fmt.Errorf("session is not ready (%s)", decision.Kind)
	}
}

// printResultError prints the message and field errors of a failed login or
// registration and returns it as an error.
func printResultError(ctx context.Context, res dashboard.Result) error {
	p := printer.Ctx(ctx)
	if res.Error == nil {
		return errors.New("request failed")
	}

	for _, field := range slices.Sorted(maps.Keys(res.Error.Fields)) {
		p.Errorf("%s: %s", field, res.Error.Fields[field])
	}
	return res.Error
}

// confirmer returns the confirmation strategy for destructive commands.
// Without --yes a terminal prompt is required.
func confirmer(yes bool) dashboard.Confirmer {
	if yes {
		return dashboard.AlwaysConfirm
	}

	return dashboard.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if !interactive() {
			return false, errors.New("confirmation required, pass --yes to skip the prompt")
		}

		var ok bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(prompt).
					Affirmative("Delete").
					Negative("Cancel").
					Value(&ok),
			),
		).WithTheme(styles.FormTheme()).RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return ok, err
	})
}
