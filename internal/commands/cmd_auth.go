package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/validate"
	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/printer"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type AuthCmd struct {
	flags *Flags
	app   *dashboard.App

	// flags
	username   string
	email      string
	password   string
	jsonOutput bool
}

// NewAuthCmd creates the login, register, logout and whoami commands
func NewAuthCmd(flags *Flags, app *dashboard.App) *AuthCmd {
	return &AuthCmd{flags: flags, app: app}
}

// Register adds the authentication commands to the application
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	usernameFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "username",
			Aliases:     []string{"u"},
			Usage:       "account username",
			Destination: &cmd.username,
		}
	}
	passwordFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "password",
			Aliases:     []string{"p"},
			Usage:       "account password (prompted when omitted)",
			Sources:     cli.EnvVars("TASKDECK_PASSWORD"),
			Destination: &cmd.password,
		}
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Sign in and store the session credential",
			UsageText: "taskdeck login [--username NAME] [--password PASS]",
			Description: `Authenticates against the configured backend and stores the bearer token
in <data-dir>/credential.json. Missing values are prompted for when running
in a terminal.`,
			Flags:  []cli.Flag{usernameFlag(), passwordFlag()},
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:      "register",
			Usage:     "Create a new account",
			UsageText: "taskdeck register [--username NAME] [--email EMAIL] [--password PASS]",
			Description: `Creates an account on the backend. The username is checked for
availability first. Registration does not sign in; run 'taskdeck login'
afterwards.`,
			Flags: []cli.Flag{
				usernameFlag(),
				&cli.StringFlag{
					Name:        "email",
					Aliases:     []string{"e"},
					Usage:       "email address",
					Destination: &cmd.email,
				},
				passwordFlag(),
			},
			Action: cmd.runRegister,
		},
		&cli.Command{
			Name:   "logout",
			Usage:  "Sign out and forget the stored credential",
			Action: cmd.runLogout,
		},
		&cli.Command{
			Name:  "whoami",
			Usage: "Show the signed in account",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON",
					Destination: &cmd.jsonOutput,
				},
			},
			Action: cmd.runWhoami,
		},
	)

	return app
}

func (cmd *AuthCmd) runLogin(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	creds := auth.Credentials{Username: cmd.username, Password: cmd.password}
	if creds.Username == "" || creds.Password == "" {
		if !interactive() {
			return errors.New("username and password are required")
		}
		if err := loginForm(&creds).RunWithContext(ctx); err != nil {
			return err
		}
	}

	res := cmd.app.Session.Login(ctx, creds)
	if !res.Success {
		return printResultError(ctx, res)
	}

	p.Success("Logged in as "+res.Data.Username, string(res.Data.Role))
	return nil
}

func (cmd *AuthCmd) runRegister(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	u := auth.NewUser{Username: cmd.username, Email: cmd.email, Password: cmd.password}
	if u.Username == "" || u.Email == "" || u.Password == "" {
		if !interactive() {
			return errors.New("username, email and password are required")
		}
		if err := registerForm(&u).RunWithContext(ctx); err != nil {
			return err
		}
	}

	available, msg, err := cmd.app.Session.UsernameAvailable(ctx, u.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if !available {
		return fmt.Errorf("username %q: %s", u.Username, msg)
	}

	res := cmd.app.Session.Register(ctx, u)
	if !res.Success {
		return printResultError(ctx, res)
	}

	p.Success("Registered "+res.Data.Username, "Run 'taskdeck login' to sign in")
	return nil
}

func (cmd *AuthCmd) runLogout(ctx context.Context, _ *cli.Command) error {
	// The credential is removed even when the backend cannot be reached.
	_ = cmd.app.Session.Init(ctx)
	cmd.app.Session.Logout(ctx)

	printer.Ctx(ctx).Successf("Logged out")
	return nil
}

func (cmd *AuthCmd) runWhoami(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteTasks); err != nil {
		return err
	}

	id := cmd.app.Session.Identity()
	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.Write(out, id)
	}

	_, _ = fmt.Fprintf(out, "%s %s\n", styles.TitleStyle.Render(id.Username), styles.RoleBadge(id.Role))
	if id.Email != "" {
		_, _ = fmt.Fprintln(out, styles.MutedStyle.Render(id.Email))
	}
	return nil
}

func loginForm(creds *auth.Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Validate(validate.Username).
				Value(&creds.Username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validate.Required).
				Value(&creds.Password),
		),
	).WithTheme(styles.FormTheme()).WithOutput(os.Stderr)
}

func registerForm(u *auth.NewUser) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Description("At least 3 characters").
				Validate(validate.Username).
				Value(&u.Username),
			huh.NewInput().
				Title("Email").
				Validate(validate.Email).
				Value(&u.Email),
			huh.NewInput().
				Title("Password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				Validate(validate.Password).
				Value(&u.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&u.ConfirmPassword),
		),
	).WithTheme(styles.FormTheme()).WithOutput(os.Stderr)
}
