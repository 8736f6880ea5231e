package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/printer"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type SettingsCmd struct {
	flags *Flags
	app   *dashboard.App

	jsonOutput bool
}

// NewSettingsCmd creates a new settings command
func NewSettingsCmd(flags *Flags, app *dashboard.App) *SettingsCmd {
	return &SettingsCmd{flags: flags, app: app}
}

// Register adds the settings command to the application
func (cmd *SettingsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "settings",
		Usage: "Show or change your account settings",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.runShow,
		Commands: []*cli.Command{
			{
				Name:      "email-notifications",
				Usage:     "Turn email notifications on or off",
				UsageText: "taskdeck settings email-notifications on|off",
				Action:    cmd.runEmailNotifications,
			},
		},
	})

	return app
}

func (cmd *SettingsCmd) runShow(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteSettings); err != nil {
		return err
	}

	s, err := cmd.app.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Write(out, s)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Email notifications\t%s\n", onOff(s.EmailNotifications))
	_, _ = fmt.Fprintf(w, "Task reminders\t%s\n", onOff(s.TaskReminders))
	_, _ = fmt.Fprintf(w, "Weekly reports\t%s\n", onOff(s.WeeklyReports))
	_, _ = fmt.Fprintf(w, "Theme\t%s\n", s.Theme)
	_, _ = fmt.Fprintf(w, "Items per page\t%d\n", s.ItemsPerPage)
	return w.Flush()
}

func (cmd *SettingsCmd) runEmailNotifications(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected 'on' or 'off'")
	}
	enabled, err := parseOnOff(c.Args().First())
	if err != nil {
		return err
	}

	if err := restoreSession(ctx, cmd.app, dashboard.RouteSettings); err != nil {
		return err
	}

	s, err := cmd.app.Settings.SetEmailNotifications(ctx, enabled)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	printer.Ctx(ctx).Successf("Email notifications %s", onOff(s.EmailNotifications))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "enable", "enabled":
		return true, nil
	case "off", "disable", "disabled":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected 'on' or 'off', got %q", s)
	}
	return b, nil
}
