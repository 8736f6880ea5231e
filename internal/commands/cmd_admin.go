package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/user"
	"github.com/hay-kot/taskdeck/internal/core/validate"
	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/printer"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type AdminCmd struct {
	flags *Flags
	app   *dashboard.App
	now   func() time.Time

	// flags
	search     string
	page       int
	jsonOutput bool
	name       string
	email      string
	password   string
	role       string
	output     string
	yes        bool
}

// NewAdminCmd creates a new admin command
func NewAdminCmd(flags *Flags, app *dashboard.App) *AdminCmd {
	return &AdminCmd{flags: flags, app: app, now: time.Now}
}

// Register adds the admin command to the application
func (cmd *AdminCmd) Register(app *cli.Command) *cli.Command {
	accountFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "display name", Destination: &cmd.name},
			&cli.StringFlag{Name: "email", Usage: "email address", Destination: &cmd.email},
			&cli.StringFlag{Name: "role", Usage: "USER or ADMIN", Destination: &cmd.role},
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "admin",
		Usage: "Administer users and view system statistics",
		Description: `Administrator commands. The signed in account must have the ADMIN role;
other accounts are refused before any request is made.`,
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "Manage user accounts",
				Commands: []*cli.Command{
					{
						Name:  "ls",
						Usage: "List users",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "filter by name, username or email", Destination: &cmd.search},
							&cli.IntFlag{Name: "page", Usage: "page number, starting at 1", Value: 1, Destination: &cmd.page},
							&cli.BoolFlag{Name: "json", Usage: "output every matching user as JSON lines", Destination: &cmd.jsonOutput},
						},
						Action: cmd.runListUsers,
					},
					{
						Name:      "add",
						Usage:     "Create a user",
						UsageText: "taskdeck admin users add --name N --email E --password P [--role USER|ADMIN]",
						Flags: append(accountFlags(),
							&cli.StringFlag{Name: "password", Usage: "initial password", Sources: cli.EnvVars("TASKDECK_NEW_USER_PASSWORD"), Destination: &cmd.password},
						),
						Action: cmd.runAddUser,
					},
					{
						Name:      "edit",
						Usage:     "Change a user's name, email or role",
						UsageText: "taskdeck admin users edit <id> [--name N] [--email E] [--role R]",
						Flags:     accountFlags(),
						Action:    cmd.runEditUser,
					},
					{
						Name:      "rm",
						Usage:     "Delete a user and their tasks",
						UsageText: "taskdeck admin users rm <id> [--yes]",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt", Destination: &cmd.yes},
						},
						Action: cmd.runDeleteUser,
					},
				},
			},
			{
				Name:  "stats",
				Usage: "Show system statistics",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runStats,
			},
			{
				Name:      "report",
				Usage:     "Download the CSV task report",
				UsageText: "taskdeck admin report [-o FILE]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Usage:       "destination file, '-' for stdout (defaults to tasks-report-<date>.csv)",
						Destination: &cmd.output,
					},
				},
				Action: cmd.runReport,
			},
		},
	})

	return app
}

func (cmd *AdminCmd) loadUsers(ctx context.Context) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteAdminUsers); err != nil {
		return err
	}
	if err := cmd.app.Users.Refresh(ctx); err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	return nil
}

func (cmd *AdminCmd) runListUsers(ctx context.Context, c *cli.Command) error {
	if err := cmd.loadUsers(ctx); err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, u := range cmd.app.Users.Search(cmd.search) {
			if err := iojson.WriteLine(out, u); err != nil {
				return fmt.Errorf("encode user: %w", err)
			}
		}
		return nil
	}

	users, pages := cmd.app.Users.Page(cmd.search, cmd.page-1)
	if len(users) == 0 {
		printer.Ctx(ctx).Infof("No users found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tROLE\tDONE")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", u.ID, u.Username, u.DisplayName(), u.Email, u.Role, u.TasksCompleted)
	}
	_ = w.Flush()

	if pages > 1 {
		current := min(max(cmd.page, 1), pages)
		_, _ = fmt.Fprintln(out, styles.MutedStyle.Render(fmt.Sprintf("page %d of %d", current, pages)))
	}
	return nil
}

func (cmd *AdminCmd) runAddUser(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteAdminUsers); err != nil {
		return err
	}

	n := user.NewUser{Name: cmd.name, Email: cmd.email, Password: cmd.password, Role: auth.RoleUser}
	if c.IsSet("role") {
		n.Role = auth.Role(strings.ToUpper(cmd.role))
	}

	if n.Name == "" || n.Email == "" || n.Password == "" {
		if !interactive() {
			return errors.New("name, email and password are required")
		}
		if err := newUserForm(&n).RunWithContext(ctx); err != nil {
			return err
		}
	}

	created, err := cmd.app.Users.Add(ctx, n)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}

	printer.Ctx(ctx).Success("User created", fmt.Sprintf("#%s %s (%s)", created.ID, created.Username, created.Role))
	return nil
}

func (cmd *AdminCmd) runEditUser(ctx context.Context, c *cli.Command) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := cmd.loadUsers(ctx); err != nil {
		return err
	}

	current, ok := cmd.app.Users.Find(id)
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}

	upd := user.UpdateOf(current)
	if c.IsSet("name") {
		upd.Name = cmd.name
	}
	if c.IsSet("email") {
		upd.Email = cmd.email
	}
	if c.IsSet("role") {
		upd.Role = auth.Role(strings.ToUpper(cmd.role))
	}

	updated, err := cmd.app.Users.Edit(ctx, id, upd)
	if err != nil {
		return fmt.Errorf("edit user %s: %w", id, err)
	}

	printer.Ctx(ctx).Success("User updated", fmt.Sprintf("#%s %s (%s)", updated.ID, updated.DisplayName(), updated.Role))
	return nil
}

func (cmd *AdminCmd) runDeleteUser(ctx context.Context, c *cli.Command) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := cmd.loadUsers(ctx); err != nil {
		return err
	}

	deleted, err := cmd.app.Users.Delete(ctx, id, confirmer(cmd.yes))
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if !deleted {
		printer.Ctx(ctx).Infof("Delete cancelled")
		return nil
	}

	printer.Ctx(ctx).Successf("User #%s deleted", id)
	return nil
}

func (cmd *AdminCmd) runStats(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteAdminStats); err != nil {
		return err
	}

	s, err := cmd.app.Users.Stats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Write(out, s)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Users\t%d (%d active)\n", s.TotalUsers, s.ActiveUsers)
	_, _ = fmt.Fprintf(w, "Tasks\t%d (%d this week)\n", s.TotalTasks, s.TasksThisWeek)
	for _, st := range task.Statuses {
		_, _ = fmt.Fprintf(w, "%s %s\t%d\n", styles.StatusIcon(st), st.Humanize(), s.StatusCounts[st])
	}
	for _, p := range task.Priorities {
		_, _ = fmt.Fprintf(w, "%s priority\t%d\n", p.Humanize(), s.PriorityCounts[p])
	}
	_, _ = fmt.Fprintf(w, "%s Overdue\t%d\n", styles.IconOverdue, s.OverdueTasks)
	_, _ = fmt.Fprintf(w, "Completion\t%.0f%%\n", s.CompletionRate)
	return w.Flush()
}

func (cmd *AdminCmd) runReport(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteAdminStats); err != nil {
		return err
	}

	dest := cmd.output
	if dest == "" {
		dest = fmt.Sprintf("tasks-report-%s.csv", cmd.now().Format(time.DateOnly))
	}

	var w io.Writer = c.Root().Writer
	if dest != "-" {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	n, err := cmd.app.Users.DownloadReport(ctx, w)
	if err != nil {
		return fmt.Errorf("download report: %w", err)
	}

	if dest != "-" {
		printer.Ctx(ctx).Success("Report saved", fmt.Sprintf("%s (%d bytes)", dest, n))
	}
	return nil
}

func userID(c *cli.Command) (jsonx.ID, error) {
	if c.Args().Len() != 1 {
		return "", errors.New("exactly one user id is required")
	}
	return jsonx.ID(c.Args().First()), nil
}

func newUserForm(n *user.NewUser) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Validate(validate.Required).
				Value(&n.Name),
			huh.NewInput().
				Title("Email").
				Validate(validate.Email).
				Value(&n.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validate.Password).
				Value(&n.Password),
			huh.NewSelect[auth.Role]().
				Title("Role").
				Options(
					huh.NewOption("User", auth.RoleUser),
					huh.NewOption("Administrator", auth.RoleAdmin),
				).
				Value(&n.Role),
		),
	).WithTheme(styles.FormTheme()).WithOutput(os.Stderr)
}
