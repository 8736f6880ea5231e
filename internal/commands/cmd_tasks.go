package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/dashboard"
	"github.com/hay-kot/taskdeck/internal/printer"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type TasksCmd struct {
	flags *Flags
	app   *dashboard.App
	now   func() time.Time

	// ls flags
	search     string
	status     string
	priority   string
	sortBy     string
	sortDir    string
	page       int
	size       int
	jsonOutput bool

	// create/update flags
	title       string
	description string
	due         string
	draftFile   iojson.FileReader[task.Draft]

	yes bool
}

// NewTasksCmd creates a new tasks command
func NewTasksCmd(flags *Flags, app *dashboard.App) *TasksCmd {
	return &TasksCmd{flags: flags, app: app, now: time.Now}
}

// Register adds the tasks command to the application
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:        "json",
			Usage:       "output as JSON",
			Destination: &cmd.jsonOutput,
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:    "tasks",
		Aliases: []string{"t"},
		Usage:   "List and manage your tasks",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List tasks",
				UsageText: "taskdeck tasks ls [--status S] [--priority P] [--search Q] [--sort FIELD] [--dir asc|desc] [--page N]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "match title or description", Destination: &cmd.search},
					&cli.StringFlag{Name: "status", Usage: "TODO, IN_PROGRESS or DONE", Destination: &cmd.status},
					&cli.StringFlag{Name: "priority", Usage: "LOW, MEDIUM or HIGH", Destination: &cmd.priority},
					&cli.StringFlag{Name: "sort", Usage: "sort field (" + strings.Join(task.SortFields, ", ") + ")", Destination: &cmd.sortBy},
					&cli.StringFlag{Name: "dir", Usage: "sort direction (asc, desc)", Destination: &cmd.sortDir},
					&cli.IntFlag{Name: "page", Usage: "page number, starting at 1", Value: 1, Destination: &cmd.page},
					&cli.IntFlag{Name: "size", Usage: "page size (defaults to tasks.page_size)", Destination: &cmd.size},
					jsonFlag(),
				},
				Action: cmd.runList,
			},
			{
				Name:          "show",
				ShellComplete: TaskIDCompleter(cmd.app),
				Usage:         "Show a task",
				UsageText:     "taskdeck tasks show <id>",
				Flags:         []cli.Flag{jsonFlag()},
				Action:        cmd.runShow,
			},
			{
				Name:      "create",
				Usage:     "Create a task",
				UsageText: "taskdeck tasks create --title T --description D --due YYYY-MM-DD [--status S] [--priority P]\n   taskdeck tasks create -f task.json",
				Flags:     cmd.draftFlags(),
				Action:    cmd.runCreate,
			},
			{
				Name:          "update",
				ShellComplete: TaskIDCompleter(cmd.app),
				Usage:         "Change a task",
				UsageText:     "taskdeck tasks update <id> [--title T] [--status S] ...",
				Flags:         cmd.draftFlags(),
				Action:        cmd.runUpdate,
			},
			{
				Name:          "rm",
				ShellComplete: TaskIDCompleter(cmd.app),
				Usage:         "Delete a task",
				UsageText:     "taskdeck tasks rm <id> [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt", Destination: &cmd.yes},
				},
				Action: cmd.runDelete,
			},
			{
				Name:   "stats",
				Usage:  "Summarize your tasks",
				Flags:  []cli.Flag{jsonFlag()},
				Action: cmd.runStats,
			},
		},
	})

	return app
}

func (cmd *TasksCmd) draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "task title", Destination: &cmd.title},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "task description (markdown)", Destination: &cmd.description},
		&cli.StringFlag{Name: "status", Usage: "TODO, IN_PROGRESS or DONE", Destination: &cmd.status},
		&cli.StringFlag{Name: "priority", Usage: "LOW, MEDIUM or HIGH", Destination: &cmd.priority},
		&cli.StringFlag{Name: "due", Usage: "due date (YYYY-MM-DD)", Destination: &cmd.due},
		cmd.draftFile.Flag(),
	}
}

func (cmd *TasksCmd) filterPatch() (task.FilterPatch, error) {
	patch := task.FilterPatch{}
	if cmd.search != "" {
		patch.Search = task.Ptr(cmd.search)
	}
	if cmd.status != "" {
		st, err := task.ParseStatus(cmd.status)
		if err != nil {
			return patch, err
		}
		patch.Status = task.Ptr(st)
	}
	if cmd.priority != "" {
		pr, err := task.ParsePriority(cmd.priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = task.Ptr(pr)
	}
	if cmd.sortBy != "" {
		patch.SortBy = task.Ptr(cmd.sortBy)
	}
	if cmd.sortDir != "" {
		patch.SortDir = task.Ptr(strings.ToLower(cmd.sortDir))
	}
	if cmd.size > 0 {
		patch.Size = task.Ptr(cmd.size)
	}
	return patch, nil
}

func (cmd *TasksCmd) runList(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteTasks); err != nil {
		return err
	}

	patch, err := cmd.filterPatch()
	if err != nil {
		return err
	}
	if err := patch.Apply(cmd.app.Tasks.Filter()).Validate(); err != nil {
		return err
	}

	if err := cmd.app.Tasks.SetFilter(ctx, patch); err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if cmd.page > 1 {
		if !cmd.app.Tasks.Pagination().Contains(cmd.page - 1) {
			return fmt.Errorf("page %d does not exist", cmd.page)
		}
		if err := cmd.app.Tasks.SetPage(ctx, cmd.page-1); err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
	}

	tasks := cmd.app.Tasks.Tasks()
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		printer.Ctx(ctx).Infof("No tasks found")
		return nil
	}

	cmd.writeTable(out, tasks)

	pg := cmd.app.Tasks.Pagination()
	if pg.Enabled && pg.TotalPages > 1 {
		_, _ = fmt.Fprintln(out, styles.MutedStyle.Render(
			fmt.Sprintf("page %d of %d, %d tasks", pg.CurrentPage+1, pg.TotalPages, pg.TotalItems)))
	}
	return nil
}

func (cmd *TasksCmd) writeTable(out io.Writer, tasks []task.Task) {
	now := cmd.now()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range tasks {
		due := t.DueText(now)
		if t.IsOverdue(now) {
			due = styles.IconOverdue + " " + due
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n",
			t.ID, t.Title, styles.StatusIcon(t.Status), t.Status.Humanize(), t.Priority.Humanize(), due)
	}
	_ = w.Flush()
}

func (cmd *TasksCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := restoreSession(ctx, cmd.app, dashboard.RouteTaskDetail); err != nil {
		return err
	}

	t, err := cmd.app.Tasks.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("get task %s: %w", id, err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Write(out, t)
	}

	rendered, err := renderMarkdown(t.Markdown(cmd.now()))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(out, rendered)
	return nil
}

func (cmd *TasksCmd) runCreate(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteTasks); err != nil {
		return err
	}

	var d task.Draft
	if cmd.draftFile.Provided() && !c.IsSet("title") {
		read, err := cmd.draftFile.Read()
		if err != nil {
			return err
		}
		d = read
	}
	if err := cmd.applyDraftFlags(c, &d); err != nil {
		return err
	}

	created, err := cmd.app.Tasks.CreateTask(ctx, d)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	printer.Ctx(ctx).Success("Task created", fmt.Sprintf("#%s %s", created.ID, created.Title))
	return nil
}

func (cmd *TasksCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := restoreSession(ctx, cmd.app, dashboard.RouteTaskDetail); err != nil {
		return err
	}

	current, err := cmd.app.Tasks.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("get task %s: %w", id, err)
	}

	d := task.DraftOf(current)
	if c.IsSet("file") {
		read, err := cmd.draftFile.Read()
		if err != nil {
			return err
		}
		d = read
	}
	if err := cmd.applyDraftFlags(c, &d); err != nil {
		return err
	}

	updated, err := cmd.app.Tasks.UpdateTask(ctx, id, d)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}

	printer.Ctx(ctx).Success("Task updated", fmt.Sprintf("#%s %s", updated.ID, updated.Title))
	return nil
}

func (cmd *TasksCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := restoreSession(ctx, cmd.app, dashboard.RouteTasks); err != nil {
		return err
	}

	ok, err := confirmer(cmd.yes).Confirm(ctx, fmt.Sprintf("Delete task #%s?", id))
	if err != nil {
		return err
	}
	if !ok {
		printer.Ctx(ctx).Infof("Delete cancelled")
		return nil
	}

	if err := cmd.app.Tasks.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	printer.Ctx(ctx).Successf("Task #%s deleted", id)
	return nil
}

type taskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

func (cmd *TasksCmd) runStats(ctx context.Context, c *cli.Command) error {
	if err := restoreSession(ctx, cmd.app, dashboard.RouteTasks); err != nil {
		return err
	}

	// Statistics cover the loaded list, so load as much as one page allows.
	if err := cmd.app.Tasks.SetFilter(ctx, task.FilterPatch{Size: task.Ptr(100)}); err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	s := cmd.app.Tasks.Stats(cmd.now())
	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.Write(out, taskStats(s))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "%s To Do\t%d\n", styles.IconTodo, s.Pending)
	_, _ = fmt.Fprintf(w, "%s In Progress\t%d\n", styles.IconInProgress, s.InProgress)
	_, _ = fmt.Fprintf(w, "%s Done\t%d\n", styles.IconDone, s.Completed)
	_, _ = fmt.Fprintf(w, "%s Overdue\t%d\n", styles.IconOverdue, s.Overdue)
	return w.Flush()
}

// applyDraftFlags overwrites the fields of d whose flags were given.
func (cmd *TasksCmd) applyDraftFlags(c *cli.Command, d *task.Draft) error {
	if c.IsSet("title") {
		d.Title = cmd.title
	}
	if c.IsSet("description") {
		d.Description = cmd.description
	}
	if c.IsSet("status") {
		st, err := task.ParseStatus(cmd.status)
		if err != nil {
			return err
		}
		d.Status = st
	}
	if c.IsSet("priority") {
		pr, err := task.ParsePriority(cmd.priority)
		if err != nil {
			return err
		}
		d.Priority = pr
	}
	if c.IsSet("due") {
		due, err := jsonx.ParseTime(cmd.due)
		if err != nil {
			return fmt.Errorf("due: %w", err)
		}
		d.DueDate = due
	}
	return nil
}

func taskID(c *cli.Command) (jsonx.ID, error) {
	if c.Args().Len() != 1 {
		return "", errors.New("exactly one task id is required")
	}
	return jsonx.ID(c.Args().First()), nil
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
