package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/dashboard"
)

type tasksView struct {
	cursor    int
	loading   bool
	searching bool
	search    textinput.Model
}

func newTasksView() tasksView {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search title or description"
	in.CharLimit = 100
	in.Width = 40
	return tasksView{search: in}
}

// cycle returns the value after cur in values. The empty value stands for
// "any" and sits before the first entry.
func cycle[T comparable](values []T, cur T) T {
	var zero T
	i := slices.Index(values, cur)
	if i == len(values)-1 {
		return zero
	}
	return values[i+1]
}

func (m Model) selectedTask() (task.Task, bool) {
	tasks := m.app.Tasks.Tasks()
	if m.tasks.cursor < 0 || m.tasks.cursor >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[m.tasks.cursor], true
}

func (m *Model) setFilter(patch task.FilterPatch) tea.Cmd {
	m.tasks.loading = true
	return tasksCmd(func(ctx context.Context) error {
		return m.app.Tasks.SetFilter(ctx, patch)
	})
}

func (m Model) tasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.open {
		return m.formKey(msg)
	}

	v := &m.tasks
	if v.searching {
		switch msg.String() {
		case "enter":
			v.searching = false
			v.search.Blur()
			v.cursor = 0
			return m, m.setFilter(task.FilterPatch{Search: task.Ptr(strings.TrimSpace(v.search.Value()))})
		case "esc":
			v.searching = false
			v.search.Blur()
			v.search.SetValue(m.app.Tasks.Filter().Search)
			return m, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return m, cmd
	}

	filter := m.app.Tasks.Filter()
	page := m.app.Tasks.Pagination()

	switch {
	case key.Matches(msg, keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, keys.Down):
		v.cursor = min(v.cursor+1, max(len(m.app.Tasks.Tasks())-1, 0))
	case key.Matches(msg, keys.Open):
		if t, ok := m.selectedTask(); ok {
			m.detail.open(t)
			return m, m.navigate(dashboard.RouteTaskDetail)
		}
	case key.Matches(msg, keys.NextPage):
		if page.HasNext() {
			v.loading = true
			v.cursor = 0
			return m, tasksCmd(m.app.Tasks.NextPage)
		}
	case key.Matches(msg, keys.PrevPage):
		if page.HasPrev() {
			v.loading = true
			v.cursor = 0
			return m, tasksCmd(m.app.Tasks.PrevPage)
		}
	case key.Matches(msg, keys.Search):
		v.searching = true
		v.search.SetValue(filter.Search)
		v.search.CursorEnd()
		return m, v.search.Focus()
	case key.Matches(msg, keys.Status):
		v.cursor = 0
		return m, m.setFilter(task.FilterPatch{Status: task.Ptr(cycle(task.Statuses, filter.Status))})
	case key.Matches(msg, keys.Priority):
		v.cursor = 0
		return m, m.setFilter(task.FilterPatch{Priority: task.Ptr(cycle(task.Priorities, filter.Priority))})
	case key.Matches(msg, keys.Sort):
		next := cycle(task.SortFields, filter.SortBy)
		if next == "" {
			next = task.SortFields[0]
		}
		return m, m.setFilter(task.FilterPatch{SortBy: task.Ptr(next)})
	case key.Matches(msg, keys.Reverse):
		dir := task.SortDesc
		if filter.SortDir == task.SortDesc {
			dir = task.SortAsc
		}
		return m, m.setFilter(task.FilterPatch{SortDir: task.Ptr(dir)})
	case key.Matches(msg, keys.New):
		return m, m.form.openNew(m.now())
	case key.Matches(msg, keys.Edit):
		if t, ok := m.selectedTask(); ok {
			return m, m.form.openEdit(t)
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := m.selectedTask(); ok {
			m.modal = NewModal("Delete task", fmt.Sprintf("Delete %q? This cannot be undone.", t.Title), deleteTaskCmd(m.app, t.ID))
		}
	case key.Matches(msg, keys.Refresh):
		v.loading = true
		return m, tasksCmd(m.app.Tasks.Fetch)
	}

	return m, nil
}

func (m Model) updateTasks(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.tasks.loading = false
		m.tasks.cursor = min(m.tasks.cursor, max(len(m.app.Tasks.Tasks())-1, 0))
		return m, nil

	case taskSavedMsg:
		m.form.busy = false
		if msg.err != nil {
			if m.form.setError(msg.err) {
				return m, nil
			}
			return m, m.errorToast(msg.err)
		}
		m.form.close()
		if msg.created {
			m.tasks.cursor = 0
		}
		if m.route == dashboard.RouteTaskDetail && m.detail.id == msg.task.ID {
			m.detail.setTask(msg.task, m.now())
		}
		return m, nil

	case taskDeletedMsg:
		if msg.err != nil {
			return m, m.errorToast(msg.err)
		}
		m.tasks.cursor = min(m.tasks.cursor, max(len(m.app.Tasks.Tasks())-1, 0))
		if m.route == dashboard.RouteTaskDetail && m.detail.id == msg.id {
			return m, m.navigate(dashboard.RouteTasks)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) tasksView() string {
	if m.form.open {
		return m.formView()
	}

	now := m.now()
	filter := m.app.Tasks.Filter()
	page := m.app.Tasks.Pagination()

	var b strings.Builder
	b.WriteString(m.taskCards(m.app.Tasks.Stats(now)))
	b.WriteString("\n")
	b.WriteString(filterLine(filter))
	b.WriteString("\n")

	if m.tasks.searching {
		b.WriteString(m.tasks.search.View())
		b.WriteString("\n")
	}

	if msg := m.app.Tasks.Err(); msg != "" {
		b.WriteString(styles.ErrorStyle.Render(msg))
		b.WriteString("\n")
	}

	tasks := m.app.Tasks.Tasks()
	switch {
	case len(tasks) == 0 && m.tasks.loading:
		b.WriteString(m.spinner.View() + " loading tasks...")
	case len(tasks) == 0:
		b.WriteString(styles.MutedStyle.Render("No tasks match the current filter. Press n to create one."))
	default:
		b.WriteString(taskTable(tasks, m.tasks.cursor, m.width, now))
	}
	b.WriteString("\n")

	if page.Enabled && page.TotalPages > 0 {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("Page %d of %d • %d tasks", page.CurrentPage+1, page.TotalPages, page.TotalItems)))
		if m.tasks.loading {
			b.WriteString(" " + m.spinner.View())
		}
	}

	return b.String()
}

func (m Model) taskCards(s task.Stats) string {
	cards := []string{
		card("Total", s.Total),
		card(task.StatusTodo.Humanize(), s.Pending),
		card(task.StatusInProgress.Humanize(), s.InProgress),
		card(task.StatusDone.Humanize(), s.Completed),
		card("Overdue", s.Overdue),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func card(label string, value any) string {
	return styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardValueStyle.Render(fmt.Sprint(value)),
		styles.CardLabelStyle.Render(label),
	))
}

func filterLine(f task.Filter) string {
	status, priority := "any", "any"
	if f.Status != "" {
		status = f.Status.Humanize()
	}
	if f.Priority != "" {
		priority = f.Priority.Humanize()
	}

	parts := []string{
		"status: " + status,
		"priority: " + priority,
		fmt.Sprintf("sort: %s %s", f.SortBy, f.SortDir),
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	return styles.MutedStyle.Render(strings.Join(parts, "  "))
}

func taskTable(tasks []task.Task, cursor, width int, now time.Time) string {
	titleWidth := max(width-48, 16)

	header := fmt.Sprintf("  %-*s %-12s %-8s %s", titleWidth, "TITLE", "STATUS", "PRIORITY", "DUE")
	rows := []string{styles.TableHeaderStyle.Render(header)}

	for i, t := range tasks {
		icon := styles.StatusIcon(t.Status)
		if t.IsOverdue(now) {
			icon = styles.IconOverdue
		}

		due := t.DueText(now)
		if t.IsOverdue(now) {
			due = styles.ErrorStyle.Render(due)
		}

		line := fmt.Sprintf("%s %-*s %s %s %s",
			icon,
			titleWidth, truncate(t.Title, titleWidth),
			styles.StatusStyle(t.Status).Render(fmt.Sprintf("%-12s", t.Status.Humanize())),
			styles.PriorityStyle(t.Priority).Render(fmt.Sprintf("%-8s", t.Priority.Humanize())),
			due,
		)

		if i == cursor {
			rows = append(rows, styles.RowSelectedStyle.Render(styles.IconSelected+line))
		} else {
			rows = append(rows, styles.RowStyle.Render(" "+line))
		}
	}

	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

var tasksHelp = bindings{
	keys.Up, keys.Down, keys.Open, keys.Search, keys.Status, keys.Priority,
	keys.Sort, keys.Reverse, keys.PrevPage, keys.NextPage, keys.New, keys.Edit, keys.Delete,
}
