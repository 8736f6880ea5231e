package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

// statsView shows the system wide figures on the admin dashboard.
type statsView struct {
	loading bool
	ready   bool
	stats   user.AdminStats
	err     string
}

func (v *statsView) loaded(msg statsLoadedMsg) {
	v.loading = false
	if msg.err != nil {
		v.err = api.Message(msg.err)
		return
	}
	v.err = ""
	v.stats = msg.stats
	v.ready = true
}

const barWidth = 30

func (m Model) statsView() string {
	v := m.stats

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("System overview"))
	b.WriteString("\n\n")

	if v.err != "" {
		b.WriteString(styles.ErrorStyle.Render(v.err))
		b.WriteString("\n")
	}
	if !v.ready {
		if v.loading {
			b.WriteString(m.spinner.View() + " loading statistics...")
		}
		return b.String()
	}

	s := v.stats
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Users", s.TotalUsers),
		card("Active users", s.ActiveUsers),
		card("Tasks", s.TotalTasks),
		card("This week", s.TasksThisWeek),
		card("Overdue", s.OverdueTasks),
		card("Completion", fmt.Sprintf("%.1f%%", s.CompletionRate)),
	))
	b.WriteString("\n\n")

	b.WriteString(styles.TableHeaderStyle.Render("By status"))
	b.WriteString("\n")
	for _, st := range task.Statuses {
		b.WriteString(bar(styles.StatusStyle(st).Render(fmt.Sprintf("%-12s", st.Humanize())), s.StatusCounts[st], s.TotalTasks))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.TableHeaderStyle.Render("By priority"))
	b.WriteString("\n")
	for _, p := range task.Priorities {
		b.WriteString(bar(styles.PriorityStyle(p).Render(fmt.Sprintf("%-12s", p.Humanize())), s.PriorityCounts[p], s.TotalTasks))
		b.WriteString("\n")
	}

	return b.String()
}

// bar draws n out of total as a horizontal bar.
func bar(label string, n, total int) string {
	filled := 0
	if total > 0 {
		filled = n * barWidth / total
	}
	return fmt.Sprintf("%s %s%s %d",
		label,
		styles.SuccessStyle.Render(strings.Repeat("█", filled)),
		styles.MutedStyle.Render(strings.Repeat("░", barWidth-filled)),
		n,
	)
}
