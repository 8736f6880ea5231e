package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/dashboard"
)

func newDetailView(width, height int) detailView {
	return detailView{viewport: viewport.New(width, height), width: width}
}

type detailView struct {
	id       jsonx.ID
	task     task.Task
	loaded   bool
	loading  bool
	err      string
	viewport viewport.Model
	width    int
}

// open shows the listed copy of t right away. The fresh copy replaces it
// once GetTask returns.
func (v *detailView) open(t task.Task) {
	v.id = t.ID
	v.task = t
	v.loaded = false
	v.err = ""
}

func (v *detailView) resize(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = height
}

func (v *detailView) setTask(t task.Task, now time.Time) {
	v.task = t
	v.loaded = true
	v.loading = false
	v.err = ""
	v.viewport.SetContent(renderMarkdown(t.Markdown(now), v.width))
	v.viewport.GotoTop()
}

// renderMarkdown renders md with the active theme. Rendering errors fall
// back to the raw text.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) updateDetail(msg taskLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.detail.loading = false
		m.detail.err = api.Message(msg.err)
		return m, nil
	}
	if msg.task.ID == m.detail.id {
		m.detail.setTask(msg.task, m.now())
	}
	return m, nil
}

func (m Model) detailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.open {
		return m.formKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Back):
		return m, m.navigate(dashboard.RouteTasks)
	case key.Matches(msg, keys.Edit):
		return m, m.form.openEdit(m.detail.task)
	case key.Matches(msg, keys.Delete):
		t := m.detail.task
		m.modal = NewModal("Delete task", "Delete \""+t.Title+"\"? This cannot be undone.", deleteTaskCmd(m.app, t.ID))
		return m, nil
	case key.Matches(msg, keys.Refresh):
		return m, m.enter(dashboard.RouteTaskDetail)
	}

	var cmd tea.Cmd
	m.detail.viewport, cmd = m.detail.viewport.Update(msg)
	return m, cmd
}

func (m Model) detailView() string {
	if m.form.open {
		return m.formView()
	}

	v := m.detail
	switch {
	case v.err != "":
		return styles.ErrorStyle.Render(v.err) + "\n\n" + styles.MutedStyle.Render("esc back to tasks")
	case !v.loaded:
		return m.spinner.View() + " loading " + v.task.Title
	}
	return v.viewport.View()
}

var detailHelp = bindings{keys.Up, keys.Down, keys.Back, keys.Edit, keys.Delete, keys.Refresh}
