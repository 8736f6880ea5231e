package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/validate"
)

// Task form rows. Title, description and due date are text inputs; status
// and priority are picked with the arrow keys.
const (
	formTitle = iota
	formDescription
	formDue
	formStatus
	formPriority
	formRows
)

var formFields = [formRows]string{"title", "description", "dueDate", "status", "priority"}

var formLabels = [formRows]string{"Title", "Description", "Due (YYYY-MM-DD)", "Status", "Priority"}

type taskForm struct {
	open     bool
	busy     bool
	id       jsonx.ID
	inputs   [formDue + 1]textinput.Model
	status   task.Status
	priority task.Priority
	focus    int
	errs     map[string]string
}

func newFormInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 48
	return in
}

func (f *taskForm) init(id jsonx.ID, d task.Draft) tea.Cmd {
	*f = taskForm{
		open:     true,
		id:       id,
		status:   d.Status,
		priority: d.Priority,
	}
	f.inputs[formTitle] = newFormInput("What needs doing?", 120)
	f.inputs[formDescription] = newFormInput("Details", 1000)
	f.inputs[formDue] = newFormInput(time.DateOnly, len(time.DateOnly))

	f.inputs[formTitle].SetValue(d.Title)
	f.inputs[formDescription].SetValue(d.Description)
	if !d.DueDate.IsZero() {
		f.inputs[formDue].SetValue(d.DueDate.Format(time.DateOnly))
	}
	return f.inputs[formTitle].Focus()
}

// openNew starts a blank task due tomorrow.
func (f *taskForm) openNew(now time.Time) tea.Cmd {
	return f.init("", task.Draft{
		Status:   task.StatusTodo,
		Priority: task.PriorityMedium,
		DueDate:  jsonx.At(task.StartOfDay(now).AddDate(0, 0, 1)),
	}.Normalize())
}

func (f *taskForm) openEdit(t task.Task) tea.Cmd {
	return f.init(t.ID, task.DraftOf(t).Normalize())
}

func (f *taskForm) close() {
	*f = taskForm{}
}

func (f *taskForm) move(delta int) tea.Cmd {
	if f.focus <= formDue {
		f.inputs[f.focus].Blur()
	}
	f.focus = (f.focus + delta + formRows) % formRows
	if f.focus <= formDue {
		return f.inputs[f.focus].Focus()
	}
	return nil
}

// draft reads the form. A due date that does not parse is reported as a
// field error before any request is made.
func (f *taskForm) draft() (task.Draft, error) {
	d := task.Draft{
		Title:       f.inputs[formTitle].Value(),
		Description: f.inputs[formDescription].Value(),
		Status:      f.status,
		Priority:    f.priority,
	}

	due := strings.TrimSpace(f.inputs[formDue].Value())
	if due != "" {
		t, err := jsonx.ParseTime(due)
		if err != nil {
			return d, criterio.NewFieldErrors("dueDate", errors.New("must be a date like 2006-01-02"))
		}
		d.DueDate = t
	}
	return d, nil
}

// setError shows validation errors next to their fields. It reports false
// for errors that are not tied to a field.
func (f *taskForm) setError(err error) bool {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	f.errs = validate.FieldMap(err)
	return true
}

func (m Model) formKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	if f.busy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		f.close()
		return m, nil
	case "tab", "down":
		return m, f.move(1)
	case "shift+tab", "up":
		return m, f.move(-1)
	case "ctrl+s":
		return m, m.submitForm()
	case "enter":
		if f.focus < formRows-1 {
			return m, f.move(1)
		}
		return m, m.submitForm()
	}

	switch f.focus {
	case formStatus:
		switch msg.String() {
		case "left", "h":
			f.status = step(task.Statuses, f.status, -1)
		case "right", "l", " ":
			f.status = step(task.Statuses, f.status, 1)
		}
		return m, nil
	case formPriority:
		switch msg.String() {
		case "left", "h":
			f.priority = step(task.Priorities, f.priority, -1)
		case "right", "l", " ":
			f.priority = step(task.Priorities, f.priority, 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

func (m *Model) submitForm() tea.Cmd {
	f := &m.form
	d, err := f.draft()
	if err == nil {
		err = d.Normalize().Validate()
	}
	if err != nil {
		f.setError(err)
		return nil
	}

	f.errs = nil
	f.busy = true
	return saveTaskCmd(m.app, f.id, d)
}

// step moves through values without wrapping to an empty value.
func step[T comparable](values []T, cur T, delta int) T {
	i := 0
	for j, v := range values {
		if v == cur {
			i = j
		}
	}
	return values[(i+delta+len(values))%len(values)]
}

func (m Model) formView() string {
	f := m.form

	title := "New task"
	if f.id != "" {
		title = "Edit task"
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	for row := range formRows {
		var value string
		switch row {
		case formStatus:
			value = "‹ " + styles.StatusStyle(f.status).Render(f.status.Humanize()) + " ›"
		case formPriority:
			value = "‹ " + styles.PriorityStyle(f.priority).Render(f.priority.Humanize()) + " ›"
		default:
			value = f.inputs[row].View()
		}

		style := styles.FormFieldStyle
		if row == f.focus {
			style = styles.FormFieldFocusedStyle
		}
		b.WriteString(style.Render(formLabels[row] + ": " + value))
		b.WriteString("\n")

		if msg, ok := f.errs[formFields[row]]; ok {
			b.WriteString(styles.FormErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if f.busy {
		b.WriteString(m.spinner.View() + " saving...")
	} else {
		b.WriteString(styles.FormHelpStyle.Render("tab next • ←/→ change status and priority • enter on last row or ctrl+s save • esc cancel"))
	}
	return b.String()
}
