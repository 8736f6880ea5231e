// Package task defines the task domain model, the list filter and the
// page-local statistics shown on the dashboard.
package task

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/validate"
)

// Task is a single task as returned by the backend.
type Task struct {
	ID                 jsonx.ID   `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Status             Status     `json:"status"`
	Priority           Priority   `json:"priority"`
	DueDate            jsonx.Time `json:"dueDate,omitzero"`
	AssignedToID       jsonx.ID   `json:"assignedToId,omitempty"`
	AssignedToUsername string     `json:"assignedToUsername,omitempty"`
	CreatedAt          jsonx.Time `json:"creationDate,omitzero"`
}

// WithDefaults fills a missing status or priority the way decoding an empty
// value would.
func (t Task) WithDefaults() Task {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return t
}

// IsOverdue reports whether the task is unfinished and due before the start
// of the day containing now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate.IsZero() || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// DueText describes the due date relative to now, e.g. "due tomorrow" or
// "overdue by 3 days".
func (t Task) DueText(now time.Time) string {
	if t.DueDate.IsZero() {
		return "no due date"
	}

	days := int(math.Round(StartOfDay(t.DueDate.Time).Sub(StartOfDay(now)).Hours() / 24))
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days > 1:
		return fmt.Sprintf("due in %d days", days)
	case t.Status == StatusDone:
		return "was due " + t.DueDate.Format("Jan 2, 2006")
	case days == -1:
		return "overdue by 1 day"
	default:
		return fmt.Sprintf("overdue by %d days", -days)
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Draft is the payload for creating or replacing a task.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     jsonx.Time `json:"dueDate"`
}

// DraftOf copies the editable fields of t.
func DraftOf(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}

// Normalize trims text fields and fills in the default status and priority.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Status == "" {
		d.Status = StatusTodo
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

// Validate checks the task form before any request is made.
func (d Draft) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.MinLength(validate.MinTitleLength)(d.Title); err != nil {
		errs = errs.Append("title", err)
	}
	if err := validate.MinLength(validate.MinDescriptionLength)(d.Description); err != nil {
		errs = errs.Append("description", err)
	}
	if d.DueDate.IsZero() {
		errs = errs.Append("dueDate", fmt.Errorf("is required"))
	}
	if _, err := ParseStatus(string(d.Status)); err != nil {
		errs = errs.Append("status", err)
	}
	if _, err := ParsePriority(string(d.Priority)); err != nil {
		errs = errs.Append("priority", err)
	}

	return errs.ToError()
}
