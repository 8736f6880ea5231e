package task

import (
	"fmt"
	"strings"
)

// Status is the canonical lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Statuses lists the canonical statuses in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus maps any backend or user spelling onto the canonical set.
// PENDING is an alias of TODO and COMPLETED an alias of DONE. The empty
// string decodes to TODO.
func ParseStatus(s string) (Status, error) {
	norm := normalizeEnum(s)
	switch norm {
	case "", "TODO", "TO_DO", "PENDING":
		return StatusTodo, nil
	case "IN_PROGRESS", "INPROGRESS":
		return StatusInProgress, nil
	case "DONE", "COMPLETED", "COMPLETE":
		return StatusDone, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Humanize returns the label shown to users.
func (s Status) Humanize() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities lists the priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority is case-insensitive. The empty string decodes to MEDIUM.
func ParsePriority(s string) (Priority, error) {
	switch normalizeEnum(s) {
	case "":
		return PriorityMedium, nil
	case "LOW":
		return PriorityLow, nil
	case "MEDIUM":
		return PriorityMedium, nil
	case "HIGH":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

func (p *Priority) UnmarshalText(b []byte) error {
	parsed, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Humanize returns the label shown to users.
func (p Priority) Humanize() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

func normalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
