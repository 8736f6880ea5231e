package styles

import "github.com/hay-kot/taskdeck/internal/core/task"

var (
	IconTodo       = "○"
	IconInProgress = "◐"
	IconDone       = "●"
	IconOverdue    = "!"
	IconSelected   = "›"
)

// StatusIcon returns the glyph shown in front of a task.
func StatusIcon(s task.Status) string {
	switch s {
	case task.StatusDone:
		return IconDone
	case task.StatusInProgress:
		return IconInProgress
	default:
		return IconTodo
	}
}
