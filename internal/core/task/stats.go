package task

import "time"

// Stats summarise the tasks currently loaded. They describe the visible page
// only, not the user's whole task set.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Overdue    int
}

// ComputeStats counts tasks by status. Overdue counts unfinished tasks due
// before the start of the day containing now.
func ComputeStats(tasks []Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusTodo:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusDone:
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
