package user

import (
	"encoding/json"

	"github.com/hay-kot/taskdeck/internal/core/task"
)

// AdminStats is the system wide summary shown on the admin dashboard.
type AdminStats struct {
	TotalUsers     int
	TotalTasks     int
	ActiveUsers    int
	TasksThisWeek  int
	OverdueTasks   int
	CompletionRate float64
	StatusCounts   map[task.Status]int
	PriorityCounts map[task.Priority]int
}

func (s AdminStats) TasksPending() int    { return s.StatusCounts[task.StatusTodo] }
func (s AdminStats) TasksInProgress() int { return s.StatusCounts[task.StatusInProgress] }
func (s AdminStats) TasksCompleted() int  { return s.StatusCounts[task.StatusDone] }

type adminStatsJSON struct {
	TotalUsers         int            `json:"totalUsers"`
	TotalTasks         int            `json:"totalTasks"`
	ActiveUsers        int            `json:"activeUsers"`
	TasksThisWeek      int            `json:"tasksThisWeek"`
	OverdueTasks       int            `json:"overdueTasks"`
	CompletionRate     float64        `json:"completionRate"`
	TaskStatusCounts   map[string]int `json:"taskStatusCounts"`
	TaskPriorityCounts map[string]int `json:"taskPriorityCounts"`
}

// UnmarshalJSON folds backend status aliases into the canonical keys.
func (s *AdminStats) UnmarshalJSON(b []byte) error {
	var raw adminStatsJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*s = AdminStats{
		TotalUsers:     raw.TotalUsers,
		TotalTasks:     raw.TotalTasks,
		ActiveUsers:    raw.ActiveUsers,
		TasksThisWeek:  raw.TasksThisWeek,
		OverdueTasks:   raw.OverdueTasks,
		CompletionRate: raw.CompletionRate,
		StatusCounts:   make(map[task.Status]int, len(raw.TaskStatusCounts)),
		PriorityCounts: make(map[task.Priority]int, len(raw.TaskPriorityCounts)),
	}

	for k, v := range raw.TaskStatusCounts {
		if st, err := task.ParseStatus(k); err == nil {
			s.StatusCounts[st] += v
		}
	}
	for k, v := range raw.TaskPriorityCounts {
		if p, err := task.ParsePriority(k); err == nil {
			s.PriorityCounts[p] += v
		}
	}
	return nil
}

func (s AdminStats) MarshalJSON() ([]byte, error) {
	raw := adminStatsJSON{
		TotalUsers:         s.TotalUsers,
		TotalTasks:         s.TotalTasks,
		ActiveUsers:        s.ActiveUsers,
		TasksThisWeek:      s.TasksThisWeek,
		OverdueTasks:       s.OverdueTasks,
		CompletionRate:     s.CompletionRate,
		TaskStatusCounts:   make(map[string]int, len(s.StatusCounts)),
		TaskPriorityCounts: make(map[string]int, len(s.PriorityCounts)),
	}
	for k, v := range s.StatusCounts {
		raw.TaskStatusCounts[string(k)] = v
	}
	for k, v := range s.PriorityCounts {
		raw.TaskPriorityCounts[string(k)] = v
	}
	return json.Marshal(raw)
}
