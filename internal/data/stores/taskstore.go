package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/user"
	"github.com/hay-kot/taskdeck/internal/data/db"
)

// OwnedTask is a task together with the id of the account owning it.
type OwnedTask struct {
	task.Task
	OwnerID int64
}

// TaskStore persists tasks.
type TaskStore struct {
	db *db.DB
}

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

// List returns one page of owner's tasks matching f and the number of
// matching tasks across all pages. An owner of 0 lists every task.
func (s *TaskStore) List(ctx context.Context, owner int64, f task.Filter) ([]task.Task, int, error) {
	filter := db.TaskFilter{
		UserID:   owner,
		Status:   string(f.Status),
		Priority: string(f.Priority),
		Search:   f.Search,
	}

	total, err := s.db.Queries().CountTasks(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	rows, err := s.db.Queries().ListTasks(ctx, db.ListTasksParams{
		TaskFilter: filter,
		SortBy:     f.SortBy,
		Desc:       f.SortDir == task.SortDesc,
		Limit:      int64(f.Size),
		Offset:     int64(f.Page) * int64(f.Size),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowToTask(row).Task)
	}
	return tasks, int(total), nil
}

// All returns every task in id order.
func (s *TaskStore) All(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.Queries().ListAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowToTask(row).Task)
	}
	return tasks, nil
}

// Get returns a task and its owner. Returns ErrNotFound if missing.
func (s *TaskStore) Get(ctx context.Context, id int64) (OwnedTask, error) {
	row, err := s.db.Queries().GetTask(ctx, id)
	if IsNotFoundError(err) {
		return OwnedTask{}, ErrNotFound
	}
	if err != nil {
		return OwnedTask{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return rowToTask(row), nil
}

// Create stores d as a new task of owner.
func (s *TaskStore) Create(ctx context.Context, owner int64, d task.Draft) (task.Task, error) {
	d = d.Normalize()
	id, err := s.db.Queries().CreateTask(ctx, db.CreateTaskParams{
		Title:       d.Title,
		Description: d.Description,
		Status:      string(d.Status),
		Priority:    string(d.Priority),
		DueDate:     nullTime(d.DueDate),
		UserID:      owner,
		CreatedAt:   time.Now().UnixNano(),
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	created, err := s.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	return created.Task, nil
}

// Update replaces the editable fields of task id.
func (s *TaskStore) Update(ctx context.Context, id int64, d task.Draft) (task.Task, error) {
	d = d.Normalize()
	n, err := s.db.Queries().UpdateTask(ctx, db.UpdateTaskParams{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      string(d.Status),
		Priority:    string(d.Priority),
		DueDate:     nullTime(d.DueDate),
		UpdatedAt:   time.Now().UnixNano(),
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	if n == 0 {
		return task.Task{}, ErrNotFound
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	return updated.Task, nil
}

// Delete removes task id.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Queries().DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminStats aggregates the system wide figures shown on the admin
// dashboard. Weeks start on Monday.
func (s *TaskStore) AdminStats(ctx context.Context, now time.Time) (user.AdminStats, error) {
	q := s.db.Queries()

	users, err := q.CountUsers(ctx)
	if err != nil {
		return user.AdminStats{}, fmt.Errorf("count users: %w", err)
	}
	active, err := q.CountActiveUsers(ctx)
	if err != nil {
		return user.AdminStats{}, fmt.Errorf("count active users: %w", err)
	}
	byStatus, err := q.CountTasksBy(ctx, "status")
	if err != nil {
		return user.AdminStats{}, fmt.Errorf("count tasks by status: %w", err)
	}
	byPriority, err := q.CountTasksBy(ctx, "priority")
	if err != nil {
		return user.AdminStats{}, fmt.Errorf("count tasks by priority: %w", err)
	}
	overdue, err := q.CountOverdueTasks(ctx, task.StartOfDay(now).UnixNano())
	if err != nil {
		return user.AdminStats{}, fmt.Errorf("count overdue tasks: %w", err)
	}
	thisWeek, err := q.CountTasksCreatedSince(ctx, startOfWeek(now).UnixNano())
	if err != nil {
		return user.AdminStats{}, fmt.Errorf("count tasks this week: %w", err)
	}

	stats := user.AdminStats{
		TotalUsers:     int(users),
		ActiveUsers:    int(active),
		OverdueTasks:   int(overdue),
		TasksThisWeek:  int(thisWeek),
		StatusCounts:   make(map[task.Status]int, len(byStatus)),
		PriorityCounts: make(map[task.Priority]int, len(byPriority)),
	}
	for k, n := range byStatus {
		stats.StatusCounts[task.Status(k)] = int(n)
		stats.TotalTasks += int(n)
	}
	for k, n := range byPriority {
		stats.PriorityCounts[task.Priority(k)] = int(n)
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.StatusCounts[task.StatusDone]) * 100 / float64(stats.TotalTasks)
	}

	return stats, nil
}

func startOfWeek(now time.Time) time.Time {
	day := task.StartOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func nullTime(t jsonx.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func rowToTask(row db.Task) OwnedTask {
	t := task.Task{
		ID:                 formatID(row.ID),
		Title:              row.Title,
		Description:        row.Description,
		Status:             task.Status(row.Status),
		Priority:           task.Priority(row.Priority),
		AssignedToID:       formatID(row.UserID),
		AssignedToUsername: row.OwnerUsername,
		CreatedAt:          jsonx.At(time.Unix(0, row.CreatedAt)),
	}
	if row.DueDate.Valid {
		t.DueDate = jsonx.At(time.Unix(0, row.DueDate.Int64))
	}
	return OwnedTask{Task: t.WithDefaults(), OwnerID: row.UserID}
}
