package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements used by the stores.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q running on tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// -- users --

const userColumns = `id, username, name, email, password_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

type CreateUserParams struct {
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO users (username, name, email, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		arg.Username, arg.Name, arg.Email, arg.PasswordHash, arg.Role, arg.CreatedAt,
	)
	return scanUser(row)
}

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username))
}

func (q *Queries) CountUsersByUsername(ctx context.Context, username string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`, username).Scan(&n)
	return n, err
}

func (q *Queries) CountUsersByEmail(ctx context.Context, email string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? COLLATE NOCASE AND id != ?`, email, excludeID).Scan(&n)
	return n, err
}

func (q *Queries) ListUsers(ctx context.Context) ([]UserWithStats, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.name, u.email, u.password_hash, u.role, u.created_at,
		       (SELECT COUNT(*) FROM tasks t WHERE t.user_id = u.id AND t.status = 'DONE')
		FROM users u
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []UserWithStats
	for rows.Next() {
		var i UserWithStats
		if err := rows.Scan(
			&i.ID, &i.Username, &i.Name, &i.Email, &i.PasswordHash, &i.Role, &i.CreatedAt,
			&i.TasksCompleted,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type UpdateUserParams struct {
	ID    int64
	Name  string
	Email string
	Role  string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ? WHERE id = ? RETURNING `+userColumns,
		arg.Name, arg.Email, arg.Role, arg.ID,
	)
	return scanUser(row)
}

func (q *Queries) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountActiveUsers counts users owning at least one task.
func (q *Queries) CountActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT user_id) FROM tasks`).Scan(&n)
	return n, err
}

// -- tasks --

const taskSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date,
	       t.user_id, u.username, t.created_at, t.updated_at
	FROM tasks t
	JOIN users u ON u.id = t.user_id`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.UserID, &t.OwnerUsername, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (q *Queries) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

type CreateTaskParams struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     sql.NullInt64
	UserID      int64
	CreatedAt   int64
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, priority, due_date, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Description, arg.Status, arg.Priority, arg.DueDate, arg.UserID, arg.CreatedAt, arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetTask(ctx context.Context, id int64) (Task, error) {
	return scanTask(q.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = ?`, id))
}

type UpdateTaskParams struct {
	ID          int64
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     sql.NullInt64
	UpdatedAt   int64
}

func (q *Queries) UpdateTask(ctx context.Context, arg UpdateTaskParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Description, arg.Status, arg.Priority, arg.DueDate, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteTask(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TaskFilter narrows ListTasks and CountTasks. Zero fields match everything.
type TaskFilter struct {
	UserID   int64
	Status   string
	Priority string
	Search   string
}

func (f TaskFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.UserID != 0 {
		clauses = append(clauses, "t.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		clauses = append(clauses, "t.status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		clauses = append(clauses, "t.priority = ?")
		args = append(args, f.Priority)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		clauses = append(clauses, `(t.title LIKE ? ESCAPE '\' OR t.description LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderColumns maps API sort fields to SQL expressions.
var orderColumns = map[string]string{
	"dueDate":   "t.due_date IS NULL, t.due_date",
	"priority":  "CASE t.priority WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'HIGH' THEN 3 ELSE 0 END",
	"status":    "CASE t.status WHEN 'TODO' THEN 1 WHEN 'IN_PROGRESS' THEN 2 WHEN 'DONE' THEN 3 ELSE 0 END",
	"createdAt": "t.created_at",
	"title":     "t.title COLLATE NOCASE",
}

type ListTasksParams struct {
	TaskFilter
	SortBy string
	Desc   bool
	Limit  int64
	Offset int64
}

func (q *Queries) ListTasks(ctx context.Context, arg ListTasksParams) ([]Task, error) {
	where, args := arg.where()

	order, ok := orderColumns[arg.SortBy]
	if !ok {
		return nil, fmt.Errorf("unknown sort field %q", arg.SortBy)
	}
	dir := " ASC"
	if arg.Desc {
		dir = " DESC"
	}
	// Every comma separated term gets the direction; the id keeps pages stable.
	terms := strings.Split(order, ", ")
	for i := range terms {
		terms[i] += dir
	}

	query := taskSelect + where + " ORDER BY " + strings.Join(terms, ", ") + ", t.id ASC LIMIT ? OFFSET ?"
	args = append(args, arg.Limit, arg.Offset)
	return q.queryTasks(ctx, query, args...)
}

func (q *Queries) CountTasks(ctx context.Context, f TaskFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks t`+where, args...).Scan(&n)
	return n, err
}

// ListAllTasks returns every task ordered by id, for reports.
func (q *Queries) ListAllTasks(ctx context.Context) ([]Task, error) {
	return q.queryTasks(ctx, taskSelect+` ORDER BY t.id`)
}

// CountTasksBy groups all tasks by column, which must be status or priority.
func (q *Queries) CountTasksBy(ctx context.Context, column string) (map[string]int64, error) {
	if column != "status" && column != "priority" {
		return nil, fmt.Errorf("cannot group tasks by %q", column)
	}

	rows, err := q.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM tasks GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// CountOverdueTasks counts unfinished tasks due before the given instant.
func (q *Queries) CountOverdueTasks(ctx context.Context, before int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status != 'DONE' AND due_date IS NOT NULL AND due_date < ?`,
		before).Scan(&n)
	return n, err
}

func (q *Queries) CountTasksCreatedSince(ctx context.Context, since int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE created_at >= ?`, since).Scan(&n)
	return n, err
}

// -- user settings --

func (q *Queries) GetUserSettings(ctx context.Context, userID int64) (UserSetting, error) {
	var s UserSetting
	err := q.db.QueryRowContext(ctx, `
		SELECT user_id, email_notifications, task_reminders, weekly_reports,
		       theme, language, time_zone, items_per_page
		FROM user_settings WHERE user_id = ?`, userID,
	).Scan(
		&s.UserID, &s.EmailNotifications, &s.TaskReminders, &s.WeeklyReports,
		&s.Theme, &s.Language, &s.TimeZone, &s.ItemsPerPage,
	)
	return s, err
}

func (q *Queries) UpsertUserSettings(ctx context.Context, s UserSetting) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, email_notifications, task_reminders, weekly_reports,
		                           theme, language, time_zone, items_per_page)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email_notifications = excluded.email_notifications,
			task_reminders      = excluded.task_reminders,
			weekly_reports      = excluded.weekly_reports,
			theme               = excluded.theme,
			language            = excluded.language,
			time_zone           = excluded.time_zone,
			items_per_page      = excluded.items_per_page`,
		s.UserID, s.EmailNotifications, s.TaskReminders, s.WeeklyReports,
		s.Theme, s.Language, s.TimeZone, s.ItemsPerPage,
	)
	return err
}

// -- kv store --

const kvColumns = `key, value, expires_at, created_at, updated_at`

func scanKV(row interface{ Scan(...any) error }) (KvStore, error) {
	var kv KvStore
	err := row.Scan(&kv.Key, &kv.Value, &kv.ExpiresAt, &kv.CreatedAt, &kv.UpdatedAt)
	return kv, err
}

func (q *Queries) KVGet(ctx context.Context, key string) (KvStore, error) {
	return scanKV(q.db.QueryRowContext(ctx, `SELECT `+kvColumns+` FROM kv_store WHERE key = ?`, key))
}

type KVSetParams struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

func (q *Queries) KVSet(ctx context.Context, arg KVSetParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		arg.Key, arg.Value, arg.ExpiresAt, arg.CreatedAt, arg.UpdatedAt,
	)
	return err
}

func (q *Queries) KVDelete(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	return err
}

func (q *Queries) KVSweepExpired(ctx context.Context, now sql.NullInt64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at < ?`, now)
	return err
}
