package db

import "database/sql"

type User struct {
	ID           int64
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    int64
}

// UserWithStats is a users row plus its completed task count.
type UserWithStats struct {
	User
	TasksCompleted int64
}

// Task is a tasks row joined with the owner's username.
type Task struct {
	ID            int64
	Title         string
	Description   string
	Status        string
	Priority      string
	DueDate       sql.NullInt64
	UserID        int64
	OwnerUsername string
	CreatedAt     int64
	UpdatedAt     int64
}

type UserSetting struct {
	UserID             int64
	EmailNotifications bool
	TaskReminders      bool
	WeeklyReports      bool
	Theme              string
	Language           string
	TimeZone           string
	ItemsPerPage       int64
}

type KvStore struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}
