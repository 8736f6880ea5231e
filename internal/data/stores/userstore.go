package stores

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/user"
	"github.com/hay-kot/taskdeck/internal/data/db"
)

// Account is a stored user including the password hash.
type Account struct {
	ID           int64
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}

// Identity returns the public identity of the account.
func (a Account) Identity() auth.Identity {
	return auth.Identity{
		ID:       formatID(a.ID),
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
	}
}

// NewAccount holds the fields needed to create an account.
type NewAccount struct {
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         auth.Role
}

// UserStore persists accounts.
type UserStore struct {
	db *db.DB
}

// NewUserStore creates a new SQLite-backed user store.
func NewUserStore(db *db.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts an account. Returns ErrUsernameTaken or ErrEmailTaken when
// either is already registered.
func (s *UserStore) Create(ctx context.Context, n NewAccount) (Account, error) {
	var created db.User
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		taken, err := q.CountUsersByUsername(ctx, n.Username)
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrUsernameTaken
		}

		taken, err = q.CountUsersByEmail(ctx, n.Email, 0)
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrEmailTaken
		}

		role := n.Role
		if role == "" {
			role = auth.RoleUser
		}

		created, err = q.CreateUser(ctx, db.CreateUserParams{
			Username:     n.Username,
			Name:         n.Name,
			Email:        n.Email,
			PasswordHash: n.PasswordHash,
			Role:         string(role),
			CreatedAt:    time.Now().UnixNano(),
		})
		return err
	})
	if err != nil {
		return Account{}, fmt.Errorf("create user %q: %w", n.Username, uniqueViolation(err))
	}

	return rowToAccount(created), nil
}

// Get returns the account with id. Returns ErrNotFound if missing.
func (s *UserStore) Get(ctx context.Context, id int64) (Account, error) {
	row, err := s.db.Queries().GetUser(ctx, id)
	if IsNotFoundError(err) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return rowToAccount(row), nil
}

// GetByUsername looks an account up by username, ignoring case.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (Account, error) {
	row, err := s.db.Queries().GetUserByUsername(ctx, username)
	if IsNotFoundError(err) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return rowToAccount(row), nil
}

// UsernameExists reports whether username is registered.
func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := s.db.Queries().CountUsersByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username %q: %w", username, err)
	}
	return n > 0, nil
}

// List returns every account with its completed task count.
func (s *UserStore) List(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.Queries().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		u := rowToAccount(row.User).User()
		u.TasksCompleted = int(row.TasksCompleted)
		users = append(users, u)
	}
	return users, nil
}

// Update changes the profile fields of an account.
func (s *UserStore) Update(ctx context.Context, id int64, upd user.Update) (user.User, error) {
	var updated db.User
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		taken, err := q.CountUsersByEmail(ctx, upd.Email, id)
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrEmailTaken
		}

		current, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}

		role := upd.Role
		if role == "" {
			role = auth.Role(current.Role)
		}

		updated, err = q.UpdateUser(ctx, db.UpdateUserParams{
			ID:    id,
			Name:  upd.Name,
			Email: upd.Email,
			Role:  string(role),
		})
		return err
	})
	if IsNotFoundError(err) {
		return user.User{}, ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("update user %d: %w", id, uniqueViolation(err))
	}

	return rowToAccount(updated).User(), nil
}

// Delete removes an account and, through the foreign key, its tasks.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Queries().DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// User converts the account to the admin panel view.
func (a Account) User() user.User {
	return user.User{
		ID:        formatID(a.ID),
		Username:  a.Username,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: jsonx.At(a.CreatedAt),
	}.WithDefaults()
}

func rowToAccount(row db.User) Account {
	return Account{
		ID:           row.ID,
		Username:     row.Username,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         auth.ParseRole(row.Role),
		CreatedAt:    time.Unix(0, row.CreatedAt),
	}
}

func formatID(id int64) jsonx.ID {
	return jsonx.ID(strconv.FormatInt(id, 10))
}

// ParseID converts an API id to a row id.
func ParseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", id, ErrNotFound)
	}
	return n, nil
}
