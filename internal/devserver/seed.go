package devserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

// Default administrator created on first start.
const (
	AdminUsername = "admin"
	AdminPassword = "admin123"
)

// Seed creates the default administrator when it is missing. With demo set
// it also creates a "demo" user owning a handful of tasks.
func (s *Server) Seed(ctx context.Context, demo bool) error {
	if err := s.ensureAccount(ctx, stores.NewAccount{
		Username: AdminUsername,
		Name:     "Administrator",
		Email:    "admin@taskdeck.local",
		Role:     auth.RoleAdmin,
	}, AdminPassword, nil); err != nil {
		return err
	}

	if !demo {
		return nil
	}

	today := task.StartOfDay(s.now())
	drafts := []task.Draft{
		{Title: "Write release notes", Description: "Summarise the changes since the last tag.", Status: task.StatusTodo, Priority: task.PriorityHigh, DueDate: jsonx.At(today.AddDate(0, 0, 2))},
		{Title: "Review pull requests", Description: "Work through the open review queue.", Status: task.StatusInProgress, Priority: task.PriorityMedium, DueDate: jsonx.At(today)},
		{Title: "Renew certificates", Description: "The staging certificates expire soon.", Status: task.StatusTodo, Priority: task.PriorityHigh, DueDate: jsonx.At(today.AddDate(0, 0, -3))},
		{Title: "Clean up backlog", Description: "Close tickets that are no longer relevant.", Status: task.StatusDone, Priority: task.PriorityLow, DueDate: jsonx.At(today.AddDate(0, 0, -1))},
	}

	return s.ensureAccount(ctx, stores.NewAccount{
		Username: "demo",
		Name:     "Demo User",
		Email:    "demo@taskdeck.local",
		Role:     auth.RoleUser,
	}, "demo123", drafts)
}

func (s *Server) ensureAccount(ctx context.Context, n stores.NewAccount, password string, drafts []task.Draft) error {
	exists, err := s.users.UsernameExists(ctx, n.Username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	n.PasswordHash, err = s.hashPassword(password)
	if err != nil {
		return err
	}

	acct, err := s.users.Create(ctx, n)
	if errors.Is(err, stores.ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed %s: %w", n.Username, err)
	}

	for _, d := range drafts {
		if _, err := s.tasks.Create(ctx, acct.ID, d); err != nil {
			return fmt.Errorf("seed tasks of %s: %w", n.Username, err)
		}
	}

	s.log.Info().Str("user", n.Username).Int("tasks", len(drafts)).Msg("seeded account")
	return nil
}
