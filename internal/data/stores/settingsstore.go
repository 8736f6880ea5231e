package stores

import (
	"context"
	"fmt"

	"github.com/hay-kot/taskdeck/internal/core/user"
	"github.com/hay-kot/taskdeck/internal/data/db"
)

// SettingsStore persists per-account settings. Accounts without a row get
// user.DefaultSettings.
type SettingsStore struct {
	db *db.DB
}

// NewSettingsStore creates a new SQLite-backed settings store.
func NewSettingsStore(db *db.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the settings of account id.
func (s *SettingsStore) Get(ctx context.Context, id int64) (user.Settings, error) {
	row, err := s.db.Queries().GetUserSettings(ctx, id)
	if IsNotFoundError(err) {
		return user.DefaultSettings(), nil
	}
	if err != nil {
		return user.Settings{}, fmt.Errorf("get settings of %d: %w", id, err)
	}
	return rowToSettings(row), nil
}

// Save stores all settings of account id.
func (s *SettingsStore) Save(ctx context.Context, id int64, st user.Settings) error {
	if err := s.db.Queries().UpsertUserSettings(ctx, db.UserSetting{
		UserID:             id,
		EmailNotifications: st.EmailNotifications,
		TaskReminders:      st.TaskReminders,
		WeeklyReports:      st.WeeklyReports,
		Theme:              st.Theme,
		Language:           st.Language,
		TimeZone:           st.TimeZone,
		ItemsPerPage:       int64(st.ItemsPerPage),
	}); err != nil {
		return fmt.Errorf("save settings of %d: %w", id, err)
	}
	return nil
}

// SetEmailNotifications toggles one flag and returns the stored settings.
func (s *SettingsStore) SetEmailNotifications(ctx context.Context, id int64, enabled bool) (user.Settings, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return user.Settings{}, err
	}
	st.EmailNotifications = enabled
	if err := s.Save(ctx, id, st); err != nil {
		return user.Settings{}, err
	}
	return st, nil
}

func rowToSettings(row db.UserSetting) user.Settings {
	return user.Settings{
		EmailNotifications: row.EmailNotifications,
		TaskReminders:      row.TaskReminders,
		WeeklyReports:      row.WeeklyReports,
		Theme:              row.Theme,
		Language:           row.Language,
		TimeZone:           row.TimeZone,
		ItemsPerPage:       int(row.ItemsPerPage),
	}
}
