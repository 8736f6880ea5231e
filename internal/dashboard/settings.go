package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

// Settings caches the signed-in user's settings.
type Settings struct {
	client SettingsAPI
	bus    *eventbus.EventBus
	log    zerolog.Logger

	mu      sync.Mutex
	current user.Settings
	loaded  bool
}

// NewSettings creates a settings holder.
func NewSettings(client SettingsAPI, bus *eventbus.EventBus, log zerolog.Logger) *Settings {
	return &Settings{
		client:  client,
		bus:     bus,
		log:     log.With().Str("component", "settings").Logger(),
		current: user.DefaultSettings(),
	}
}

// Get loads the settings from the backend.
func (s *Settings) Get(ctx context.Context) (user.Settings, error) {
	got, err := s.client.Settings(ctx)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	s.current = got
	s.loaded = true
	s.mu.Unlock()
	return got, nil
}

// SetEmailNotifications saves the email notification preference.
func (s *Settings) SetEmailNotifications(ctx context.Context, enabled bool) (user.Settings, error) {
	saved, err := s.client.SetEmailNotifications(ctx, enabled)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	s.current = saved
	s.loaded = true
	s.mu.Unlock()

	s.bus.PublishSettingsChanged(eventbus.SettingsChangedPayload{Settings: saved})
	return saved, nil
}

// Current returns the last loaded settings, or the defaults.
func (s *Settings) Current() user.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Loaded reports whether settings were fetched at least once.
func (s *Settings) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}
