// Package config handles configuration loading and validation for taskdeck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/taskdeck/internal/core/task"
)

// Defaults for zero values in the config file.
const (
	DefaultBaseURL       = "http://localhost:8080/api"
	DefaultTimeout       = 15 * time.Second
	DefaultDevServerAddr = "localhost:8080"
	DefaultJWTTTL        = 24 * time.Hour
	DefaultTheme         = "tokyo-night"
)

// Config holds the application configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Tasks     TasksConfig     `yaml:"tasks"`
	TUI       TUIConfig       `yaml:"tui"`
	DevServer DevServerConfig `yaml:"devserver"`
	LogLevel  string          `yaml:"log_level"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// TasksConfig holds the initial task list query.
type TasksConfig struct {
	PageSize int    `yaml:"page_size"`
	SortBy   string `yaml:"sort_by"`
	SortDir  string `yaml:"sort_dir"`
}

// TUIConfig holds terminal dashboard preferences.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DevServerConfig configures `taskdeck devserver`. The secret is usually
// supplied through TASKDECK_JWT_SECRET rather than the file.
type DevServerConfig struct {
	Addr     string        `yaml:"addr"`
	JWTTTL   time.Duration `yaml:"jwt_ttl"`
	Secret   string        `yaml:"secret"`
	SeedDemo bool          `yaml:"seed_demo"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Tasks: TasksConfig{
			PageSize: task.DefaultPageSize,
			SortBy:   task.SortDueDate,
			SortDir:  task.SortAsc,
		},
		TUI: TUIConfig{
			Theme: DefaultTheme,
		},
		DevServer: DevServerConfig{
			Addr:   DefaultDevServerAddr,
			JWTTTL: DefaultJWTTTL,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.Tasks.PageSize == 0 {
		c.Tasks.PageSize = defaults.Tasks.PageSize
	}
	if c.Tasks.SortBy == "" {
		c.Tasks.SortBy = defaults.Tasks.SortBy
	}
	if c.Tasks.SortDir == "" {
		c.Tasks.SortDir = defaults.Tasks.SortDir
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.DevServer.Addr == "" {
		c.DevServer.Addr = defaults.DevServer.Addr
	}
	if c.DevServer.JWTTTL == 0 {
		c.DevServer.JWTTTL = defaults.DevServer.JWTTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// TaskFilter returns the filter the task list starts with.
func (c *Config) TaskFilter() task.Filter {
	f := task.DefaultFilter()
	f.Size = c.Tasks.PageSize
	f.SortBy = c.Tasks.SortBy
	f.SortDir = c.Tasks.SortDir
	return f
}

// CredentialFile returns the path of the stored session credential.
func (c *Config) CredentialFile() string {
	return filepath.Join(c.DataDir, "credential.json")
}

// LogFile returns the path of the CLI log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "taskdeck.log")
}

// DevServerDir returns the directory holding the development server database.
func (c *Config) DevServerDir() string {
	return filepath.Join(c.DataDir, "devserver")
}
