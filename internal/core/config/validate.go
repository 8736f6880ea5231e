package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/validate"
)

// MinDevServerSecretLength is the shortest signing secret accepted without
// a warning.
const MinDevServerSecretLength = 16

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid. It performs
// no I/O.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("api.base_url", c.API.BaseURL, baseURL),
		positiveDuration("api.timeout", c.API.Timeout),
		pageSize(c.Tasks.PageSize),
		criterio.Run("tasks.sort_by", c.Tasks.SortBy, oneOf(task.SortFields...)),
		criterio.Run("tasks.sort_dir", c.Tasks.SortDir, oneOf(task.SortAsc, task.SortDesc)),
		criterio.Run("devserver.addr", c.DevServer.Addr, hostPort),
		positiveDuration("devserver.jwt_ttl", c.DevServer.JWTTTL),
		criterio.Run("log_level", c.LogLevel, logLevel),
		criterio.Run("data_dir", c.DataDir, validate.Required),
	)
}

// ValidateDeep performs Validate plus file system checks. The configPath
// argument specifies the config file location to validate (empty string
// skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		warnings = append(warnings, ValidationWarning{
			Category: "TUI",
			Item:     "tui.theme",
			Message:  fmt.Sprintf("unknown theme %q, using %s (available: %s)", c.TUI.Theme, styles.DefaultTheme, strings.Join(styles.ThemeNames(), ", ")),
		})
	}

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "api.base_url",
			Message:  "credentials are sent over plain http to a remote host",
		})
	}

	if c.DevServer.Secret != "" && len(c.DevServer.Secret) < MinDevServerSecretLength {
		warnings = append(warnings, ValidationWarning{
			Category: "DevServer",
			Item:     "devserver.secret",
			Message:  fmt.Sprintf("secret is shorter than %d characters", MinDevServerSecretLength),
		})
	}

	return warnings
}

func baseURL(s string) error {
	if err := validate.Required(s); err != nil {
		return err
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func hostPort(s string) error {
	if _, _, err := net.SplitHostPort(s); err != nil {
		return fmt.Errorf("must be host:port")
	}
	return nil
}

func logLevel(s string) error {
	if _, err := zerolog.ParseLevel(s); err != nil {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(s string) error {
		if !slices.Contains(allowed, s) {
			return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
		}
		return nil
	}
}

func positiveDuration(field string, d time.Duration) error {
	if d <= 0 {
		return criterio.NewFieldErrors(field, fmt.Errorf("must be positive"))
	}
	return nil
}

func pageSize(n int) error {
	if n < 1 || n > 100 {
		return criterio.NewFieldErrors("tasks.page_size", fmt.Errorf("must be between 1 and 100"))
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
