package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/task"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), dataDir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dataDir
	assert.Equal(t, &want, cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://tasks.example.com/api
  timeout: 30s
tasks:
  page_size: 25
  sort_by: priority
  sort_dir: desc
tui:
  theme: gruvbox
devserver:
  addr: 127.0.0.1:9090
  jwt_ttl: 2h
  seed_demo: true
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "gruvbox", cfg.TUI.Theme)
	assert.Equal(t, "127.0.0.1:9090", cfg.DevServer.Addr)
	assert.Equal(t, 2*time.Hour, cfg.DevServer.JWTTTL)
	assert.True(t, cfg.DevServer.SeedDemo)

	f := cfg.TaskFilter()
	assert.Equal(t, 25, f.Size)
	assert.Equal(t, task.SortPriority, f.SortBy)
	assert.Equal(t, task.SortDesc, f.SortDir)
	assert.Equal(t, 0, f.Page)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "tasks:\n  page_size: 5\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Tasks.PageSize)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, task.SortDueDate, cfg.Tasks.SortBy)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "tasks:\n  sort_dir: sideways\n")

	_, err := Load(path, t.TempDir())
	assert.Equal(t, []string{"tasks.sort_dir"}, fieldNames(t, err))
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "api: [unclosed\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"

	assert.Equal(t, filepath.Join("/data", "credential.json"), cfg.CredentialFile())
	assert.Equal(t, filepath.Join("/data", "taskdeck.log"), cfg.LogFile())
	assert.Equal(t, filepath.Join("/data", "devserver"), cfg.DevServerDir())
}
