package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grove.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "default", cfg.Dataset.PrepareScript)
	assert.Equal(t, 500*time.Millisecond, cfg.Dataset.Debounce)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
dataset:
  path: data/tree.db
  assign_tokens: true
  watch: true
  debounce: 2s
server:
  addr: 127.0.0.1:9000
  public_dir: ""
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/tree.db", cfg.Dataset.Path)
	assert.True(t, cfg.Dataset.AssignTokens)
	assert.True(t, cfg.Dataset.Watch)
	assert.Equal(t, 2*time.Second, cfg.Dataset.Debounce)
	assert.Equal(t, "default", cfg.Dataset.PrepareScript, "unset keys keep defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Empty(t, cfg.Server.PublicDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
dataset:
  path: from-file.json
server:
  addr: ":9000"
`)
	t.Setenv("GROVE_DATASET", "from-env.json")
	t.Setenv("GROVE_ADDR", ":7000")
	t.Setenv("GROVE_WATCH", "true")
	t.Setenv("GROVE_DEBOUNCE", "50ms")
	t.Setenv("GROVE_PREPARE_SCRIPT", "")
	t.Setenv("GROVE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.Dataset.Path)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.True(t, cfg.Dataset.Watch)
	assert.Equal(t, 50*time.Millisecond, cfg.Dataset.Debounce)
	assert.Empty(t, cfg.Dataset.PrepareScript, "set-but-empty disables the prepare step")
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_BadEnvValuesFallBack(t *testing.T) {
	t.Setenv("GROVE_WATCH", "maybe")
	t.Setenv("GROVE_DEBOUNCE", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Dataset.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.Dataset.Debounce)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "dataset:\n  pth: x.json\n"},
		{"bad yaml", "dataset: [\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"bad addr", "server:\n  addr: nowhere\n"},
		{"empty dataset", "dataset:\n  path: \"\"\n"},
		{"negative debounce", "dataset:\n  debounce: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config:")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
