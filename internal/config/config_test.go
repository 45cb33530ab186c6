package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GIN_MODE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/caisse.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "/tmp/caisse.db", cfg.DSN())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_ReleaseNeedsSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_PostgresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "caisse")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "caisse")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://caisse:pw@db:5432/caisse?sslmode=disable", cfg.DSN())
}

func TestLoadWorkflow_DefaultsWhenMissing(t *testing.T) {
	wf, err := LoadWorkflow(filepath.Join(t.TempDir(), "workflow.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, wf.Sync.Debounce)
	assert.Equal(t, 3, wf.Sync.Attempts)
	assert.Equal(t, 10, wf.Outbox.MaxAttempts)
	assert.Equal(t, "ops", wf.Channels.Operator)
	assert.NotEmpty(t, wf.Routes)
}

func TestLoadWorkflow_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sync:
  debounce: 45s
  attempts: 5
outbox:
  interval: 500ms
channels:
  finance: compta
routes:
  - event: "funding.*"
    channels: ["compta", "direction"]
`), 0o600))

	wf, err := LoadWorkflow(path)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, wf.Sync.Debounce)
	assert.Equal(t, 5, wf.Sync.Attempts)
	assert.Equal(t, 200*time.Millisecond, wf.Sync.BackoffBase)
	assert.Equal(t, 500*time.Millisecond, wf.Outbox.Interval)
	assert.Equal(t, "compta", wf.Channels.Finance)
	require.Len(t, wf.Routes, 1)
	assert.Equal(t, "funding.*", wf.Routes[0].Event)
	assert.Equal(t, []string{"compta", "direction"}, wf.Routes[0].Channels)
}
