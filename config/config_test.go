package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "attendance.db", cfg.Storage.SQLitePath)
	assert.Zero(t, cfg.Attendance.GeofenceMeters)
	assert.Zero(t, cfg.Attendance.CommitLatency)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9090"
storage:
  sqlite_path: "/var/data/attendance.db"
attendance:
  geofence_meters: 250
  commit_latency: "150ms"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "/var/data/attendance.db", cfg.Storage.SQLitePath)
	assert.Equal(t, float64(250), cfg.Attendance.GeofenceMeters)
	assert.Equal(t, 150*time.Millisecond, cfg.Attendance.CommitLatency)
}

func TestLoad_EmptyFileGetsDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "attendance.db", cfg.Storage.SQLitePath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
attendance:
  commit_latency: "soon"
`)

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "commit_latency")
}

func TestLoad_NegativeGeofence(t *testing.T) {
	path := writeConfig(t, `
attendance:
  geofence_meters: -5
`)

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "geofence_meters")
}
