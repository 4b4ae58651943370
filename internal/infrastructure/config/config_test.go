package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "FokusPlaner", cfg.App.Name)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, DefaultDataDir(), cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(cfg.Storage.DataDir, "backups"), cfg.Storage.BackupDir)
	assert.Equal(t, "fokusplaner_", cfg.Storage.KeyPrefix)
	assert.Equal(t, time.Second, cfg.Focus.TickInterval)
	assert.Equal(t, 20, cfg.Focus.DefaultMinutes)
	assert.Equal(t, 2*time.Second, cfg.Tasks.ArchiveCompletedAfter)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("PLANNER_STORAGE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ARCHIVE_COMPLETED_AFTER", "0s")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, time.Duration(0), cfg.Tasks.ArchiveCompletedAfter)
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "planner.yaml")
	content := []byte("storage:\n  backend: sql\n  sql:\n    driver: sqlite3\nfocus:\n  default_minutes: 25\n")
	require.NoError(t, os.WriteFile(file, content, 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--data-dir", dir}))

	cfg, err := Load(file, flags)
	require.NoError(t, err)

	assert.Equal(t, BackendSQL, cfg.Storage.Backend)
	assert.Equal(t, 25, cfg.Focus.DefaultMinutes)
	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.Equal(t, "file:"+filepath.Join(dir, "fokusplaner.db")+"?_busy_timeout=5000", cfg.Storage.SQL.GetDSN(cfg.Storage.DataDir))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORAGE_BACKEND": "floppy"}},
		{name: "bad port", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "bad sql driver", env: map[string]string{"STORAGE_BACKEND": "sql", "DB_DRIVER": "oracle"}},
		{name: "negative archive delay", env: map[string]string{"ARCHIVE_COMPLETED_AFTER": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			assert.Error(t, err)
		})
	}
}

func TestGetDSN(t *testing.T) {
	pg := SQLConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", pg.GetDSN(""))

	explicit := SQLConfig{Driver: "sqlite3", DSN: ":memory:"}
	assert.Equal(t, ":memory:", explicit.GetDSN("/tmp"))
}
