package logger

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fokusplaner/core/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	log, err := New(config.LoggerConfig{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, log.WithComponent("test").WithError(errors.New("boom")))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "planner.log")

	log, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: file})
	require.NoError(t, err)
	log.LogStorageOperation("write", "tasks", 1500*time.Microsecond, nil)
	log.LogAction("task_created", map[string]interface{}{"task_id": "t1"})
	_ = log.Close()

	assert.FileExists(t, file)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.LogStorageOperation("read", "notes", 0, errors.New("broken"))
	assert.NoError(t, log.Close())
}

func TestLogHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.LogAction("note_created", map[string]interface{}{"note_id": "n1"})
	log.LogStorageOperation("write", "notes", 2*time.Millisecond, nil)
	log.LogStorageOperation("read", "tasks", 0, errors.New("broken"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, map[string]interface{}{"action": "note_created", "note_id": "n1"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, 2.0, entries[1].ContextMap()["duration_ms"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "broken", entries[2].ContextMap()["error"])
}
