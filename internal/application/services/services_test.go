package services

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

func TestSettingsService_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	settings := env.planner.Settings

	minutes := 25
	mode := "kanban"
	updated, err := settings.UpdateSettings(ctx, ports.UpdateSettingsRequest{FocusTimer: &minutes, ViewMode: &mode})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.FocusTimer)
	assert.Equal(t, "kanban", updated.ViewMode)
	assert.Equal(t, "dark", updated.Theme)

	tooLong := 500
	_, err = settings.UpdateSettings(ctx, ports.UpdateSettingsRequest{FocusTimer: &tooLong})
	assert.ErrorIs(t, err, entities.ErrValidation)
	badMode := "cards"
	_, err = settings.UpdateSettings(ctx, ports.UpdateSettingsRequest{ViewMode: &badMode})
	assert.ErrorIs(t, err, entities.ErrValidation)

	current, err := settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, current.FocusTimer)

	raw, err := env.kv.Get(ctx, "fokusplaner_settings")
	require.NoError(t, err)
	assert.Contains(t, raw, `"focusTimer":25`)
}

func TestStatsService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stats := env.planner.Stats

	require.NoError(t, stats.Record(ctx, entities.StatFocusTime, 10))
	env.clock.Advance(24 * time.Hour)
	require.NoError(t, stats.Record(ctx, entities.StatFocusTime, 5))
	assert.ErrorIs(t, stats.Record(ctx, "sleep", 1), entities.ErrValidation)

	all, err := stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, all.TotalFocusTime)
	assert.Len(t, all.DailyStats, 2)

	today, err := stats.TodayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, today.FocusTime)
}

func TestSearchService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.planner.Tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: "Garden fence"})
	require.NoError(t, err)
	archived, err := env.planner.Tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: "Old", Tags: []string{"garden"}})
	require.NoError(t, err)
	require.NoError(t, env.planner.Tasks.ArchiveTask(ctx, archived.ID))
	_, err = env.planner.Notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "plant tomatoes in the GARDEN"})
	require.NoError(t, err)
	_, err = env.planner.Notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "unrelated"})
	require.NoError(t, err)

	results, err := env.planner.Search.Search(ctx, " garden ")
	require.NoError(t, err)
	assert.Len(t, results.Tasks, 1)
	assert.Len(t, results.Notes, 1)
	assert.Len(t, results.ArchivedTasks, 1)
	assert.Empty(t, results.ArchivedNotes)
	assert.Equal(t, 3, results.Total())

	empty, err := env.planner.Search.Search(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, empty.Total())
}

func TestBackupService_CreateBackup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.planner.Tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: "Backed up"})
	require.NoError(t, err)

	path, err := env.planner.Backup.CreateBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, BackupFileName("backup", testStart), filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"tasks\": [")

	var snap ports.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "Backed up", snap.Tasks[0].Title)
	assert.Len(t, snap.Groups, 1)
}

func TestBackupService_Disabled(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.BackupDir = "" })

	_, err := env.planner.Backup.CreateBackup(context.Background())
	assert.ErrorIs(t, err, ErrBackupDisabled)
}

func TestBackupService_ExportYAML(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.planner.Notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "exported"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.planner.Backup.Export(ctx, &buf, ports.BackupYAML))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc, "settings")
	settings := doc["settings"].(map[string]interface{})
	assert.Equal(t, 20, settings["focusTimer"])

	notes := doc["notes"].([]interface{})
	require.Len(t, notes, 1)
	assert.Equal(t, "exported", notes[0].(map[string]interface{})["content"])

	assert.Error(t, env.planner.Backup.Export(ctx, &buf, "xml"))
}

func TestBackupFileName(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 5, 7, 123000000, time.UTC)
	assert.Equal(t, "backup-2026-10-14T09-05-07-123Z.json", BackupFileName("backup", at))
}
