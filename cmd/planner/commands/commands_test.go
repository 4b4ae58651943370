package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fokusplaner/core/internal/domain/entities"
)

type cli struct {
	dataDir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("ARCHIVE_COMPLETED_AFTER", "0s")
	t.Setenv("ENABLE_METRICS", "false")
	return &cli{dataDir: t.TempDir()}
}

func (c *cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", c.dataDir, "--backend", "file", "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) runJSON(t *testing.T, dst interface{}, args ...string) {
	t.Helper()
	out, err := c.run(t, "", append([]string{"--json"}, args...)...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), dst), out)
}

func TestCLI_TaskLifecycle(t *testing.T) {
	c := newCLI(t)

	var task entities.Task
	c.runJSON(t, &task, "task", "add", "Write", "report", "-p", "high", "-t", "work,q3", "-s", "outline", "-s", "draft")
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, entities.PriorityHigh, task.Priority)
	assert.Equal(t, []string{"work", "q3"}, task.Tags)
	require.Len(t, task.Subtasks, 2)

	var toggled entities.Task
	c.runJSON(t, &toggled, "task", "sub", "toggle", task.ID, task.Subtasks[0].ID)
	assert.Equal(t, 50, toggled.Progress)

	var done entities.Task
	c.runJSON(t, &done, "task", "done", task.ID)
	assert.True(t, done.Completed)

	var stats entities.Stats
	c.runJSON(t, &stats, "stats")
	assert.Equal(t, 1, stats.CompletedTasks)

	out, err := c.run(t, "", "task", "list", "--view", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Write report")
}

func TestCLI_DeleteAsksForConfirmation(t *testing.T) {
	c := newCLI(t)

	var task entities.Task
	c.runJSON(t, &task, "task", "add", "Throwaway")

	_, err := c.run(t, "n\n", "task", "rm", task.ID)
	assert.ErrorIs(t, err, entities.ErrNotConfirmed)

	out, err := c.run(t, "y\n", "task", "rm", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Task deleted.")

	_, err = c.run(t, "", "task", "show", task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestCLI_NotesAndArchive(t *testing.T) {
	c := newCLI(t)

	var note entities.Note
	c.runJSON(t, &note, "note", "add", "Buy", "milk", "-t", "errand")
	assert.Equal(t, "Buy milk", note.Title)

	var task entities.Task
	c.runJSON(t, &task, "note", "convert", note.ID)
	assert.Equal(t, "Buy milk", task.Title)

	var archive entities.Archive
	c.runJSON(t, &archive, "archive")
	require.Len(t, archive.Notes, 1)
	assert.Equal(t, note.ID, archive.Notes[0].ID)

	_, err := c.run(t, "", "--yes", "archive", "clear")
	require.NoError(t, err)

	c.runJSON(t, &archive, "archive")
	assert.Empty(t, archive.Notes)
}

func TestCLI_Groups(t *testing.T) {
	c := newCLI(t)

	var group entities.Group
	c.runJSON(t, &group, "group", "add", "Work", "-c", "#1e88e5")
	assert.Equal(t, "#1e88e5", group.Color)

	out, err := c.run(t, "", "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, entities.DefaultGroupName)

	_, err = c.run(t, "", "--yes", "group", "rm", entities.DefaultGroupID)
	assert.ErrorIs(t, err, entities.ErrDefaultGroup)
}

func TestCLI_SettingsAndExport(t *testing.T) {
	c := newCLI(t)

	var settings entities.Settings
	c.runJSON(t, &settings, "settings", "set", "--theme", "light", "--focus-timer", "25")
	assert.Equal(t, "light", settings.Theme)
	assert.Equal(t, 25, settings.FocusTimer)
	assert.Equal(t, 5, settings.BreakDuration)

	_, err := c.run(t, "", "settings", "set", "--view-mode", "calendar")
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = c.run(t, "", "task", "add", "Export me")
	require.NoError(t, err)

	out, err := c.run(t, "", "backup", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Export me")
	assert.Contains(t, out, "theme: light")
}

func TestCLI_Version(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "FokusPlaner dev\n", out.String())
}

func TestPromptConfirmer(t *testing.T) {
	var out bytes.Buffer

	assert.True(t, newPromptConfirmer(strings.NewReader("Yes\n"), &out).Confirm(context.Background(), "Sure?"))
	assert.False(t, newPromptConfirmer(strings.NewReader("\n"), &out).Confirm(context.Background(), "Sure?"))
	assert.False(t, newPromptConfirmer(strings.NewReader(""), &out).Confirm(context.Background(), "Sure?"))
	assert.Contains(t, out.String(), "Sure? [y/N]: ")
}
