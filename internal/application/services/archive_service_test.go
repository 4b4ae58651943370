package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

func TestArchive_TaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tasks := env.planner.Tasks

	task, err := tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: "Round trip", Tags: []string{"a", "b"}, EstimatedTime: 15})
	require.NoError(t, err)
	_, err = tasks.AddSubtask(ctx, task.ID, "one")
	require.NoError(t, err)
	_, err = tasks.AddTaskNote(ctx, task.ID, "remember")
	require.NoError(t, err)
	before, err := tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	require.NoError(t, tasks.ArchiveTask(ctx, task.ID))

	archive, err := env.planner.Archive.GetArchive(ctx)
	require.NoError(t, err)
	require.Len(t, archive.Tasks, 1)
	assert.Equal(t, testStart.Add(time.Hour), archive.Tasks[0].ArchivedAt)

	env.clock.Advance(time.Hour)
	require.NoError(t, env.planner.Archive.RestoreItem(ctx, ports.ArchiveKindTask, task.ID))

	after, err := tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(before, after, cmpopts.IgnoreFields(entities.Task{}, "UpdatedAt")); diff != "" {
		t.Errorf("restored task differs (-before +after):\n%s", diff)
	}

	archive, err = env.planner.Archive.GetArchive(ctx)
	require.NoError(t, err)
	assert.Empty(t, archive.Tasks)
}

func TestArchive_NoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	notes := env.planner.Notes

	note, err := notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "keep me", Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "other"})
	require.NoError(t, err)

	require.NoError(t, notes.ArchiveNote(ctx, note.ID))
	restored, err := notes.RestoreNote(ctx, note.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(*note, *restored); diff != "" {
		t.Errorf("restored note differs (-before +after):\n%s", diff)
	}

	list, err := notes.ListNotes(ctx, ports.NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, note.ID, list[0].ID, "restored notes are prepended")

	_, err = notes.RestoreNote(ctx, note.ID)
	assert.ErrorIs(t, err, entities.ErrArchivedNotFound)
}

func TestArchive_RestoreCompletedTaskReopens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	group, err := env.planner.Groups.CreateGroup(ctx, ports.CreateGroupRequest{Name: "Gone"})
	require.NoError(t, err)
	task, err := env.planner.Tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: "Done", GroupID: group.ID})
	require.NoError(t, err)
	_, err = env.planner.Tasks.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.NoError(t, env.planner.Tasks.ArchiveTask(ctx, task.ID))
	require.NoError(t, env.planner.Groups.DeleteGroup(ctx, group.ID))

	restored, err := env.planner.Tasks.RestoreTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, restored.Completed)
	assert.Nil(t, restored.CompletedAt)
	assert.Equal(t, 0, restored.Progress)
	assert.Equal(t, entities.DefaultGroupID, restored.GroupID)
}

func TestArchive_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	archive := env.planner.Archive

	for _, title := range []string{"a", "b"} {
		task, err := env.planner.Tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: title})
		require.NoError(t, err)
		require.NoError(t, env.planner.Tasks.ArchiveTask(ctx, task.ID))
	}
	note, err := env.planner.Notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "n"})
	require.NoError(t, err)
	require.NoError(t, env.planner.Notes.ArchiveNote(ctx, note.ID))

	current, err := archive.GetArchive(ctx)
	require.NoError(t, err)
	first := current.Tasks[0].ID

	assert.ErrorIs(t, archive.DeleteItem(declined(), ports.ArchiveKindTask, first), entities.ErrNotConfirmed)
	assert.ErrorIs(t, archive.DeleteItem(confirmed(), ports.ArchiveKindTask, "ghost"), entities.ErrArchivedNotFound)
	assert.ErrorIs(t, archive.DeleteItem(confirmed(), "folder", first), entities.ErrValidation)
	require.NoError(t, archive.DeleteItem(confirmed(), ports.ArchiveKindTask, first))

	current, err = archive.GetArchive(ctx)
	require.NoError(t, err)
	assert.Len(t, current.Tasks, 1)
	assert.Len(t, current.Notes, 1)

	assert.ErrorIs(t, archive.ClearArchive(declined()), entities.ErrNotConfirmed)
	require.NoError(t, archive.ClearArchive(confirmed()))

	current, err = archive.GetArchive(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Tasks)
	assert.Empty(t, current.Notes)
}
