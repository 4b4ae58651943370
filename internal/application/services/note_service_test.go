package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

func TestNoteService_CreateNote(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	notes := env.planner.Notes

	first, err := notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "Short idea"})
	require.NoError(t, err)
	assert.Equal(t, "Short idea", first.Title)

	long := strings.Repeat("a", 40) + "\nsecond line"
	second, err := notes.CreateNote(ctx, ports.CreateNoteRequest{Content: long, Tags: []string{"idea"}})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 30)+"...", second.Title)

	titled, err := notes.CreateNote(ctx, ports.CreateNoteRequest{Title: " Explicit ", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "Explicit", titled.Title)

	_, err = notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "   "})
	assert.ErrorIs(t, err, entities.ErrValidation)

	list, err := notes.ListNotes(ctx, ports.NoteFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, titled.ID, list[0].ID, "new notes are prepended")

	stats, err := env.planner.Stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CreatedNotes)
	assert.Equal(t, 3, stats.Day(testStart).CreatedNotes)
}

func TestNoteService_UpdateNote(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	notes := env.planner.Notes

	note, err := notes.CreateNote(ctx, ports.CreateNoteRequest{Title: "Title", Content: "content"})
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	empty := ""
	content := "Fresh first line\nmore"
	updated, err := notes.UpdateNote(ctx, note.ID, ports.UpdateNoteRequest{Title: &empty, Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "Fresh first line...", updated.Title)
	assert.Equal(t, content, updated.Content)
	assert.Equal(t, testStart.Add(time.Minute), updated.UpdatedAt)

	_, err = notes.UpdateNote(ctx, "ghost", ports.UpdateNoteRequest{Content: &content})
	assert.ErrorIs(t, err, entities.ErrNoteNotFound)
}

func TestNoteService_DeleteRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	notes := env.planner.Notes

	note, err := notes.CreateNote(context.Background(), ports.CreateNoteRequest{Content: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, notes.DeleteNote(declined(), note.ID), entities.ErrNotConfirmed)
	require.NoError(t, notes.DeleteNote(confirmed(), note.ID))

	_, err = notes.GetNote(context.Background(), note.ID)
	assert.ErrorIs(t, err, entities.ErrNoteNotFound)
}

func TestNoteService_TogglePinSorts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	notes := env.planner.Notes

	var ids []string
	for _, content := range []string{"oldest", "middle", "newest"} {
		note, err := notes.CreateNote(ctx, ports.CreateNoteRequest{Content: content})
		require.NoError(t, err)
		ids = append(ids, note.ID)
		env.clock.Advance(time.Minute)
	}

	pinned, err := notes.TogglePin(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)

	list, err := notes.ListNotes(ctx, ports.NoteFilter{})
	require.NoError(t, err)
	order := []string{list[0].ID, list[1].ID, list[2].ID}
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, order)

	yes := true
	onlyPinned, err := notes.ListNotes(ctx, ports.NoteFilter{Pinned: &yes})
	require.NoError(t, err)
	assert.Len(t, onlyPinned, 1)
}

func TestNoteService_ConvertToTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	group, err := env.planner.Groups.CreateGroup(ctx, ports.CreateGroupRequest{Name: "Ideas"})
	require.NoError(t, err)
	note, err := env.planner.Notes.CreateNote(ctx, ports.CreateNoteRequest{Title: "Build shed", Content: "wood, nails", Tags: []string{"diy"}})
	require.NoError(t, err)

	task, err := env.planner.Notes.ConvertToTask(ctx, note.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Build shed", task.Title)
	assert.Equal(t, "wood, nails", task.Description)
	assert.Equal(t, []string{"diy"}, task.Tags)
	assert.Equal(t, entities.PriorityMedium, task.Priority)
	assert.Equal(t, group.ID, task.GroupID)

	_, err = env.planner.Notes.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, entities.ErrNoteNotFound)

	archive, err := env.planner.Archive.GetArchive(ctx)
	require.NoError(t, err)
	require.Len(t, archive.Notes, 1)
	assert.Equal(t, note.ID, archive.Notes[0].ID)
}

func TestNoteService_ConvertToTaskDefaultGroup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	note, err := env.planner.Notes.CreateNote(ctx, ports.CreateNoteRequest{Content: "loose idea"})
	require.NoError(t, err)

	task, err := env.planner.Notes.ConvertToTask(ctx, note.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultGroupID, task.GroupID)
}
