package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)

func taskWithSubtasks(done ...bool) Task {
	task := Task{ID: "t1", Title: "Write report"}
	for i, d := range done {
		task.Subtasks = append(task.Subtasks, Subtask{ID: string(rune('a' + i)), Completed: d})
	}
	return task
}

func TestRecomputeProgress(t *testing.T) {
	tests := []struct {
		name          string
		done          []bool
		wantProgress  int
		wantCompleted bool
	}{
		{name: "no subtasks", done: nil, wantProgress: 0},
		{name: "none done", done: []bool{false, false}, wantProgress: 0},
		{name: "half done", done: []bool{true, false}, wantProgress: 50},
		{name: "one of three", done: []bool{true, false, false}, wantProgress: 33},
		{name: "two of three", done: []bool{true, true, false}, wantProgress: 67},
		{name: "all done", done: []bool{true, true}, wantProgress: 100, wantCompleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := taskWithSubtasks(tt.done...)
			autoCompleted := task.RecomputeProgress(now)

			assert.Equal(t, tt.wantProgress, task.Progress)
			assert.Equal(t, tt.wantCompleted, task.Completed)
			assert.Equal(t, tt.wantCompleted, autoCompleted)
		})
	}
}

func TestRecomputeProgress_AutoCompletesOnce(t *testing.T) {
	task := taskWithSubtasks(true, true)

	assert.True(t, task.RecomputeProgress(now))
	assert.NotNil(t, task.CompletedAt)
	assert.False(t, task.RecomputeProgress(now.Add(time.Minute)), "already completed tasks must not count again")
	assert.Equal(t, now, *task.CompletedAt)
}

func TestRecomputeProgress_CompletedWithoutSubtasks(t *testing.T) {
	task := Task{Completed: true}
	task.RecomputeProgress(now)
	assert.Equal(t, 100, task.Progress)
}

func TestTaskMatches(t *testing.T) {
	task := Task{Title: "Write Report", Description: "quarterly numbers", Tags: []string{"Work"}}

	assert.True(t, task.Matches(""))
	assert.True(t, task.Matches("report"))
	assert.True(t, task.Matches("QUARTERLY"))
	assert.True(t, task.Matches("wor"))
	assert.False(t, task.Matches("holiday"))
	assert.True(t, task.HasTag("work"))
	assert.False(t, task.HasTag("wor"))
}

func TestGenerateNoteTitle(t *testing.T) {
	assert.Equal(t, UntitledNoteName, GenerateNoteTitle("   "))
	assert.Equal(t, "Short", GenerateNoteTitle("Short"))
	assert.Equal(t, "First line...", GenerateNoteTitle("First line\nsecond line"))
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz0123...", GenerateNoteTitle("abcdefghijklmnopqrstuvwxyz0123456789"))
}

func TestStatsRecord(t *testing.T) {
	stats := NewStats()
	stats.Record(StatFocusTime, 20, now)
	stats.Record(StatFocusTime, 5, now)
	stats.Record(StatCompletedTask, 1, now)
	stats.Record(StatCreatedNote, 1, now.AddDate(0, 0, 1))

	assert.Equal(t, 25, stats.TotalFocusTime)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.CreatedNotes)
	assert.Equal(t, DailyStats{FocusTime: 25, CompletedTasks: 1}, stats.Day(now))
	assert.Equal(t, DailyStats{CreatedNotes: 1}, stats.Day(now.AddDate(0, 0, 1)))
	assert.Equal(t, "2026-10-14", DayKey(now))
}

func TestTaskClone(t *testing.T) {
	task := Task{Tags: []string{"a"}, Subtasks: []Subtask{{ID: "s"}}}
	clone := task.Clone()
	clone.Tags[0] = "b"
	clone.Subtasks[0].Completed = true

	assert.Equal(t, "a", task.Tags[0])
	assert.False(t, task.Subtasks[0].Completed)
}

func TestPriority(t *testing.T) {
	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, Priority("critical").IsValid())
	assert.Less(t, PriorityHigh.Rank(), PriorityLow.Rank())
}
