package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

func focusEnv(t *testing.T, focusMinutes int) (*testEnv, *entities.Task) {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.planner.Settings.UpdateSettings(ctx, ports.UpdateSettingsRequest{FocusTimer: &focusMinutes})
	require.NoError(t, err)
	task, err := env.planner.Tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: "Deep work"})
	require.NoError(t, err)
	return env, task
}

func TestFocusService_StartPauseResume(t *testing.T) {
	ctx := context.Background()
	env, task := focusEnv(t, 20)
	focus := env.planner.Focus

	_, err := focus.Start(ctx, "ghost")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	session, err := focus.Start(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.FocusRunning, session.State())
	assert.Equal(t, 20*time.Minute, session.Remaining())

	paused, err := focus.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.FocusPaused, paused.State())

	_, err = focus.Pause(ctx)
	assert.ErrorIs(t, err, entities.ErrSessionPaused)

	result, err := focus.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, result.Session.Remaining(), "paused sessions do not count down")

	resumed, err := focus.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.FocusRunning, resumed.State())

	result, err = focus.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute-time.Second, result.Session.Remaining())

	_, err = focus.Resume(ctx)
	assert.ErrorIs(t, err, entities.ErrSessionNotPaused)
}

func TestFocusService_StartWhileActiveNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	env, task := focusEnv(t, 20)
	focus := env.planner.Focus

	other, err := env.planner.Tasks.CreateTask(ctx, ports.CreateTaskRequest{Title: "Other"})
	require.NoError(t, err)

	first, err := focus.Start(ctx, task.ID)
	require.NoError(t, err)
	env.clock.Advance(7*time.Minute + 30*time.Second)

	_, err = focus.Start(declined(), other.ID)
	assert.ErrorIs(t, err, entities.ErrSessionActive)

	current, err := focus.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID, "declined override keeps the session")

	second, err := focus.Start(confirmed(), other.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, other.ID, second.TaskID)
	assert.Equal(t, second.Duration(), second.Remaining(), "new session starts with a full countdown")

	// the replaced session was booked exactly once
	stats, err := env.planner.Stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalFocusTime)
	stored, err := env.planner.Tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.ActualTime)
}

func TestFocusService_StopBooksOnce(t *testing.T) {
	ctx := context.Background()
	env, task := focusEnv(t, 20)
	focus := env.planner.Focus

	_, err := focus.Start(ctx, task.ID)
	require.NoError(t, err)
	env.clock.Advance(12*time.Minute + 59*time.Second)

	result, err := focus.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, result.ElapsedMinutes)
	assert.Equal(t, entities.FocusIdle, result.State)

	_, err = focus.Stop(ctx)
	assert.ErrorIs(t, err, entities.ErrNoActiveSession)
	_, err = focus.Current(ctx)
	assert.ErrorIs(t, err, entities.ErrNoActiveSession)

	stats, err := env.planner.Stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalFocusTime)
	assert.Equal(t, 12, stats.Day(testStart).FocusTime)

	stored, err := env.planner.Tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.ActualTime)
}

func TestFocusService_TickCompletesSession(t *testing.T) {
	ctx := context.Background()
	env, task := focusEnv(t, 1)
	focus := env.planner.Focus

	_, err := focus.Start(ctx, task.ID)
	require.NoError(t, err)

	var last *ports.FocusResult
	for i := 0; i < 60; i++ {
		last, err = focus.Tick(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, entities.FocusCompleted, last.State)
	assert.Equal(t, 1, last.ElapsedMinutes)

	_, err = focus.Current(ctx)
	assert.ErrorIs(t, err, entities.ErrNoActiveSession)

	result, err := focus.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.FocusIdle, result.State)

	stats, err := env.planner.Stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFocusTime)
	stored, err := env.planner.Tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ActualTime)

	assert.Equal(t, []ports.NotificationKind{ports.NotifyFocusComplete, ports.NotifyBreakSuggested}, env.notifier.Kinds())
	assert.Equal(t, 1, focus.CompletedSessions())
}

func TestFocusService_AddNote(t *testing.T) {
	ctx := context.Background()
	env, task := focusEnv(t, 20)
	focus := env.planner.Focus

	_, err := focus.AddNote(ctx, "too early")
	assert.ErrorIs(t, err, entities.ErrNoActiveSession)

	_, err = focus.Start(ctx, task.ID)
	require.NoError(t, err)

	note, err := focus.AddNote(ctx, " found the bug ")
	require.NoError(t, err)
	assert.Equal(t, "found the bug", note.Text)

	session, err := focus.Current(ctx)
	require.NoError(t, err)
	require.Len(t, session.Notes, 1)

	stored, err := env.planner.Tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, stored.Notes, 1)
	assert.Equal(t, "found the bug", stored.Notes[0].Text)
}

func TestFocusService_StartBreak(t *testing.T) {
	ctx := context.Background()
	env, _ := focusEnv(t, 20)

	duration, err := env.planner.Focus.StartBreak(ctx, ports.BreakLong)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, duration)

	_, err = env.planner.Focus.StartBreak(ctx, "nap")
	assert.ErrorIs(t, err, entities.ErrValidation)

	assert.Equal(t, []ports.NotificationKind{ports.NotifyBreakStarted}, env.notifier.Kinds())
}

func TestFocusService_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	env, task := focusEnv(t, 20)
	focus := NewFocusService(env.planner.Store, env.notifier, env.planner.Tasks.logger, nil, FocusOptions{TickInterval: 5 * time.Millisecond})
	defer focus.Close()

	_, err := focus.Start(context.Background(), task.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var done atomic.Bool
	finished := make(chan error, 1)
	go func() {
		finished <- focus.Run(ctx)
		done.Store(true)
	}()

	require.Eventually(t, func() bool {
		current, err := focus.Current(context.Background())
		return err == nil && current.Remaining() < current.Duration()
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Eventually(t, done.Load, time.Second, time.Millisecond)
}
