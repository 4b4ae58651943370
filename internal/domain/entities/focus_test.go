package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocusStateMachine(t *testing.T) {
	var slot *FocusSession
	assert.Equal(t, FocusIdle, slot.State())

	session, err := StartFocus(slot, "f1", "t1", now, 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, FocusRunning, session.State())
	assert.Equal(t, int64(3000), session.RemainingMs)

	_, err = StartFocus(&session, "f2", "t1", now, time.Minute)
	assert.ErrorIs(t, err, ErrSessionActive)

	paused, err := PauseFocus(&session, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, FocusPaused, paused.State())
	assert.Equal(t, FocusRunning, session.State(), "transitions must not mutate their input")

	_, err = PauseFocus(&paused, now)
	assert.ErrorIs(t, err, ErrSessionPaused)

	ticked, state := TickFocus(&paused, TickInterval)
	assert.Equal(t, FocusPaused, state)
	assert.Equal(t, int64(3000), ticked.RemainingMs, "paused sessions keep their remaining time")

	resumed, err := ResumeFocus(&paused)
	require.NoError(t, err)
	assert.Nil(t, resumed.PausedAt)

	_, err = ResumeFocus(&resumed)
	assert.ErrorIs(t, err, ErrSessionNotPaused)

	next, state := TickFocus(&resumed, TickInterval)
	assert.Equal(t, FocusRunning, state)
	next, state = TickFocus(&next, TickInterval)
	assert.Equal(t, FocusRunning, state)
	next, state = TickFocus(&next, TickInterval)
	assert.Equal(t, FocusCompleted, state)
	assert.Equal(t, int64(0), next.RemainingMs)
	assert.Equal(t, FocusIdle, next.State())
}

func TestToggleFocus(t *testing.T) {
	session, err := StartFocus(nil, "f1", "t1", now, time.Minute)
	require.NoError(t, err)

	paused, err := ToggleFocus(&session, now)
	require.NoError(t, err)
	assert.True(t, paused.IsPaused)

	running, err := ToggleFocus(&paused, now)
	require.NoError(t, err)
	assert.False(t, running.IsPaused)

	_, err = ToggleFocus(nil, now)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestStopFocus(t *testing.T) {
	session, err := StartFocus(nil, "f1", "t1", now, 20*time.Minute)
	require.NoError(t, err)

	minutes, err := StopFocus(&session, now.Add(7*time.Minute+59*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 7, minutes)

	_, err = StopFocus(nil, now)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestTickFocus_Idle(t *testing.T) {
	_, state := TickFocus(nil, TickInterval)
	assert.Equal(t, FocusIdle, state)
}
