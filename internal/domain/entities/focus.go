package entities

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrSessionActive    = errors.New("a focus session is already active")
	ErrNoActiveSession  = errors.New("no active focus session")
	ErrSessionPaused    = errors.New("focus session is paused")
	ErrSessionNotPaused = errors.New("focus session is not paused")
)

// TickInterval is the countdown step of a running session.
const TickInterval = time.Second

// FocusState names the position of the focus slot in its state machine.
type FocusState string

const (
	FocusIdle      FocusState = "idle"
	FocusRunning   FocusState = "running"
	FocusPaused    FocusState = "paused"
	FocusCompleted FocusState = "completed"
)

// FocusSession is the single countdown bound to one task
type FocusSession struct {
	ID          string        `json:"id"`
	TaskID      string        `json:"taskId"`
	StartTime   time.Time     `json:"startTime"`
	DurationMs  int64         `json:"durationMs"`
	RemainingMs int64         `json:"remainingMs"`
	IsActive    bool          `json:"isActive"`
	IsPaused    bool          `json:"isPaused"`
	PausedAt    *time.Time    `json:"pausedAt,omitempty"`
	Notes       []SessionNote `json:"notes"`
}

// SessionNote is an annotation captured during a session
type SessionNote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// State reports the state of a session value; a nil session is idle.
func (s *FocusSession) State() FocusState {
	switch {
	case s == nil || !s.IsActive:
		return FocusIdle
	case s.IsPaused:
		return FocusPaused
	default:
		return FocusRunning
	}
}

// Clone returns a deep copy of the session.
func (s FocusSession) Clone() FocusSession {
	s.Notes = slices.Clone(s.Notes)
	if s.PausedAt != nil {
		at := *s.PausedAt
		s.PausedAt = &at
	}
	return s
}

// Duration returns the configured length of the session.
func (s FocusSession) Duration() time.Duration {
	return time.Duration(s.DurationMs) * time.Millisecond
}

// Remaining returns the time left on the countdown.
func (s FocusSession) Remaining() time.Duration {
	return time.Duration(s.RemainingMs) * time.Millisecond
}

// ElapsedMinutes is the whole number of wall-clock minutes since the start.
func (s FocusSession) ElapsedMinutes(now time.Time) int {
	elapsed := now.Sub(s.StartTime)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

// DurationMinutes is the configured length in whole minutes.
func (s FocusSession) DurationMinutes() int {
	return int(s.Duration() / time.Minute)
}

// StartFocus returns a fresh running session. It fails with
// ErrSessionActive when current still holds an active session; callers
// must stop it first.
func StartFocus(current *FocusSession, id, taskID string, now time.Time, duration time.Duration) (FocusSession, error) {
	if current.State() != FocusIdle {
		return FocusSession{}, ErrSessionActive
	}
	ms := duration.Milliseconds()
	return FocusSession{
		ID:          id,
		TaskID:      taskID,
		StartTime:   now,
		DurationMs:  ms,
		RemainingMs: ms,
		IsActive:    true,
		Notes:       []SessionNote{},
	}, nil
}

// PauseFocus stops the countdown without touching the remaining time.
func PauseFocus(s *FocusSession, now time.Time) (FocusSession, error) {
	switch s.State() {
	case FocusIdle:
		return FocusSession{}, ErrNoActiveSession
	case FocusPaused:
		return FocusSession{}, ErrSessionPaused
	}
	next := s.Clone()
	next.IsPaused = true
	next.PausedAt = &now
	return next, nil
}

// ResumeFocus restarts the countdown of a paused session.
func ResumeFocus(s *FocusSession) (FocusSession, error) {
	switch s.State() {
	case FocusIdle:
		return FocusSession{}, ErrNoActiveSession
	case FocusRunning:
		return FocusSession{}, ErrSessionNotPaused
	}
	next := s.Clone()
	next.IsPaused = false
	next.PausedAt = nil
	return next, nil
}

// ToggleFocus pauses a running session or resumes a paused one.
func ToggleFocus(s *FocusSession, now time.Time) (FocusSession, error) {
	if s.State() == FocusPaused {
		return ResumeFocus(s)
	}
	return PauseFocus(s, now)
}

// TickFocus advances a running session by step. Idle and paused sessions
// come back unchanged. The returned state is FocusCompleted once the
// countdown reaches zero.
func TickFocus(s *FocusSession, step time.Duration) (FocusSession, FocusState) {
	state := s.State()
	if state == FocusIdle {
		return FocusSession{}, FocusIdle
	}
	next := s.Clone()
	if state == FocusPaused {
		return next, FocusPaused
	}

	next.RemainingMs -= step.Milliseconds()
	if next.RemainingMs <= 0 {
		next.RemainingMs = 0
		next.IsActive = false
		return next, FocusCompleted
	}
	return next, FocusRunning
}

// StopFocus ends a running or paused session and reports the elapsed
// wall-clock minutes to account for.
func StopFocus(s *FocusSession, now time.Time) (int, error) {
	if s.State() == FocusIdle {
		return 0, ErrNoActiveSession
	}
	return s.ElapsedMinutes(now), nil
}
