package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/infrastructure/metrics"
	"github.com/fokusplaner/core/internal/ports"
)

const (
	confirmReplaceSession = "A focus session is already running. Stop it and start a new one?"

	// sessionsUntilLongBreak completed sessions earn a long break
	sessionsUntilLongBreak = 4
)

// FocusOptions configure the focus timer
type FocusOptions struct {
	TickInterval   time.Duration
	DefaultMinutes int
}

// FocusService drives the single focus session slot
type FocusService struct {
	store    *Store
	logger   *logger.Logger
	metrics  *metrics.Metrics
	notifier ports.Notifier
	opts     FocusOptions

	mu         sync.Mutex
	completed  int
	breakTimer *time.Timer
}

// NewFocusService creates a new focus service
func NewFocusService(store *Store, notifier ports.Notifier, logger *logger.Logger, m *metrics.Metrics, opts FocusOptions) *FocusService {
	if opts.TickInterval <= 0 {
		opts.TickInterval = entities.TickInterval
	}
	if opts.DefaultMinutes <= 0 {
		opts.DefaultMinutes = entities.DefaultSettings().FocusTimer
	}
	return &FocusService{
		store:    store,
		logger:   logger.WithComponent("focus"),
		metrics:  m,
		notifier: notifier,
		opts:     opts,
	}
}

var _ ports.FocusService = (*FocusService)(nil)

// Start begins a session for the task. A running session is replaced only
// after confirmation and is accounted as stopped.
func (s *FocusService) Start(ctx context.Context, taskID string) (*entities.FocusSession, error) {
	// Verify task exists and check the slot
	var (
		taskFound bool
		active    bool
	)
	s.store.view(func(st *state) {
		taskFound = st.findTask(taskID) != -1
		active = st.Focus.State() != entities.FocusIdle
	})
	if !taskFound {
		return nil, taskNotFound(taskID)
	}

	if active {
		if !ports.Confirm(ctx, confirmReplaceSession) {
			return nil, entities.ErrSessionActive
		}
		if _, err := s.Stop(ctx); err != nil && !errors.Is(err, entities.ErrNoActiveSession) {
			return nil, err
		}
	}

	var session entities.FocusSession
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		if st.findTask(taskID) == -1 {
			return nil, taskNotFound(taskID)
		}
		minutes := st.Settings.FocusTimer
		if minutes <= 0 {
			minutes = s.opts.DefaultMinutes
		}
		next, err := entities.StartFocus(st.Focus, s.store.newID(), taskID, now, time.Duration(minutes)*time.Minute)
		if err != nil {
			return nil, err
		}
		st.Focus = &next
		session = next.Clone()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FocusEvent(metrics.FocusStarted)
	s.logger.Infow("Focus session started", "session_id", session.ID, "task_id", taskID, "duration_minutes", session.DurationMinutes())

	return &session, nil
}

// Pause stops the countdown of the running session
func (s *FocusService) Pause(ctx context.Context) (*entities.FocusSession, error) {
	return s.transition(ctx, "paused", entities.PauseFocus)
}

// Resume continues a paused session
func (s *FocusService) Resume(ctx context.Context) (*entities.FocusSession, error) {
	return s.transition(ctx, "resumed", func(cur *entities.FocusSession, _ time.Time) (entities.FocusSession, error) {
		return entities.ResumeFocus(cur)
	})
}

// Toggle pauses a running or resumes a paused session
func (s *FocusService) Toggle(ctx context.Context) (*entities.FocusSession, error) {
	return s.transition(ctx, "toggled", entities.ToggleFocus)
}

func (s *FocusService) transition(ctx context.Context, event string, fn func(*entities.FocusSession, time.Time) (entities.FocusSession, error)) (*entities.FocusSession, error) {
	var session entities.FocusSession
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		next, err := fn(st.Focus, now)
		if err != nil {
			return nil, err
		}
		st.Focus = &next
		session = next.Clone()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Focus session "+event, "session_id", session.ID, "state", session.State())
	return &session, nil
}

// Stop ends the session and books the elapsed whole minutes to the
// statistics and the task
func (s *FocusService) Stop(ctx context.Context) (*ports.FocusResult, error) {
	var result ports.FocusResult
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		minutes, err := entities.StopFocus(st.Focus, now)
		if err != nil {
			return nil, err
		}
		session := st.Focus.Clone()
		session.IsActive = false
		session.IsPaused = false
		st.Focus = nil

		result = ports.FocusResult{Session: session, State: entities.FocusIdle, ElapsedMinutes: minutes}
		return bookFocusTime(st, session.TaskID, minutes, now), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FocusEvent(metrics.FocusStopped)
	s.metrics.FocusMinutes(result.ElapsedMinutes)
	s.logger.Infow("Focus session stopped",
		"session_id", result.Session.ID,
		"task_id", result.Session.TaskID,
		"elapsed_minutes", result.ElapsedMinutes,
	)

	return &result, nil
}

// Tick advances the running session by one tick interval. When the
// countdown runs out the full session length is booked and a break is
// suggested.
func (s *FocusService) Tick(ctx context.Context) (*ports.FocusResult, error) {
	var (
		result   ports.FocusResult
		settings entities.Settings
	)
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		next, fs := entities.TickFocus(st.Focus, s.opts.TickInterval)
		result = ports.FocusResult{Session: next, State: fs}

		switch fs {
		case entities.FocusIdle:
			return nil, nil
		case entities.FocusCompleted:
			st.Focus = nil
			settings = st.Settings
			result.ElapsedMinutes = next.DurationMinutes()
			return bookFocusTime(st, next.TaskID, result.ElapsedMinutes, now), nil
		default:
			st.Focus = &next
			result.Session = next.Clone()
			return nil, nil
		}
	})
	if err != nil {
		return nil, err
	}

	if result.State == entities.FocusCompleted {
		s.completeSession(ctx, result, settings)
	}
	return &result, nil
}

func (s *FocusService) completeSession(ctx context.Context, result ports.FocusResult, settings entities.Settings) {
	s.mu.Lock()
	s.completed++
	suggested := ports.BreakShort
	if s.completed%sessionsUntilLongBreak == 0 {
		suggested = ports.BreakLong
	}
	s.mu.Unlock()

	s.metrics.FocusEvent(metrics.FocusCompleted)
	s.metrics.FocusMinutes(result.ElapsedMinutes)
	s.logger.Infow("Focus session completed",
		"session_id", result.Session.ID,
		"task_id", result.Session.TaskID,
		"minutes", result.ElapsedMinutes,
	)

	if settings.Notifications {
		s.notify(ctx, ports.NotifyFocusComplete, ports.LevelSuccess, "Focus session completed!", map[string]interface{}{
			"sessionId": result.Session.ID,
			"taskId":    result.Session.TaskID,
		})
	}
	s.notify(ctx, ports.NotifyBreakSuggested, ports.LevelInfo,
		fmt.Sprintf("Great! You stayed focused for %d minutes. Time for a break?", result.ElapsedMinutes),
		map[string]interface{}{
			"minutes":           result.ElapsedMinutes,
			"breakMinutes":      settings.BreakDuration,
			"longBreakMinutes":  settings.LongBreakDuration,
			"suggested":         suggested,
			"completedSessions": s.CompletedSessions(),
		})
}

// bookFocusTime adds minutes to the focus statistics and the task. It
// returns the collections to persist.
func bookFocusTime(st *state, taskID string, minutes int, now time.Time) []ports.Collection {
	if minutes <= 0 {
		return nil
	}
	st.Stats.Record(entities.StatFocusTime, minutes, now)
	changed := []ports.Collection{ports.CollectionStats}
	if addActualTime(st, taskID, minutes, now) {
		changed = append(changed, ports.CollectionTasks)
	}
	return changed
}

// AddNote records a note on the session and on its task
func (s *FocusService) AddNote(ctx context.Context, text string) (*entities.SessionNote, error) {
	text, err := requireText("note text", text)
	if err != nil {
		return nil, err
	}

	var note entities.SessionNote
	err = s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		if st.Focus.State() == entities.FocusIdle {
			return nil, entities.ErrNoActiveSession
		}
		note = entities.SessionNote{ID: s.store.newID(), Text: text, Timestamp: now}
		st.Focus.Notes = append(st.Focus.Notes, note)

		i := st.findTask(st.Focus.TaskID)
		if i == -1 {
			return nil, nil
		}
		t := &st.Tasks[i]
		t.Notes = append([]entities.TaskNote{{ID: s.store.newID(), Text: text, CreatedAt: now}}, t.Notes...)
		t.UpdatedAt = now
		return []ports.Collection{ports.CollectionTasks}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debugw("Focus note added", "note_id", note.ID)
	return &note, nil
}

// StartBreak announces a break and notifies again when it is over. A new
// break replaces the pending one.
func (s *FocusService) StartBreak(ctx context.Context, kind ports.BreakKind) (time.Duration, error) {
	var minutes int
	s.store.view(func(st *state) {
		switch kind {
		case ports.BreakLong:
			minutes = st.Settings.LongBreakDuration
		default:
			minutes = st.Settings.BreakDuration
		}
	})
	if kind != ports.BreakShort && kind != ports.BreakLong {
		return 0, fmt.Errorf("%w: unknown break kind %q", entities.ErrValidation, kind)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("%w: break duration must be positive", entities.ErrValidation)
	}
	duration := time.Duration(minutes) * time.Minute

	s.notify(ctx, ports.NotifyBreakStarted, ports.LevelInfo,
		fmt.Sprintf("%d minute break started. Take a rest!", minutes),
		map[string]interface{}{"kind": kind, "minutes": minutes})

	detached := context.WithoutCancel(ctx)
	s.mu.Lock()
	if s.breakTimer != nil {
		s.breakTimer.Stop()
	}
	s.breakTimer = time.AfterFunc(duration, func() {
		s.notify(detached, ports.NotifyBreakOver, ports.LevelSuccess, "Break is over! Ready for the next session?", map[string]interface{}{"kind": kind})
	})
	s.mu.Unlock()

	s.logger.Infow("Break started", "kind", kind, "minutes", minutes)
	return duration, nil
}

// Current returns the session in the slot
func (s *FocusService) Current(ctx context.Context) (*entities.FocusSession, error) {
	var session *entities.FocusSession
	s.store.view(func(st *state) {
		if st.Focus != nil {
			c := st.Focus.Clone()
			session = &c
		}
	})
	if session == nil {
		return nil, entities.ErrNoActiveSession
	}
	return session, nil
}

// CompletedSessions counts sessions that ran to the end since start-up
func (s *FocusService) CompletedSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Run ticks the session until ctx is done
func (s *FocusService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	s.logger.Debugw("Focus ticker started", "interval", s.opts.TickInterval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debugw("Focus ticker stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Errorw("Focus tick failed", "error", err)
			}
		}
	}
}

// Close cancels a pending break notification
func (s *FocusService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.breakTimer != nil {
		s.breakTimer.Stop()
		s.breakTimer = nil
	}
}

func (s *FocusService) notify(ctx context.Context, kind ports.NotificationKind, level ports.NotificationLevel, msg string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, ports.Notification{
		Kind:      kind,
		Level:     level,
		Message:   msg,
		Data:      data,
		CreatedAt: s.store.Now(),
	})
}
