package terminal

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

type tickMsg time.Time

type sessionMsg struct {
	session *entities.FocusSession
	err     error
}

type stoppedMsg struct {
	result *ports.FocusResult
	err    error
}

// FocusModel drives a running focus session in the terminal
type FocusModel struct {
	ctx            context.Context
	focus          ports.FocusService
	renderer       *Renderer
	task           *entities.Task
	interval       time.Duration
	defaultMinutes int

	session  *entities.FocusSession
	result   *ports.FocusResult
	err      error
	quitting bool
}

// NewFocusModel wraps an already started session. The model calls Tick
// every interval, so the service must not run its own ticker meanwhile.
func NewFocusModel(ctx context.Context, focus ports.FocusService, renderer *Renderer, task *entities.Task, session *entities.FocusSession, interval time.Duration, defaultMinutes int) FocusModel {
	if interval <= 0 {
		interval = time.Second
	}
	return FocusModel{
		ctx:            ctx,
		focus:          focus,
		renderer:       renderer,
		task:           task,
		interval:       interval,
		defaultMinutes: defaultMinutes,
		session:        session,
	}
}

// Result is set once the session completed or was stopped
func (m FocusModel) Result() *ports.FocusResult {
	return m.result
}

func (m FocusModel) Err() error {
	return m.err
}

func (m FocusModel) Init() tea.Cmd {
	return m.tick()
}

func (m FocusModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch typed.String() {
		case " ", "p":
			return m, m.toggle()
		case "s", "q", "ctrl+c":
			return m, m.stop()
		}
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		res, err := m.focus.Tick(m.ctx)
		if err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		switch res.State {
		case entities.FocusCompleted:
			m.result = res
			m.session = nil
			m.quitting = true
			return m, tea.Quit
		case entities.FocusIdle:
			// stopped elsewhere
			m.session = nil
			m.quitting = true
			return m, tea.Quit
		}
		session := res.Session
		m.session = &session
		return m, m.tick()
	case sessionMsg:
		if typed.err != nil {
			m.err = typed.err
			return m, nil
		}
		m.err = nil
		m.session = typed.session
		return m, nil
	case stoppedMsg:
		m.quitting = true
		if typed.err != nil && !errors.Is(typed.err, entities.ErrNoActiveSession) {
			m.err = typed.err
		}
		m.result = typed.result
		m.session = nil
		return m, tea.Quit
	}
	return m, nil
}

func (m FocusModel) toggle() tea.Cmd {
	return func() tea.Msg {
		session, err := m.focus.Toggle(m.ctx)
		return sessionMsg{session: session, err: err}
	}
}

func (m FocusModel) stop() tea.Cmd {
	return func() tea.Msg {
		res, err := m.focus.Stop(m.ctx)
		return stoppedMsg{result: res, err: err}
	}
}

func (m FocusModel) View() string {
	if m.quitting {
		return ""
	}
	out := m.renderer.Focus(view.NewFocusView(m.session, m.task, m.defaultMinutes))
	if m.err != nil {
		out += "\n" + m.renderer.styles.Error.Render(m.err.Error())
	}
	return out + "\n" + m.renderer.styles.Muted.Render("space pause/resume · s stop · q quit")
}
