package ports

import (
	"context"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const ConfirmerContextKey ContextKey = "confirmer"

// Confirmer answers yes/no questions before destructive operations
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// StaticConfirmer always gives the same answer
type StaticConfirmer bool

func (s StaticConfirmer) Confirm(context.Context, string) bool {
	return bool(s)
}

// WithConfirmer stores the confirmer in the context
func WithConfirmer(ctx context.Context, c Confirmer) context.Context {
	return context.WithValue(ctx, ConfirmerContextKey, c)
}

// Confirm asks the confirmer carried by ctx. Without one the answer is no.
func Confirm(ctx context.Context, prompt string) bool {
	c, ok := ctx.Value(ConfirmerContextKey).(Confirmer)
	if !ok || c == nil {
		return false
	}
	return c.Confirm(ctx, prompt)
}

type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

type NotificationKind string

const (
	NotifyMessage        NotificationKind = "message"
	NotifyFocusComplete  NotificationKind = "focus_completed"
	NotifyBreakSuggested NotificationKind = "break_suggested"
	NotifyBreakStarted   NotificationKind = "break_started"
	NotifyBreakOver      NotificationKind = "break_over"
)

// Notification is a user-visible message (toast or prompt)
type Notification struct {
	Kind      NotificationKind       `json:"kind"`
	Level     NotificationLevel      `json:"level"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Notifier surfaces notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}
