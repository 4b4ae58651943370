package services

import (
	"context"
	"time"

	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/infrastructure/metrics"
	"github.com/fokusplaner/core/internal/ports"
)

// Options configure the planner services
type Options struct {
	ArchiveCompletedAfter time.Duration
	RecentLimit           int
	BackupDir             string
	BackupWriter          WriteFileFunc
	TickInterval          time.Duration
	DefaultFocusMinutes   int
	Notifier              ports.Notifier
	Clock                 func() time.Time
	Metrics               *metrics.Metrics
}

// Planner bundles the store and every service built on it
type Planner struct {
	Store    *Store
	Tasks    *TaskService
	Notes    *NoteService
	Groups   *GroupService
	Archive  *ArchiveService
	Focus    *FocusService
	Stats    *StatsService
	Settings *SettingsService
	Search   *SearchService
	Backup   *BackupService
}

// NewPlanner wires the services over storage. Call Load before use.
func NewPlanner(storage ports.Storage, log *logger.Logger, opts Options) *Planner {
	store := NewStore(storage, log, opts.Metrics)
	if opts.Clock != nil {
		store.SetClock(opts.Clock)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier(log)
	}

	tasks := NewTaskService(store, log, opts.Metrics, TaskOptions{
		ArchiveCompletedAfter: opts.ArchiveCompletedAfter,
		RecentLimit:           opts.RecentLimit,
	})
	notes := NewNoteService(store, tasks, log, opts.Metrics)

	return &Planner{
		Store:    store,
		Tasks:    tasks,
		Notes:    notes,
		Groups:   NewGroupService(store, log),
		Archive:  NewArchiveService(store, tasks, notes, log),
		Focus:    NewFocusService(store, notifier, log, opts.Metrics, FocusOptions{TickInterval: opts.TickInterval, DefaultMinutes: opts.DefaultFocusMinutes}),
		Stats:    NewStatsService(store),
		Settings: NewSettingsService(store, log),
		Search:   NewSearchService(store),
		Backup:   NewBackupService(store, log, opts.BackupDir, opts.BackupWriter),
	}
}

// Load reads all collections from storage
func (p *Planner) Load(ctx context.Context) error {
	return p.Store.Load(ctx)
}

// Close stops pending timers and releases the storage
func (p *Planner) Close() error {
	p.Tasks.Close()
	p.Focus.Close()
	return p.Store.Close()
}

// LogNotifier writes notifications to the log
func LogNotifier(log *logger.Logger) ports.Notifier {
	l := log.WithComponent("notifications")
	return ports.NotifierFunc(func(_ context.Context, n ports.Notification) {
		l.Infow(n.Message, "kind", n.Kind, "level", n.Level)
	})
}
