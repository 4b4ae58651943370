package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/infrastructure/metrics"
	"github.com/fokusplaner/core/internal/ports"
)

// state is the in-memory copy of every collection plus the focus slot
type state struct {
	Tasks    []entities.Task
	Notes    []entities.Note
	Groups   []entities.Group
	Settings entities.Settings
	Archive  entities.Archive
	Stats    entities.Stats
	Focus    *entities.FocusSession
}

// Store owns the application state and writes every mutated collection
// through to storage
type Store struct {
	mu      sync.Mutex
	st      state
	storage ports.Storage
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewStore creates a store with empty defaults; call Load before use
func NewStore(storage ports.Storage, log *logger.Logger, m *metrics.Metrics) *Store {
	s := &Store{
		storage: storage,
		logger:  log.WithComponent("store"),
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	s.st = defaultState(s.now())
	return s
}

func defaultState(now time.Time) state {
	return state{
		Tasks:    []entities.Task{},
		Notes:    []entities.Note{},
		Groups:   []entities.Group{entities.DefaultGroup(now)},
		Settings: entities.DefaultSettings(),
		Archive:  entities.Archive{Tasks: []entities.ArchivedTask{}, Notes: []entities.ArchivedNote{}},
		Stats:    entities.NewStats(),
	}
}

// SetClock replaces the time source
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Now returns the current time of the store clock
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// Info describes the storage backend
func (s *Store) Info() ports.StorageInfo {
	return s.storage.Info()
}

// Load reads every collection. Missing collections are initialised with
// defaults and written; unreadable ones fall back to defaults.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := defaultState(s.now())
	s.st = defaultState(s.now())

	var missing []ports.Collection
	for _, c := range ports.Collections {
		found, err := s.readCollection(ctx, c)
		if err != nil {
			s.logger.Errorw("Failed to read collection, using defaults", "collection", c, "error", err)
			s.resetCollection(c, defaults)
			continue
		}
		if !found {
			s.resetCollection(c, defaults)
			missing = append(missing, c)
		}
	}

	if s.validate() {
		missing = appendUnique(missing, ports.CollectionGroups)
	}

	if err := s.persist(ctx, missing...); err != nil {
		return err
	}

	s.logger.Infow("Data loaded",
		"backend", s.storage.Info().Backend,
		"tasks", len(s.st.Tasks),
		"notes", len(s.st.Notes),
		"groups", len(s.st.Groups),
	)
	return nil
}

// Reload re-reads one collection, used after external edits
func (s *Store) Reload(ctx context.Context, c ports.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.readCollection(ctx, c)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if s.validate() {
		return s.persist(ctx, ports.CollectionGroups)
	}
	return nil
}

// readCollection decodes c into the state. It reports false when the
// collection does not exist yet.
func (s *Store) readCollection(ctx context.Context, c ports.Collection) (bool, error) {
	start := time.Now()
	var err error

	switch c {
	case ports.CollectionTasks:
		var v []entities.Task
		if err = s.storage.Read(ctx, c, &v); err == nil {
			s.st.Tasks = v
		}
	case ports.CollectionNotes:
		var v []entities.Note
		if err = s.storage.Read(ctx, c, &v); err == nil {
			s.st.Notes = v
		}
	case ports.CollectionGroups:
		var v []entities.Group
		if err = s.storage.Read(ctx, c, &v); err == nil {
			s.st.Groups = v
		}
	case ports.CollectionSettings:
		v := entities.DefaultSettings()
		if err = s.storage.Read(ctx, c, &v); err == nil {
			s.st.Settings = v
		}
	case ports.CollectionArchive:
		var v entities.Archive
		if err = s.storage.Read(ctx, c, &v); err == nil {
			s.st.Archive = v
		}
	case ports.CollectionStats:
		v := entities.NewStats()
		if err = s.storage.Read(ctx, c, &v); err == nil {
			s.st.Stats = v
		}
	default:
		return false, fmt.Errorf("unknown collection %q", c)
	}

	if errors.Is(err, ports.ErrCollectionNotFound) {
		return false, nil
	}
	s.metrics.StorageOperation("read", string(c), err)
	s.logger.LogStorageOperation("read", string(c), time.Since(start), err)
	return err == nil, err
}

func (s *Store) resetCollection(c ports.Collection, defaults state) {
	switch c {
	case ports.CollectionTasks:
		s.st.Tasks = defaults.Tasks
	case ports.CollectionNotes:
		s.st.Notes = defaults.Notes
	case ports.CollectionGroups:
		s.st.Groups = defaults.Groups
	case ports.CollectionSettings:
		s.st.Settings = defaults.Settings
	case ports.CollectionArchive:
		s.st.Archive = defaults.Archive
	case ports.CollectionStats:
		s.st.Stats = defaults.Stats
	}
}

// validate normalises loaded data and makes sure the default group
// exists. It reports whether the groups had to be repaired.
func (s *Store) validate() bool {
	if s.st.Tasks == nil {
		s.st.Tasks = []entities.Task{}
	}
	for i := range s.st.Tasks {
		s.st.Tasks[i].Normalize()
	}
	if s.st.Notes == nil {
		s.st.Notes = []entities.Note{}
	}
	for i := range s.st.Notes {
		if s.st.Notes[i].Tags == nil {
			s.st.Notes[i].Tags = []string{}
		}
	}
	if s.st.Archive.Tasks == nil {
		s.st.Archive.Tasks = []entities.ArchivedTask{}
	}
	if s.st.Archive.Notes == nil {
		s.st.Archive.Notes = []entities.ArchivedNote{}
	}
	if s.st.Stats.DailyStats == nil {
		s.st.Stats.DailyStats = make(map[string]entities.DailyStats)
	}

	for _, g := range s.st.Groups {
		if g.ID == entities.DefaultGroupID {
			return false
		}
	}
	s.st.Groups = append([]entities.Group{entities.DefaultGroup(s.now())}, s.st.Groups...)
	s.logger.Warnw("Default group was missing and has been restored")
	return true
}

// view runs fn with the state locked. fn must not retain references.
func (s *Store) view(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

// update runs fn with the state locked and persists the collections it
// reports as changed. An error from fn aborts without persisting.
func (s *Store) update(ctx context.Context, fn func(st *state, now time.Time) ([]ports.Collection, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := fn(&s.st, s.now())
	if err != nil {
		return err
	}
	return s.persist(ctx, changed...)
}

// persist writes the given collections. Every collection is attempted;
// failures are logged and returned wrapped in ErrPersist while the
// in-memory state keeps the mutation.
func (s *Store) persist(ctx context.Context, collections ...ports.Collection) error {
	var errs []error
	for _, c := range collections {
		start := time.Now()
		err := s.storage.Write(ctx, c, s.value(c))
		s.metrics.StorageOperation("write", string(c), err)
		s.logger.LogStorageOperation("write", string(c), time.Since(start), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", entities.ErrPersist, errors.Join(errs...))
	}
	return nil
}

func (s *Store) value(c ports.Collection) interface{} {
	switch c {
	case ports.CollectionTasks:
		return s.st.Tasks
	case ports.CollectionNotes:
		return s.st.Notes
	case ports.CollectionGroups:
		return s.st.Groups
	case ports.CollectionSettings:
		return s.st.Settings
	case ports.CollectionArchive:
		return s.st.Archive
	case ports.CollectionStats:
		return s.st.Stats
	default:
		return nil
	}
}

// Snapshot returns a deep copy of every persisted collection
func (s *Store) Snapshot() ports.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := ports.Snapshot{
		Tasks:    cloneTasks(s.st.Tasks),
		Notes:    cloneNotes(s.st.Notes),
		Groups:   append([]entities.Group{}, s.st.Groups...),
		Settings: s.st.Settings,
		Archive: entities.Archive{
			Tasks: make([]entities.ArchivedTask, 0, len(s.st.Archive.Tasks)),
			Notes: make([]entities.ArchivedNote, 0, len(s.st.Archive.Notes)),
		},
		Stats: s.st.Stats,
	}
	for _, at := range s.st.Archive.Tasks {
		snap.Archive.Tasks = append(snap.Archive.Tasks, entities.ArchivedTask{Task: at.Task.Clone(), ArchivedAt: at.ArchivedAt})
	}
	for _, an := range s.st.Archive.Notes {
		snap.Archive.Notes = append(snap.Archive.Notes, entities.ArchivedNote{Note: an.Note.Clone(), ArchivedAt: an.ArchivedAt})
	}
	snap.Stats.DailyStats = make(map[string]entities.DailyStats, len(s.st.Stats.DailyStats))
	for k, v := range s.st.Stats.DailyStats {
		snap.Stats.DailyStats[k] = v
	}
	return snap
}

// Close releases the storage backend
func (s *Store) Close() error {
	return s.storage.Close()
}

func (st *state) findTask(id string) int {
	for i := range st.Tasks {
		if st.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) findNote(id string) int {
	for i := range st.Notes {
		if st.Notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) findGroup(id string) int {
	for i := range st.Groups {
		if st.Groups[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []entities.Task) []entities.Task {
	out := make([]entities.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}

func cloneNotes(notes []entities.Note) []entities.Note {
	out := make([]entities.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Clone())
	}
	return out
}

func appendUnique(list []ports.Collection, c ports.Collection) []ports.Collection {
	for _, existing := range list {
		if existing == c {
			return list
		}
	}
	return append(list, c)
}
