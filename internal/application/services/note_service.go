package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/infrastructure/metrics"
	"github.com/fokusplaner/core/internal/ports"
)

const confirmDeleteNote = "Are you sure you want to delete this note?"

// NoteService handles standalone notes
type NoteService struct {
	store   *Store
	tasks   *TaskService
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewNoteService creates a new note service. Tasks is used for note
// conversion.
func NewNoteService(store *Store, tasks *TaskService, logger *logger.Logger, m *metrics.Metrics) *NoteService {
	return &NoteService{
		store:   store,
		tasks:   tasks,
		logger:  logger.WithComponent("notes"),
		metrics: m,
	}
}

var _ ports.NoteService = (*NoteService)(nil)

// CreateNote creates a note and puts it first
func (s *NoteService) CreateNote(ctx context.Context, req ports.CreateNoteRequest) (*entities.Note, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	req.Tags = cleanTags(req.Tags)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = entities.GenerateNoteTitle(req.Content)
	}

	var created entities.Note
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		created = entities.Note{
			ID:        s.store.newID(),
			Title:     title,
			Content:   req.Content,
			Tags:      append([]string{}, req.Tags...),
			CreatedAt: now,
			UpdatedAt: now,
		}
		st.Notes = append([]entities.Note{created}, st.Notes...)
		st.Stats.Record(entities.StatCreatedNote, 1, now)
		return []ports.Collection{ports.CollectionNotes, ports.CollectionStats}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.NoteCreated()
	s.logger.LogAction("note_created", map[string]interface{}{"note_id": created.ID, "title": created.Title})

	return &created, nil
}

// GetNote retrieves a note by ID
func (s *NoteService) GetNote(ctx context.Context, id string) (*entities.Note, error) {
	var (
		note  entities.Note
		found bool
	)
	s.store.view(func(st *state) {
		if i := st.findNote(id); i != -1 {
			note, found = st.Notes[i].Clone(), true
		}
	})
	if !found {
		return nil, noteNotFound(id)
	}
	return &note, nil
}

// ListNotes returns the notes matching the filter in stored order
func (s *NoteService) ListNotes(ctx context.Context, filter ports.NoteFilter) ([]entities.Note, error) {
	search := strings.TrimSpace(filter.Search)
	notes := []entities.Note{}

	s.store.view(func(st *state) {
		for i := range st.Notes {
			n := &st.Notes[i]
			if filter.Tag != "" && !n.HasTag(filter.Tag) {
				continue
			}
			if filter.Pinned != nil && n.Pinned != *filter.Pinned {
				continue
			}
			if !n.Matches(search) {
				continue
			}
			notes = append(notes, n.Clone())
		}
	})

	return notes, nil
}

// UpdateNote merges the set fields. An emptied title is generated again
// from the content.
func (s *NoteService) UpdateNote(ctx context.Context, id string, req ports.UpdateNoteRequest) (*entities.Note, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		req.Content = &content
	}
	if req.Tags != nil {
		tags := cleanTags(*req.Tags)
		req.Tags = &tags
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated entities.Note
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findNote(id)
		if i == -1 {
			return nil, noteNotFound(id)
		}
		n := &st.Notes[i]
		if req.Content != nil {
			n.Content = *req.Content
		}
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Tags != nil {
			n.Tags = *req.Tags
		}
		if n.Title == "" {
			n.Title = entities.GenerateNoteTitle(n.Content)
		}
		n.UpdatedAt = now
		updated = n.Clone()
		return []ports.Collection{ports.CollectionNotes}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteNote permanently removes a note after confirmation
func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.GetNote(ctx, id); err != nil {
		return err
	}
	if !ports.Confirm(ctx, confirmDeleteNote) {
		return entities.ErrNotConfirmed
	}

	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findNote(id)
		if i == -1 {
			return nil, noteNotFound(id)
		}
		st.Notes = append(st.Notes[:i], st.Notes[i+1:]...)
		return []ports.Collection{ports.CollectionNotes}, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogAction("note_deleted", map[string]interface{}{"note_id": id})
	return nil
}

// TogglePin flips the pin and re-sorts: pinned first, then newest update
func (s *NoteService) TogglePin(ctx context.Context, id string) (*entities.Note, error) {
	var updated entities.Note
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findNote(id)
		if i == -1 {
			return nil, noteNotFound(id)
		}
		st.Notes[i].Pinned = !st.Notes[i].Pinned
		st.Notes[i].UpdatedAt = now
		updated = st.Notes[i].Clone()
		sortNotes(st.Notes)
		return []ports.Collection{ports.CollectionNotes}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func sortNotes(notes []entities.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Pinned != notes[j].Pinned {
			return notes[i].Pinned
		}
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
}

// ArchiveNote moves the note into the archive
func (s *NoteService) ArchiveNote(ctx context.Context, id string) error {
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := st.findNote(id)
		if i == -1 {
			return nil, noteNotFound(id)
		}
		archiveNoteAt(st, i, now)
		return []ports.Collection{ports.CollectionNotes, ports.CollectionArchive}, nil
	})
	if err != nil {
		return err
	}
	s.logger.LogAction("note_archived", map[string]interface{}{"note_id": id})
	return nil
}

func archiveNoteAt(st *state, i int, now time.Time) {
	st.Archive.Notes = append(st.Archive.Notes, entities.ArchivedNote{Note: st.Notes[i], ArchivedAt: now})
	st.Notes = append(st.Notes[:i], st.Notes[i+1:]...)
}

// RestoreNote moves an archived note back to the front of the list
func (s *NoteService) RestoreNote(ctx context.Context, id string) (*entities.Note, error) {
	var restored entities.Note
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := -1
		for j := range st.Archive.Notes {
			if st.Archive.Notes[j].ID == id {
				i = j
				break
			}
		}
		if i == -1 {
			return nil, fmt.Errorf("%w: note %s", entities.ErrArchivedNotFound, id)
		}

		n := st.Archive.Notes[i].Note
		if n.Tags == nil {
			n.Tags = []string{}
		}
		st.Notes = append([]entities.Note{n}, st.Notes...)
		st.Archive.Notes = append(st.Archive.Notes[:i], st.Archive.Notes[i+1:]...)
		restored = n.Clone()
		return []ports.Collection{ports.CollectionNotes, ports.CollectionArchive}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.LogAction("note_restored", map[string]interface{}{"note_id": id})
	return &restored, nil
}

// ConvertToTask creates a task from the note and archives the note
func (s *NoteService) ConvertToTask(ctx context.Context, id, groupID string) (*entities.Task, error) {
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.CreateTask(ctx, ports.CreateTaskRequest{
		Title:       note.Title,
		Description: note.Content,
		GroupID:     groupID,
		Priority:    entities.PriorityMedium,
		Tags:        note.Tags,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ArchiveNote(ctx, id); err != nil {
		return task, err
	}

	s.logger.LogAction("note_converted", map[string]interface{}{"note_id": id, "task_id": task.ID})
	return task, nil
}

func noteNotFound(id string) error {
	return fmt.Errorf("%w: %s", entities.ErrNoteNotFound, id)
}
