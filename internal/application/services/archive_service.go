package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

const (
	confirmDeleteArchived = "Permanently delete this item? This cannot be undone."
	confirmClearArchive   = "Clear the whole archive? All archived items are deleted permanently."
)

// ArchiveService manages archived tasks and notes
type ArchiveService struct {
	store  *Store
	tasks  *TaskService
	notes  *NoteService
	logger *logger.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(store *Store, tasks *TaskService, notes *NoteService, logger *logger.Logger) *ArchiveService {
	return &ArchiveService{
		store:  store,
		tasks:  tasks,
		notes:  notes,
		logger: logger.WithComponent("archive"),
	}
}

var _ ports.ArchiveService = (*ArchiveService)(nil)

// GetArchive returns a copy of the archive
func (s *ArchiveService) GetArchive(ctx context.Context) (*entities.Archive, error) {
	archive := entities.Archive{}
	s.store.view(func(st *state) {
		archive.Tasks = make([]entities.ArchivedTask, 0, len(st.Archive.Tasks))
		for _, at := range st.Archive.Tasks {
			archive.Tasks = append(archive.Tasks, entities.ArchivedTask{Task: at.Task.Clone(), ArchivedAt: at.ArchivedAt})
		}
		archive.Notes = make([]entities.ArchivedNote, 0, len(st.Archive.Notes))
		for _, an := range st.Archive.Notes {
			archive.Notes = append(archive.Notes, entities.ArchivedNote{Note: an.Note.Clone(), ArchivedAt: an.ArchivedAt})
		}
	})
	return &archive, nil
}

// RestoreItem moves an archived task or note back
func (s *ArchiveService) RestoreItem(ctx context.Context, kind ports.ArchiveKind, id string) error {
	switch kind {
	case ports.ArchiveKindTask:
		_, err := s.tasks.RestoreTask(ctx, id)
		return err
	case ports.ArchiveKindNote:
		_, err := s.notes.RestoreNote(ctx, id)
		return err
	default:
		return invalidKind(kind)
	}
}

// DeleteItem permanently removes an archived item after confirmation
func (s *ArchiveService) DeleteItem(ctx context.Context, kind ports.ArchiveKind, id string) error {
	if !kind.IsValid() {
		return invalidKind(kind)
	}

	found := false
	s.store.view(func(st *state) {
		found = archiveIndex(st, kind, id) != -1
	})
	if !found {
		return fmt.Errorf("%w: %s %s", entities.ErrArchivedNotFound, kind, id)
	}
	if !ports.Confirm(ctx, confirmDeleteArchived) {
		return entities.ErrNotConfirmed
	}

	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		i := archiveIndex(st, kind, id)
		if i == -1 {
			return nil, fmt.Errorf("%w: %s %s", entities.ErrArchivedNotFound, kind, id)
		}
		if kind == ports.ArchiveKindTask {
			st.Archive.Tasks = append(st.Archive.Tasks[:i], st.Archive.Tasks[i+1:]...)
		} else {
			st.Archive.Notes = append(st.Archive.Notes[:i], st.Archive.Notes[i+1:]...)
		}
		return []ports.Collection{ports.CollectionArchive}, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogAction("archive_item_deleted", map[string]interface{}{"kind": kind, "id": id})
	return nil
}

// ClearArchive deletes every archived item after confirmation
func (s *ArchiveService) ClearArchive(ctx context.Context) error {
	if !ports.Confirm(ctx, confirmClearArchive) {
		return entities.ErrNotConfirmed
	}

	var tasks, notes int
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		tasks, notes = len(st.Archive.Tasks), len(st.Archive.Notes)
		st.Archive = entities.Archive{Tasks: []entities.ArchivedTask{}, Notes: []entities.ArchivedNote{}}
		return []ports.Collection{ports.CollectionArchive}, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogAction("archive_cleared", map[string]interface{}{"tasks": tasks, "notes": notes})
	return nil
}

func archiveIndex(st *state, kind ports.ArchiveKind, id string) int {
	switch kind {
	case ports.ArchiveKindTask:
		for i := range st.Archive.Tasks {
			if st.Archive.Tasks[i].ID == id {
				return i
			}
		}
	case ports.ArchiveKindNote:
		for i := range st.Archive.Notes {
			if st.Archive.Notes[i].ID == id {
				return i
			}
		}
	}
	return -1
}

func invalidKind(kind ports.ArchiveKind) error {
	return fmt.Errorf("%w: unknown archive kind %q", entities.ErrValidation, kind)
}
