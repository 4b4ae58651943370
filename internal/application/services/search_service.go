package services

import (
	"context"
	"strings"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

// SearchService searches the active data and the archive
type SearchService struct {
	store *Store
}

// NewSearchService creates a new search service
func NewSearchService(store *Store) *SearchService {
	return &SearchService{store: store}
}

var _ ports.SearchService = (*SearchService)(nil)

// Search returns every task and note whose text or tags contain term,
// ignoring case. An empty term finds nothing.
func (s *SearchService) Search(ctx context.Context, term string) (*ports.SearchResults, error) {
	term = strings.TrimSpace(term)
	results := &ports.SearchResults{
		Term:          term,
		Tasks:         []entities.Task{},
		Notes:         []entities.Note{},
		ArchivedTasks: []entities.ArchivedTask{},
		ArchivedNotes: []entities.ArchivedNote{},
	}
	if term == "" {
		return results, nil
	}

	s.store.view(func(st *state) {
		for i := range st.Tasks {
			if st.Tasks[i].Matches(term) {
				results.Tasks = append(results.Tasks, st.Tasks[i].Clone())
			}
		}
		for i := range st.Notes {
			if st.Notes[i].Matches(term) {
				results.Notes = append(results.Notes, st.Notes[i].Clone())
			}
		}
		for _, at := range st.Archive.Tasks {
			if at.Task.Matches(term) {
				results.ArchivedTasks = append(results.ArchivedTasks, entities.ArchivedTask{Task: at.Task.Clone(), ArchivedAt: at.ArchivedAt})
			}
		}
		for _, an := range st.Archive.Notes {
			if an.Note.Matches(term) {
				results.ArchivedNotes = append(results.ArchivedNotes, entities.ArchivedNote{Note: an.Note.Clone(), ArchivedAt: an.ArchivedAt})
			}
		}
	})

	return results, nil
}
