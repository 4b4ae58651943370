package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

// StatsService exposes the usage statistics
type StatsService struct {
	store *Store
}

// NewStatsService creates a new stats service
func NewStatsService(store *Store) *StatsService {
	return &StatsService{store: store}
}

var _ ports.StatsService = (*StatsService)(nil)

// GetStats returns a copy of the lifetime and daily counters
func (s *StatsService) GetStats(ctx context.Context) (*entities.Stats, error) {
	var stats entities.Stats
	s.store.view(func(st *state) {
		stats = st.Stats
		stats.DailyStats = make(map[string]entities.DailyStats, len(st.Stats.DailyStats))
		for k, v := range st.Stats.DailyStats {
			stats.DailyStats[k] = v
		}
	})
	return &stats, nil
}

// TodayStats returns the counters of the current local day
func (s *StatsService) TodayStats(ctx context.Context) (*entities.DailyStats, error) {
	now := s.store.Now()
	var day entities.DailyStats
	s.store.view(func(st *state) {
		day = st.Stats.Day(now)
	})
	return &day, nil
}

// Record adds value to a counter
func (s *StatsService) Record(ctx context.Context, kind entities.StatKind, value int) error {
	switch kind {
	case entities.StatFocusTime, entities.StatCompletedTask, entities.StatCreatedNote:
	default:
		return fmt.Errorf("%w: unknown statistic %q", entities.ErrValidation, kind)
	}
	return s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		st.Stats.Record(kind, value, now)
		return []ports.Collection{ports.CollectionStats}, nil
	})
}
