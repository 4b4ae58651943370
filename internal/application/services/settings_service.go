package services

import (
	"context"
	"time"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// SettingsService manages the user preferences
type SettingsService struct {
	store  *Store
	logger *logger.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store *Store, logger *logger.Logger) *SettingsService {
	return &SettingsService{store: store, logger: logger.WithComponent("settings")}
}

var _ ports.SettingsService = (*SettingsService)(nil)

// GetSettings returns the current settings
func (s *SettingsService) GetSettings(ctx context.Context) (*entities.Settings, error) {
	var settings entities.Settings
	s.store.view(func(st *state) {
		settings = st.Settings
	})
	return &settings, nil
}

// UpdateSettings merges the set fields into the settings
func (s *SettingsService) UpdateSettings(ctx context.Context, req ports.UpdateSettingsRequest) (*entities.Settings, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated entities.Settings
	err := s.store.update(ctx, func(st *state, now time.Time) ([]ports.Collection, error) {
		cur := &st.Settings
		if req.FocusTimer != nil {
			cur.FocusTimer = *req.FocusTimer
		}
		if req.BreakDuration != nil {
			cur.BreakDuration = *req.BreakDuration
		}
		if req.LongBreakDuration != nil {
			cur.LongBreakDuration = *req.LongBreakDuration
		}
		if req.Theme != nil {
			cur.Theme = *req.Theme
		}
		if req.ViewMode != nil {
			cur.ViewMode = *req.ViewMode
		}
		if req.Notifications != nil {
			cur.Notifications = *req.Notifications
		}
		if req.AutoArchive != nil {
			cur.AutoArchive = *req.AutoArchive
		}
		if req.AutoSave != nil {
			cur.AutoSave = *req.AutoSave
		}
		if req.AutoSaveInterval != nil {
			cur.AutoSaveInterval = *req.AutoSaveInterval
		}
		updated = *cur
		return []ports.Collection{ports.CollectionSettings}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Settings updated", "focus_timer", updated.FocusTimer, "view_mode", updated.ViewMode)
	return &updated, nil
}
