package studyservice

import (
	"context"

	"github.com/starford/studyplan/internal/events"
	"github.com/starford/studyplan/internal/models"
)

// Preferences returns the saved or default preferences.
func (s *Service) Preferences(ctx context.Context) (models.Preferences, error) {
	return s.prefs.GetPreferences(ctx)
}

// SavePreferences replaces the preferences.
func (s *Service) SavePreferences(ctx context.Context, p models.Preferences) (models.Preferences, error) {
	p.PreferredTimes = nonNilSlice(p.PreferredTimes)
	if err := s.prefs.SavePreferences(ctx, p); err != nil {
		return models.Preferences{}, err
	}
	s.events.Emit(events.PreferencesUpdated, p)
	return p, nil
}
