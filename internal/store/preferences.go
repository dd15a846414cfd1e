package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/models"
)

// GetPreferences returns the saved preferences, or the defaults when none
// have been saved yet.
func (db *DB) GetPreferences(ctx context.Context) (models.Preferences, error) {
	var (
		p     models.Preferences
		times string
		level string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT daily_goal_hours, preferred_times, break_frequency, intensity FROM preferences WHERE id = 1`,
	).Scan(&p.DailyGoalHours, &times, &p.BreakFrequency, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("store: get preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(times), &p.PreferredTimes); err != nil {
		return models.Preferences{}, fmt.Errorf("store: decode preferred times: %w", err)
	}
	p.Intensity = models.Intensity(level)
	return p, nil
}

// SavePreferences validates and replaces the preferences record.
func (db *DB) SavePreferences(ctx context.Context, p models.Preferences) error {
	if err := p.Validate(); err != nil {
		return apperr.Wrap(apperr.ErrInvalidInput, "preferences", err)
	}
	if p.PreferredTimes == nil {
		p.PreferredTimes = []models.TimeBucket{}
	}
	times, err := json.Marshal(p.PreferredTimes)
	if err != nil {
		return fmt.Errorf("store: encode preferred times: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO preferences (id, daily_goal_hours, preferred_times, break_frequency, intensity)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			daily_goal_hours = excluded.daily_goal_hours,
			preferred_times  = excluded.preferred_times,
			break_frequency  = excluded.break_frequency,
			intensity        = excluded.intensity
	`, p.DailyGoalHours, string(times), p.BreakFrequency, string(p.Intensity))
	if err != nil {
		return fmt.Errorf("store: save preferences: %w", err)
	}
	return nil
}
