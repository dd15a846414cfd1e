package planner

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/studyplan/internal/models"
)

// Policy holds the tunable constants of the ranking function.
type Policy struct {
	// UrgencyFloor is the urgency of exams at or beyond HorizonDays.
	UrgencyFloor float64 `yaml:"urgency_floor"`
	// HorizonDays is where linear urgency decay bottoms out.
	HorizonDays int `yaml:"horizon_days"`
	// ReviewFactor scales the priority of completed topics in review mode.
	ReviewFactor float64 `yaml:"review_factor"`
	// BreakMinutes is the length of each break in a plan timeline.
	BreakMinutes int `yaml:"break_minutes"`

	DifficultyWeights DifficultyWeights `yaml:"difficulty_weights"`
	SessionMinutes    SessionMinutes    `yaml:"session_minutes"`
}

// DifficultyWeights maps difficulty to a weight in [0,1].
type DifficultyWeights struct {
	Easy   float64 `yaml:"easy"`
	Medium float64 `yaml:"medium"`
	Hard   float64 `yaml:"hard"`
}

// SessionMinutes is the base per-topic duration for each intensity.
type SessionMinutes struct {
	Light     int `yaml:"light"`
	Moderate  int `yaml:"moderate"`
	Intensive int `yaml:"intensive"`
}

// DefaultPolicy returns the stock ranking constants.
func DefaultPolicy() Policy {
	return Policy{
		UrgencyFloor: 0.1,
		HorizonDays:  30,
		ReviewFactor: 0.3,
		BreakMinutes: 10,
		DifficultyWeights: DifficultyWeights{
			Easy:   0.4,
			Medium: 0.7,
			Hard:   1.0,
		},
		SessionMinutes: SessionMinutes{
			Light:     30,
			Moderate:  60,
			Intensive: 90,
		},
	}
}

// Validate validates the policy.
func (p *Policy) Validate() error {
	if err := validation.ValidateStruct(p,
		validation.Field(&p.UrgencyFloor, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&p.HorizonDays, validation.Required, validation.Min(1)),
		validation.Field(&p.ReviewFactor, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&p.BreakMinutes, validation.Min(0), validation.Max(60)),
	); err != nil {
		return err
	}
	w := &p.DifficultyWeights
	if err := validation.ValidateStruct(w,
		validation.Field(&w.Easy, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&w.Medium, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&w.Hard, validation.Min(0.0), validation.Max(1.0)),
	); err != nil {
		return fmt.Errorf("difficulty_weights: %w", err)
	}
	m := &p.SessionMinutes
	if err := validation.ValidateStruct(m,
		validation.Field(&m.Light, validation.Required, validation.Min(1)),
		validation.Field(&m.Moderate, validation.Required, validation.Min(1)),
		validation.Field(&m.Intensive, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("session_minutes: %w", err)
	}
	return nil
}

// Weight returns the configured weight for d. Unknown values rank as Medium.
func (w DifficultyWeights) Weight(d models.Difficulty) float64 {
	switch d {
	case models.Easy:
		return w.Easy
	case models.Hard:
		return w.Hard
	default:
		return w.Medium
	}
}

// For returns the base duration for intensity i. Unknown values use Moderate.
func (m SessionMinutes) For(i models.Intensity) int {
	switch i {
	case models.Light:
		return m.Light
	case models.Intensive:
		return m.Intensive
	default:
		return m.Moderate
	}
}
