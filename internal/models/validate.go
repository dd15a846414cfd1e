package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the preference ranges offered by the settings screen.
func (p Preferences) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.DailyGoalHours, validation.Required, validation.Min(1), validation.Max(12)),
		validation.Field(&p.PreferredTimes, validation.Each(validation.In(Morning, Afternoon, Evening, Night))),
		validation.Field(&p.BreakFrequency, validation.Required, validation.In(25, 45, 60, 90)),
		validation.Field(&p.Intensity, validation.Required, validation.In(Light, Moderate, Intensive)),
	)
}
