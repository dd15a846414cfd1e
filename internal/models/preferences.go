package models

// Preferences holds the user's scheduling preferences.
type Preferences struct {
	DailyGoalHours int          `json:"daily_goal_hours" yaml:"daily_goal_hours"`
	PreferredTimes []TimeBucket `json:"preferred_times" yaml:"preferred_times"`
	BreakFrequency int          `json:"break_frequency" yaml:"break_frequency"`
	Intensity      Intensity    `json:"intensity" yaml:"intensity"`
}

// DefaultPreferences are used until the user saves their own.
func DefaultPreferences() Preferences {
	return Preferences{
		DailyGoalHours: 4,
		PreferredTimes: []TimeBucket{Morning, Evening},
		BreakFrequency: 45,
		Intensity:      Moderate,
	}
}

// DailyMinutes converts the daily goal to minutes.
func (p Preferences) DailyMinutes() int {
	return p.DailyGoalHours * 60
}
