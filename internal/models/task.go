package models

// StudyTask is one entry of a generated plan. Plans are regenerated
// wholesale, never edited in place.
type StudyTask struct {
	Subject   string  `json:"subject"`
	Topic     string  `json:"topic"`
	Duration  int     `json:"duration"`
	Priority  float64 `json:"priority"`
	Reason    string  `json:"reason"`
	Review    bool    `json:"review"`
	DaysUntil int     `json:"days_until"`
}
