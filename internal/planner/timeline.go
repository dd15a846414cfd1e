package planner

import "github.com/starford/studyplan/internal/models"

// Slot kinds.
const (
	SlotStudy = "study"
	SlotBreak = "break"
)

// Slot is a span of the day, in minutes from the start of the session.
type Slot struct {
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	// Task indexes the plan for study slots and is -1 for breaks.
	Task int `json:"task"`
}

// Timeline lays tasks out back to back and inserts a break of
// breakMinutes whenever continuous study reaches breakEvery minutes.
// Tasks longer than breakEvery are split across breaks in the timeline
// only; the plan itself is unchanged. A non-positive breakEvery disables
// breaks.
func Timeline(tasks []models.StudyTask, breakEvery, breakMinutes int) []Slot {
	var out []Slot
	clock, studied := 0, 0
	for i, t := range tasks {
		left := t.Duration
		for left > 0 {
			if breakEvery > 0 && studied >= breakEvery {
				if breakMinutes > 0 {
					out = append(out, Slot{Kind: SlotBreak, Start: clock, End: clock + breakMinutes, Task: -1})
					clock += breakMinutes
				}
				studied = 0
			}
			chunk := left
			if breakEvery > 0 {
				chunk = min(left, breakEvery-studied)
			}
			out = append(out, Slot{Kind: SlotStudy, Start: clock, End: clock + chunk, Task: i})
			clock += chunk
			studied += chunk
			left -= chunk
		}
	}
	return out
}
