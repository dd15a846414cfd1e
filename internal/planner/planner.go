// Package planner ranks study topics by exam urgency and difficulty and
// packs them into a daily time budget.
//
// Generation is a pure function of its inputs: the same subjects, request
// and date always yield the same plan.
package planner

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/models"
)

// Request holds the per-invocation knobs of Generate.
type Request struct {
	AvailableMinutes int
	// FocusSubject restricts candidates to one subject when non-empty.
	FocusSubject  string
	Intensity     models.Intensity
	IncludeReview bool
}

// Planner generates study plans under a fixed Policy.
type Planner struct {
	policy Policy
}

// New creates a Planner.
func New(policy Policy) *Planner {
	return &Planner{policy: policy}
}

// Policy returns the planner's ranking constants.
func (p *Planner) Policy() Policy {
	return p.policy
}

// Urgency maps days until an exam to [floor, 1]: 1 for exams today or
// past, linear decay to the floor at the horizon, floor beyond.
func (p *Planner) Urgency(days int) float64 {
	floor := p.policy.UrgencyFloor
	horizon := p.policy.HorizonDays
	switch {
	case days <= 0:
		return 1.0
	case days >= horizon:
		return floor
	}
	return 1.0 - (1.0-floor)*float64(days)/float64(horizon)
}

// Priority blends urgency with the subject's difficulty weight.
func (p *Planner) Priority(days int, d models.Difficulty) float64 {
	w := p.policy.DifficultyWeights.Weight(d)
	return clamp01(p.Urgency(days) * (0.5 + 0.5*w))
}

type candidate struct {
	task     models.StudyTask
	position int
}

// Generate builds an ordered plan for today.
func (p *Planner) Generate(subjects []models.Subject, req Request, today time.Time) ([]models.StudyTask, error) {
	if len(subjects) == 0 && req.FocusSubject == "" {
		return nil, apperr.New(apperr.ErrEmptyInput, "subjects", "add at least one subject before generating a plan")
	}
	if req.AvailableMinutes <= 0 {
		return nil, apperr.Invalid("available_minutes", "must be positive, got %d", req.AvailableMinutes)
	}

	pool := subjects
	if req.FocusSubject != "" {
		i := slices.IndexFunc(subjects, func(s models.Subject) bool { return s.Name == req.FocusSubject })
		if i < 0 {
			return nil, apperr.NotFound("focus_subject", req.FocusSubject)
		}
		pool = subjects[i : i+1]
	}

	duration := min(p.policy.SessionMinutes.For(req.Intensity), req.AvailableMinutes)

	var cands []candidate
	for _, s := range pool {
		days := s.DaysUntil(today)
		base := p.Priority(days, s.Difficulty)
		for pos, t := range s.Topics {
			task := models.StudyTask{
				Subject:   s.Name,
				Topic:     t.Name,
				Duration:  duration,
				DaysUntil: days,
			}
			if t.Complete() {
				if !req.IncludeReview {
					continue
				}
				task.Review = true
				task.Priority = round4(base * p.policy.ReviewFactor)
			} else {
				task.Priority = round4(base)
			}
			task.Reason = reason(days, s.Difficulty, t, task.Review)
			cands = append(cands, candidate{task: task, position: pos})
		}
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(b.task.Priority, a.task.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(a.task.DaysUntil, b.task.DaysUntil); c != 0 {
			return c
		}
		if c := cmp.Compare(a.task.Subject, b.task.Subject); c != 0 {
			return c
		}
		return cmp.Compare(a.position, b.position)
	})

	remaining := req.AvailableMinutes
	plan := make([]models.StudyTask, 0, len(cands))
	for _, c := range cands {
		if remaining <= 0 {
			break
		}
		if c.task.Duration > remaining {
			continue
		}
		plan = append(plan, c.task)
		remaining -= c.task.Duration
	}
	return plan, nil
}

// TotalMinutes sums the durations of a plan.
func TotalMinutes(tasks []models.StudyTask) int {
	total := 0
	for _, t := range tasks {
		total += t.Duration
	}
	return total
}

func reason(days int, d models.Difficulty, t models.Topic, review bool) string {
	var when string
	switch {
	case days == 0:
		when = "exam today"
	case days == 1:
		when = "exam tomorrow"
	case days < 0:
		when = fmt.Sprintf("exam was %d days ago", -days)
	default:
		when = fmt.Sprintf("exam in %d days", days)
	}
	if review {
		return fmt.Sprintf("review session: %s, topic already complete", when)
	}
	s := fmt.Sprintf("%s, %s subject", when, d)
	if t.Progress > 0 {
		s += fmt.Sprintf(", %d%% done", t.Progress)
	}
	return s
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
