package studyservice

import (
	"context"
	"log/slog"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/events"
	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/planner"
)

// PlanRequest asks for a new plan. Zero AvailableMinutes and an empty
// Intensity are taken from the saved preferences.
type PlanRequest struct {
	AvailableMinutes int              `json:"available_minutes"`
	FocusSubject     string           `json:"focus_subject,omitempty"`
	Intensity        models.Intensity `json:"intensity,omitempty"`
	IncludeReview    bool             `json:"include_review"`
}

// Plan is the current ordered task list.
type Plan struct {
	Tasks        []models.StudyTask `json:"tasks"`
	TotalMinutes int                `json:"total_minutes"`
	Timeline     []planner.Slot     `json:"timeline,omitempty"`
}

// GeneratePlan builds a plan for today and makes it the current plan.
func (s *Service) GeneratePlan(ctx context.Context, req PlanRequest) (Plan, error) {
	prefs, err := s.prefs.GetPreferences(ctx)
	if err != nil {
		return Plan{}, err
	}
	if req.AvailableMinutes == 0 {
		req.AvailableMinutes = prefs.DailyMinutes()
	}
	if req.Intensity == "" {
		req.Intensity = prefs.Intensity
	} else if iv, ok := models.ParseIntensity(string(req.Intensity)); ok {
		req.Intensity = iv
	} else {
		return Plan{}, apperr.Invalid("intensity", "must be Light, Moderate or Intensive, got %q", req.Intensity)
	}

	subjects, err := s.subjects.ListSubjects(ctx)
	if err != nil {
		return Plan{}, err
	}
	tasks, err := s.planner.Generate(subjects, planner.Request{
		AvailableMinutes: req.AvailableMinutes,
		FocusSubject:     req.FocusSubject,
		Intensity:        req.Intensity,
		IncludeReview:    req.IncludeReview,
	}, s.now())
	if err != nil {
		return Plan{}, err
	}
	if err := s.plans.ReplacePlan(ctx, tasks); err != nil {
		return Plan{}, err
	}

	plan := Plan{Tasks: nonNilSlice(tasks), TotalMinutes: planner.TotalMinutes(tasks)}
	s.logger.Info("plan generated",
		slog.Int("tasks", len(plan.Tasks)),
		slog.Int("minutes", plan.TotalMinutes),
		slog.Int("budget", req.AvailableMinutes),
	)
	s.events.Emit(events.PlanGenerated, map[string]int{"tasks": len(plan.Tasks), "total_minutes": plan.TotalMinutes})
	return plan, nil
}

// CurrentPlan returns the last generated plan. withBreaks adds a timeline
// with breaks at the preferred break frequency.
func (s *Service) CurrentPlan(ctx context.Context, withBreaks bool) (Plan, error) {
	tasks, err := s.plans.CurrentPlan(ctx)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Tasks: nonNilSlice(tasks), TotalMinutes: planner.TotalMinutes(tasks)}
	if withBreaks {
		prefs, err := s.prefs.GetPreferences(ctx)
		if err != nil {
			return Plan{}, err
		}
		plan.Timeline = nonNilSlice(planner.Timeline(tasks, prefs.BreakFrequency, s.planner.Policy().BreakMinutes))
	}
	return plan, nil
}

// CompleteTask marks the topic of the index-th current task as done.
func (s *Service) CompleteTask(ctx context.Context, index int) (models.StudyTask, error) {
	tasks, err := s.plans.CurrentPlan(ctx)
	if err != nil {
		return models.StudyTask{}, err
	}
	if index < 0 || index >= len(tasks) {
		return models.StudyTask{}, apperr.New(apperr.ErrNotFound, "task", "plan has %d tasks, no task %d", len(tasks), index)
	}
	task := tasks[index]
	if err := s.UpdateProgress(ctx, task.Subject, task.Topic, 100); err != nil {
		return models.StudyTask{}, err
	}
	return task, nil
}
