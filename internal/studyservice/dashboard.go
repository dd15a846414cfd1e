package studyservice

import (
	"context"

	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/planner"
)

// UpcomingWindowDays is the look-ahead of the dashboard's exam counter.
const UpcomingWindowDays = 30

// Dashboard summarises the session.
type Dashboard struct {
	Subjects       int              `json:"subjects"`
	UpcomingExams  int              `json:"upcoming_exams"`
	PlannedMinutes int              `json:"planned_minutes"`
	Documents      int              `json:"documents"`
	NextExams      []models.Subject `json:"next_exams"`
}

// Dashboard collects the headline numbers.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	subjects, err := s.subjects.ListSubjects(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	upcoming, err := s.subjects.Upcoming(ctx, UpcomingWindowDays)
	if err != nil {
		return Dashboard{}, err
	}
	tasks, err := s.plans.CurrentPlan(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	docs, err := s.documents.ListDocuments(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Subjects:       len(subjects),
		UpcomingExams:  len(upcoming),
		PlannedMinutes: planner.TotalMinutes(tasks),
		Documents:      len(docs),
		NextExams:      nonNilSlice(upcoming[:min(3, len(upcoming))]),
	}, nil
}
