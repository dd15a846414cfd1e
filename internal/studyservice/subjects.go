package studyservice

import (
	"context"
	"log/slog"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/events"
	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/store"
)

// AddSubject registers a subject.
func (s *Service) AddSubject(ctx context.Context, in store.NewSubject) (models.Subject, error) {
	sub, err := s.subjects.AddSubject(ctx, in)
	if err != nil {
		return models.Subject{}, err
	}
	s.logger.Info("subject added", slog.String("name", sub.Name), slog.Int("topics", len(sub.Topics)))
	s.events.Emit(events.SubjectAdded, sub)
	return sub, nil
}

// RemoveSubject deletes a subject. It reports false, without error, when
// there was nothing to remove.
func (s *Service) RemoveSubject(ctx context.Context, name string) (bool, error) {
	removed, err := s.subjects.RemoveSubject(ctx, name)
	if err != nil || !removed {
		return false, err
	}
	s.logger.Info("subject removed", slog.String("name", name))
	s.events.Emit(events.SubjectRemoved, map[string]string{"name": name})
	return true, nil
}

// UpdateProgress records how much of a topic is done.
func (s *Service) UpdateProgress(ctx context.Context, name, topic string, percent int) error {
	if err := s.subjects.UpdateProgress(ctx, name, topic, percent); err != nil {
		return err
	}
	s.events.Emit(events.ProgressUpdated, map[string]any{
		"subject":  name,
		"topic":    topic,
		"progress": max(0, min(100, percent)),
	})
	return nil
}

// Subjects lists all subjects in the order they were added.
func (s *Service) Subjects(ctx context.Context) ([]models.Subject, error) {
	out, err := s.subjects.ListSubjects(ctx)
	return nonNilSlice(out), err
}

// Subject returns one subject.
func (s *Service) Subject(ctx context.Context, name string) (models.Subject, error) {
	return s.subjects.GetSubject(ctx, name)
}

// Upcoming lists exams within the next days, soonest first.
func (s *Service) Upcoming(ctx context.Context, days int) ([]models.Subject, error) {
	if days < 0 {
		return nil, apperr.Invalid("days", "must not be negative, got %d", days)
	}
	out, err := s.subjects.Upcoming(ctx, days)
	return nonNilSlice(out), err
}
