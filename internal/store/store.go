package store

import (
	"context"
	"time"

	"github.com/starford/studyplan/internal/models"
)

// NewSubject is the input of AddSubject.
type NewSubject struct {
	Name       string
	ExamDate   time.Time
	Difficulty models.Difficulty
	Topics     []string
	// Color is derived from the name when empty.
	Color string
}

// SubjectStore owns subject, topic and progress records.
type SubjectStore interface {
	AddSubject(ctx context.Context, in NewSubject) (models.Subject, error)
	RemoveSubject(ctx context.Context, name string) (bool, error)
	UpdateProgress(ctx context.Context, name, topic string, percent int) error
	GetSubject(ctx context.Context, name string) (models.Subject, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	Upcoming(ctx context.Context, withinDays int) ([]models.Subject, error)
}

// DocumentIndex owns uploaded-document metadata and extracted text.
type DocumentIndex interface {
	InsertDocument(ctx context.Context, d models.Document) error
	DeleteDocument(ctx context.Context, id string) (models.Document, bool, error)
	GetDocument(ctx context.Context, id string) (models.Document, error)
	DocumentByPath(ctx context.Context, path string) (models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	SearchDocuments(ctx context.Context, query string, limit int) ([]models.DocumentHit, error)
}

// PreferencesStore owns the singleton preferences record.
type PreferencesStore interface {
	GetPreferences(ctx context.Context) (models.Preferences, error)
	SavePreferences(ctx context.Context, p models.Preferences) error
}

// PlanStore owns the current plan.
type PlanStore interface {
	ReplacePlan(ctx context.Context, tasks []models.StudyTask) error
	CurrentPlan(ctx context.Context) ([]models.StudyTask, error)
}

// Verify *DB satisfies the store interfaces at compile time.
var (
	_ SubjectStore     = (*DB)(nil)
	_ DocumentIndex    = (*DB)(nil)
	_ PreferencesStore = (*DB)(nil)
	_ PlanStore        = (*DB)(nil)
)
