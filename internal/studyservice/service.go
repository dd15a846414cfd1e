// Package studyservice is the session object behind every transport. It
// coordinates the stores, the planner, the explainer and document files,
// and announces changes to a Publisher.
package studyservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/studyplan/internal/explainer"
	"github.com/starford/studyplan/internal/planner"
	"github.com/starford/studyplan/internal/storage"
	"github.com/starford/studyplan/internal/store"
)

// Publisher receives change notifications.
type Publisher interface {
	Emit(kind string, data any)
}

// Deps are the collaborators of a Service. Stores, Files and Planner are
// required.
type Deps struct {
	Subjects    store.SubjectStore
	Documents   store.DocumentIndex
	Preferences store.PreferencesStore
	Plans       store.PlanStore
	Files       storage.Provider
	Planner     *planner.Planner
	// Explainer defaults to the built-in table backed by Documents.
	Explainer *explainer.Explainer
	Events    Publisher
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Service owns one user's study session.
type Service struct {
	subjects  store.SubjectStore
	documents store.DocumentIndex
	prefs     store.PreferencesStore
	plans     store.PlanStore
	files     storage.Provider
	planner   *planner.Planner
	explainer *explainer.Explainer
	events    Publisher
	now       func() time.Time
	logger    *slog.Logger

	// docMu serialises document file and metadata changes so that a
	// reconciliation pass never sees a half-finished upload or removal.
	docMu sync.Mutex
	// undeleted holds paths of removed documents whose file could not be
	// deleted. Reconciliation retries the delete instead of re-registering.
	undeleted map[string]struct{}
}

// New creates a Service from deps.
func New(deps Deps) *Service {
	s := &Service{
		subjects:  deps.Subjects,
		documents: deps.Documents,
		prefs:     deps.Preferences,
		plans:     deps.Plans,
		files:     deps.Files,
		planner:   deps.Planner,
		explainer: deps.Explainer,
		events:    deps.Events,
		now:       deps.Clock,
		logger:    deps.Logger,
		undeleted: make(map[string]struct{}),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.explainer == nil {
		s.explainer = explainer.New(s.logger, explainer.NewTable(nil), explainer.NewDocuments(s.documents))
	}
	return s
}

// Explain describes a topic.
func (s *Service) Explain(ctx context.Context, topic string) (explainer.Explanation, error) {
	return s.explainer.Explain(ctx, topic)
}

type nopPublisher struct{}

func (nopPublisher) Emit(string, any) {}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Today returns the service clock's current time.
func (s *Service) Today() time.Time {
	return s.now()
}
