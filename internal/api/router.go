// Package api implements the study planner REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/studyplan/internal/studyservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *studyservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Subjects.
	r.Get("/subjects", h.ListSubjects)
	r.Post("/subjects", h.CreateSubject)
	r.Get("/subjects/upcoming", h.UpcomingExams)
	r.Delete("/subjects/{name}", h.DeleteSubject)
	r.Put("/subjects/{name}/topics/{topic}/progress", h.UpdateProgress)

	// Plan.
	r.Get("/plan", h.GetPlan)
	r.Post("/plan", h.GeneratePlan)
	r.Post("/plan/tasks/{index}/complete", h.CompleteTask)

	// Preferences.
	r.Get("/preferences", h.GetPreferences)
	r.Put("/preferences", h.PutPreferences)

	// Documents.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.UploadDocument)
	r.Get("/documents/search", h.SearchDocuments)
	r.Delete("/documents/{id}", h.DeleteDocument)

	r.Get("/explain", h.Explain)
	r.Get("/dashboard", h.Dashboard)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
