package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/store"
	"github.com/starford/studyplan/internal/studyservice"
)

const maxJSONBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *studyservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *studyservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pathParam returns a decoded URL parameter, so that names containing
// spaces or slashes can be addressed as %20 / %2F.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListSubjects handles GET /api/subjects.
//
//	@Summary		List subjects in insertion order
//	@Tags			subjects
//	@Produce		json
//	@Success		200	{object}	SubjectListResponse
//	@Router			/subjects [get]
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.Subjects(r.Context())
	if err != nil {
		writeError(w, "list subjects", err)
		return
	}
	writeJSON(w, http.StatusOK, SubjectListResponse{Subjects: subjects})
}

// CreateSubject handles POST /api/subjects.
//
//	@Summary		Add a subject with its topics
//	@Tags			subjects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSubjectRequest	true	"Subject to add"
//	@Success		201		{object}	models.Subject
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/subjects [post]
func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req CreateSubjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	exam, err := models.ParseDate(req.ExamDate)
	if err != nil {
		writeError(w, "create subject", apperr.Invalid("exam_date", "want YYYY-MM-DD, got %q", req.ExamDate))
		return
	}
	diff, ok := models.ParseDifficulty(req.Difficulty)
	if !ok {
		writeError(w, "create subject", apperr.Invalid("difficulty", "must be Easy, Medium or Hard, got %q", req.Difficulty))
		return
	}
	sub, err := h.svc.AddSubject(r.Context(), store.NewSubject{
		Name:       req.Name,
		ExamDate:   exam,
		Difficulty: diff,
		Topics:     req.Topics,
		Color:      req.Color,
	})
	if err != nil {
		writeError(w, "create subject", err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// UpcomingExams handles GET /api/subjects/upcoming.
//
//	@Summary		Subjects with an exam in the next N days
//	@Tags			subjects
//	@Produce		json
//	@Param			days	query		int	false	"Look-ahead window (default 30)"
//	@Success		200		{object}	SubjectListResponse
//	@Router			/subjects/upcoming [get]
func (h *Handler) UpcomingExams(w http.ResponseWriter, r *http.Request) {
	days := studyservice.UpcomingWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, "upcoming", apperr.Invalid("days", "not a number: %q", raw))
			return
		}
		days = n
	}
	subjects, err := h.svc.Upcoming(r.Context(), days)
	if err != nil {
		writeError(w, "upcoming", err)
		return
	}
	writeJSON(w, http.StatusOK, SubjectListResponse{Subjects: subjects})
}

// DeleteSubject handles DELETE /api/subjects/{name}.
//
//	@Summary		Remove a subject, its progress and its plan tasks
//	@Tags			subjects
//	@Param			name	path		string	true	"Subject name"
//	@Success		200		{object}	RemovedResponse
//	@Router			/subjects/{name} [delete]
func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.RemoveSubject(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeError(w, "delete subject", err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{Removed: removed})
}

// UpdateProgress handles PUT /api/subjects/{name}/topics/{topic}/progress.
//
//	@Summary		Set topic completion (clamped to 0..100)
//	@Tags			subjects
//	@Accept			json
//	@Param			name	path	string			true	"Subject name"
//	@Param			topic	path	string			true	"Topic name"
//	@Param			body	body	ProgressRequest	true	"Progress"
//	@Success		204		"Progress updated"
//	@Failure		404		{object}	errResponse
//	@Router			/subjects/{name}/topics/{topic}/progress [put]
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Progress == nil {
		writeError(w, "update progress", apperr.Invalid("progress", "progress is required"))
		return
	}
	if err := h.svc.UpdateProgress(r.Context(), pathParam(r, "name"), pathParam(r, "topic"), *req.Progress); err != nil {
		writeError(w, "update progress", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPlan handles GET /api/plan.
//
//	@Summary		Current plan, optionally with a break timeline
//	@Tags			plan
//	@Produce		json
//	@Param			breaks	query		bool	false	"Include the timeline with breaks"
//	@Success		200		{object}	PlanResponse
//	@Router			/plan [get]
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	withBreaks, _ := strconv.ParseBool(r.URL.Query().Get("breaks"))
	plan, err := h.svc.CurrentPlan(r.Context(), withBreaks)
	if err != nil {
		writeError(w, "get plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// GeneratePlan handles POST /api/plan.
//
//	@Summary		Generate and store today's plan
//	@Tags			plan
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PlanRequest	false	"Plan options; omitted values come from preferences"
//	@Success		201		{object}	PlanResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/plan [post]
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	plan, err := h.svc.GeneratePlan(r.Context(), req)
	if err != nil {
		writeError(w, "generate plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// CompleteTask handles POST /api/plan/tasks/{index}/complete.
//
//	@Summary		Mark the topic of a plan task as complete
//	@Tags			plan
//	@Produce		json
//	@Param			index	path		int	true	"Zero-based task index"
//	@Success		200		{object}	models.StudyTask
//	@Failure		404		{object}	errResponse
//	@Router			/plan/tasks/{index}/complete [post]
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, "complete task", apperr.Invalid("index", "not a number: %q", chi.URLParam(r, "index")))
		return
	}
	task, err := h.svc.CompleteTask(r.Context(), index)
	if err != nil {
		writeError(w, "complete task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetPreferences handles GET /api/preferences.
//
//	@Summary		Saved or default preferences
//	@Tags			preferences
//	@Produce		json
//	@Success		200	{object}	models.Preferences
//	@Router			/preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Preferences(r.Context())
	if err != nil {
		writeError(w, "get preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PutPreferences handles PUT /api/preferences.
//
//	@Summary		Replace preferences
//	@Tags			preferences
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Preferences	true	"Preferences"
//	@Success		200		{object}	models.Preferences
//	@Failure		400		{object}	errResponse
//	@Router			/preferences [put]
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var p models.Preferences
	if !decodeJSON(w, r, &p) {
		return
	}
	saved, err := h.svc.SavePreferences(r.Context(), p)
	if err != nil {
		writeError(w, "save preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Explain handles GET /api/explain.
//
//	@Summary		Explain a topic
//	@Tags			explain
//	@Produce		json
//	@Param			topic	query		string	true	"Topic"
//	@Success		200		{object}	ExplanationResponse
//	@Failure		400		{object}	errResponse
//	@Router			/explain [get]
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	ex, err := h.svc.Explain(r.Context(), r.URL.Query().Get("topic"))
	if err != nil {
		writeError(w, "explain", err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// Dashboard handles GET /api/dashboard.
//
//	@Summary		Headline numbers of the session
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	DashboardResponse
//	@Router			/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func trimmed(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
