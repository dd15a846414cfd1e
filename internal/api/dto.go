package api

import (
	"github.com/starford/studyplan/internal/explainer"
	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/studyservice"
)

// CreateSubjectRequest is the request body for adding a subject.
type CreateSubjectRequest struct {
	Name       string   `json:"name" example:"Math" validate:"required"`
	ExamDate   string   `json:"exam_date" example:"2025-06-15" validate:"required"`
	Difficulty string   `json:"difficulty" example:"Hard" validate:"required"`
	Topics     []string `json:"topics" example:"Calculus,Algebra"`
	Color      string   `json:"color,omitempty" example:"#4F46E5"`
}

// ProgressRequest is the request body for updating topic progress.
type ProgressRequest struct {
	Progress *int `json:"progress" example:"40" validate:"required"`
}

// SubjectListResponse wraps subject listings.
type SubjectListResponse struct {
	Subjects []models.Subject `json:"subjects" validate:"required"`
}

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []models.Document `json:"documents" validate:"required"`
}

// SearchResponse wraps document search hits.
type SearchResponse struct {
	Results []models.DocumentHit `json:"results" validate:"required"`
}

// RemovedResponse reports whether a delete found something to remove.
type RemovedResponse struct {
	Removed bool `json:"removed"`
}

// PlanRequest is the request body for generating a plan (aliased from the service layer).
type PlanRequest = studyservice.PlanRequest

// PlanResponse is the current plan (aliased from the service layer).
type PlanResponse = studyservice.Plan

// DashboardResponse is the session summary (aliased from the service layer).
type DashboardResponse = studyservice.Dashboard

// ExplanationResponse is a topic explanation (aliased from the explainer).
type ExplanationResponse = explainer.Explanation
