// Package mcpserver exposes the study planner as MCP (Model Context
// Protocol) tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/studyservice"
)

// Server wraps the MCP server with study-planner tools.
type Server struct {
	mcp *server.MCPServer
	svc *studyservice.Service
}

// New creates an MCP server with all tools registered.
func New(svc *studyservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Studyplan",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_subjects",
		mcp.WithDescription("List all subjects with exam dates, difficulty and per-topic progress."),
	), s.listSubjects)

	s.mcp.AddTool(mcp.NewTool("upcoming_exams",
		mcp.WithDescription("List exams within the next N days, soonest first."),
		mcp.WithNumber("days", mcp.Description("Look-ahead window in days (default 30)")),
	), s.upcomingExams)

	s.mcp.AddTool(mcp.NewTool("generate_plan",
		mcp.WithDescription("Generate today's study plan ranked by exam urgency and difficulty. "+
			"Replaces the current plan. Omitted values come from the saved preferences."),
		mcp.WithNumber("available_minutes", mcp.Description("Time budget in minutes")),
		mcp.WithString("focus_subject", mcp.Description("Only plan topics of this subject")),
		mcp.WithString("intensity", mcp.Description("Light, Moderate or Intensive")),
		mcp.WithBoolean("include_review", mcp.Description("Also schedule completed topics for review")),
	), s.generatePlan)

	s.mcp.AddTool(mcp.NewTool("explain_topic",
		mcp.WithDescription("Explain a study topic from the knowledge table or uploaded documents."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic to explain")),
	), s.explainTopic)

	s.mcp.AddTool(mcp.NewTool("update_progress",
		mcp.WithDescription("Set how much of a topic is done, 0 to 100 percent."),
		mcp.WithString("subject", mcp.Required(), mcp.Description("Subject name")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic name")),
		mcp.WithNumber("progress", mcp.Required(), mcp.Description("Percent complete")),
	), s.updateProgress)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through uploaded study materials."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listSubjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjects, err := s.svc.Subjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(subjects)
}

func (s *Server) upcomingExams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjects, err := s.svc.Upcoming(ctx, req.GetInt("days", studyservice.UpcomingWindowDays))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type exam struct {
		Subject   string `json:"subject"`
		ExamDate  string `json:"exam_date"`
		DaysUntil int    `json:"days_until"`
	}
	today := models.DateOf(s.svc.Today())
	out := make([]exam, len(subjects))
	for i, sub := range subjects {
		out[i] = exam{
			Subject:   sub.Name,
			ExamDate:  sub.ExamDate.Format(models.DateLayout),
			DaysUntil: sub.DaysUntil(today),
		}
	}
	return jsonResult(out)
}

func (s *Server) generatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := s.svc.GeneratePlan(ctx, studyservice.PlanRequest{
		AvailableMinutes: req.GetInt("available_minutes", 0),
		FocusSubject:     req.GetString("focus_subject", ""),
		Intensity:        models.Intensity(req.GetString("intensity", "")),
		IncludeReview:    req.GetBool("include_review", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(plan)
}

func (s *Server) explainTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ex, err := s.svc.Explain(ctx, topic)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(ex.Text), nil
}

func (s *Server) updateProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, err := req.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	progress, err := req.RequireInt("progress")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.UpdateProgress(ctx, subject, topic, progress); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s / %s = %d%%", subject, topic, max(0, min(100, progress)))), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchDocuments(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
