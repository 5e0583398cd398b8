// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the production calendar to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/service"
)

const rulesURI = "caseificio://recurrence-rules"

// Server wraps the MCP server with the calendar tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
}

// New creates an MCP server with every tool registered.
func New(svc *service.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Caseificio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("agenda_for_date",
		mcp.WithDescription("List the activities due on a day: protocol steps of productions, "+
			"one-time tasks and recurring tasks, each with its completion state for that day."),
		mcp.WithString("date", mcp.Description("Day as yyyy-MM-dd; defaults to today")),
	), s.agendaForDate)

	s.mcp.AddTool(mcp.NewTool("list_cheese_types",
		mcp.WithDescription("List every cheese type with its colour and production protocol."),
	), s.listCheeseTypes)

	s.mcp.AddTool(mcp.NewTool("monthly_stats",
		mcp.WithDescription("Liters processed and number of productions per month of a year, "+
			"with a per-cheese breakdown."),
		mcp.WithNumber("year", mcp.Description("Calendar year; defaults to the current one")),
	), s.monthlyStats)

	s.mcp.AddTool(mcp.NewTool("toggle_completion",
		mcp.WithDescription("Mark an activity done, or not done, on a day. Recurring activities "+
			"track each occurrence separately."),
		mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity id")),
		mcp.WithString("date", mcp.Description("Occurrence day as yyyy-MM-dd; defaults to today")),
	), s.toggleCompletion)

	s.mcp.AddTool(mcp.NewTool("get_recurrence_rules",
		mcp.WithDescription("Explains when recurring activities fall due. Read it before "+
			"reasoning about future agendas."),
	), s.getRecurrenceRules)

	s.mcp.AddResource(
		mcp.NewResource(rulesURI, "Recurrence Rules",
			mcp.WithResourceDescription("How each recurrence rule decides the days an activity is due."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecurrenceRules,
	)

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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func optionalDate(req mcp.CallToolRequest) (calendar.Date, error) {
	raw := req.GetString("date", "")
	if raw == "" {
		return calendar.Date{}, nil
	}
	return calendar.Parse(raw)
}

func (s *Server) agendaForDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := optionalDate(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, items := s.svc.Agenda(ctx, date)
	return jsonResult(map[string]any{"date": day, "items": items})
}

func (s *Server) listCheeseTypes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListCheeseTypes(ctx))
}

func (s *Server) monthlyStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year := req.GetInt("year", s.svc.Today().Year)
	if year < 1 || year > 9999 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid year %d", year)), nil
	}
	return jsonResult(map[string]any{"year": year, "months": s.svc.MonthlyStats(ctx, year)})
}

func (s *Server) toggleCompletion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("activity_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := optionalDate(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.ToggleCompletion(ctx, id, date)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("activity not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a)
}

func (s *Server) getRecurrenceRules(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecurrenceRules), nil
}

func (s *Server) readRecurrenceRules(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "text/markdown",
			Text:     RecurrenceRules,
		},
	}, nil
}
