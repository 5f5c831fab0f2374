// Package mcp exposes planning tools to AI agents over the Model Context
// Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gapfill/gapfill/internal/app"
)

// Server serves gapfill tools backed by one App.
type Server struct {
	app     *app.App
	dayPath string
}

// NewServer creates a Server. dayPath is the day file plan_day reads when the
// caller does not name one.
func NewServer(a *app.App, dayPath string) *Server {
	return &Server{app: a, dayPath: dayPath}
}

// MCPServer builds the protocol server with every tool registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	ms := server.NewMCPServer("gapfill", version, server.WithToolCapabilities(true))
	s.RegisterTools(ms)
	return ms
}

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio(version string) error {
	return server.ServeStdio(s.MCPServer(version))
}

// RegisterTools adds the gapfill tools to ms.
func (s *Server) RegisterTools(ms *server.MCPServer) {
	ms.AddTool(mcp.NewTool("plan_day",
		mcp.WithDescription("Plan the day: fit active tasks into the free gaps of a day file and return the schedule."),
		mcp.WithString("day_file", mcp.Description("Path to the TOML day file (defaults to the configured day file)")),
		mcp.WithString("format", mcp.Description("Output format: text, markdown or json (default text)")),
	), s.handlePlanDay)

	ms.AddTool(mcp.NewTool("list_suggestions",
		mcp.WithDescription("List today's suggestions, highest priority first, with need and duration."),
	), s.handleListSuggestions)

	ms.AddTool(mcp.NewTool("add_memo",
		mcp.WithDescription("Add a task. Type is inferred from deadline (deadline) or count/period (routine) when omitted; otherwise backlog."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("type", mcp.Description("deadline, routine or backlog")),
		mcp.WithString("deadline", mcp.Description("Due date: YYYY-MM-DD, YYYY-MM-DD HH:mm or RFC 3339")),
		mcp.WithString("importance", mcp.Description("low, medium or high")),
		mcp.WithString("location", mcp.Description("home, workplace or other")),
		mcp.WithNumber("session_minutes", mcp.Description("Preferred minutes per sitting")),
		mcp.WithNumber("total_minutes", mcp.Description("Expected total minutes of work")),
		mcp.WithNumber("count", mcp.Description("Routine: completions per period")),
		mcp.WithString("period", mcp.Description("Routine: day, week or month")),
	), s.handleAddMemo)

	ms.AddTool(mcp.NewTool("complete_memo",
		mcp.WithDescription("Record a finished session for a task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id or unique id prefix")),
		mcp.WithNumber("minutes", mcp.Description("Minutes worked (default 0)")),
	), s.handleCompleteMemo)

	ms.AddTool(mcp.NewTool("fit_gap",
		mcp.WithDescription("Suggest how to use a single free window of the given length right now."),
		mcp.WithNumber("minutes", mcp.Required(), mcp.Description("Length of the free window in minutes")),
	), s.handleFitGap)
}
