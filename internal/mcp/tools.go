package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gapfill/gapfill/internal/dayfile"
	"github.com/gapfill/gapfill/internal/export"
	"github.com/gapfill/gapfill/internal/memo"
	"github.com/gapfill/gapfill/internal/store"
)

func (s *Server) handlePlanDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("day_file", s.dayPath)
	if path == "" {
		return mcp.NewToolResultError("no day file configured; pass day_file"), nil
	}
	format := req.GetString("format", "text")
	exp, ok := export.Get(format)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid format %q (valid: %s)", format, strings.Join(export.ValidFormats(), ", "))), nil
	}

	day, err := dayfile.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	plan, err := s.app.Plan(ctx, day, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to plan: %v", err)), nil
	}
	text, err := exp.Export(export.ExportData{Date: day.Date, Plan: plan})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render plan: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListSuggestions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sugs, _, err := s.app.Suggestions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to score tasks: %v", err)), nil
	}
	if len(sugs) == 0 {
		return mcp.NewToolResultText("No suggestions right now."), nil
	}

	var b strings.Builder
	for _, sg := range sugs {
		marker := ""
		if sg.Mandatory() {
			marker = " [due]"
		}
		fmt.Fprintf(&b, "- %s (%s, need %.2f, %d-%d min, id %s)%s\n",
			sg.Title, sg.Type, sg.Need, sg.Floor(), sg.Duration, sg.MemoID, marker)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleAddMemo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}

	m, err := s.app.Add(memo.Draft{
		Title:      title,
		Type:       req.GetString("type", ""),
		Deadline:   req.GetString("deadline", ""),
		Importance: req.GetString("importance", ""),
		Location:   req.GetString("location", ""),
		Session:    req.GetInt("session_minutes", 0),
		Total:      req.GetInt("total_minutes", 0),
		Count:      req.GetInt("count", 0),
		Period:     req.GetString("period", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add task: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added %s task %q (id: %s)", m.Type, m.Title, m.ID)), nil
}

func (s *Server) handleCompleteMemo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	minutes := req.GetInt("minutes", 0)
	if minutes < 0 {
		return mcp.NewToolResultError("minutes must not be negative"), nil
	}

	m, err := s.app.Record(id, store.ActivityComplete, minutes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete task: %v", err)), nil
	}
	msg := fmt.Sprintf("Logged %d min on %q (%d min total).", minutes, m.Title, m.Status.TimeSpentMinutes)
	if !m.Active() {
		msg += " Task is now completed."
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleFitGap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes, err := req.RequireInt("minutes")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: minutes"), nil
	}
	allocs, _, err := s.app.FitGap(ctx, minutes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fit gap: %v", err)), nil
	}
	if len(allocs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Nothing fits in %d minutes.", minutes)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "In the next %d minutes:\n", minutes)
	for _, a := range allocs {
		fmt.Fprintf(&b, "- %s: %d min\n", a.Suggestion.Title, a.Minutes)
	}
	return mcp.NewToolResultText(b.String()), nil
}
