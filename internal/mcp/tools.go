package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/format"
	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/service/rank"
)

func (s *Server) registerTools() {
	// primeboard_submit — ingest pasted stat export text.
	s.mcpServer.AddTool(
		mcplib.NewTool("primeboard_submit",
			mcplib.WithDescription(`Submit pasted Ingress Prime stat export text to the leaderboard.

Paste the raw export exactly as copied from the game, one line per agent
snapshot. An optional header line is understood. Lines that fail to parse
are reported per line; the rest of the paste still lands.

WHAT YOU GET BACK:
- accepted: stat lines stored
- rejected: lines that looked like stats but failed validation
- skipped: lines that were not stat lines at all (chat, blurbs)
- rejections: line number and reason for each rejected line`),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("text",
				mcplib.Description("The raw pasted export text, one stat line per newline"),
				mcplib.Required(),
			),
			mcplib.WithString("audience_scope",
				mcplib.Description("Optional scope label the batch belongs to (e.g. a squad or event name). Empty means global."),
			),
		),
		s.handleSubmit,
	)

	// primeboard_leaderboard — rank current submissions by a metric.
	s.mcpServer.AddTool(
		mcplib.NewTool("primeboard_leaderboard",
			mcplib.WithDescription(`Read a leaderboard computed live from current submissions.

Rows are ordered by the chosen metric descending, ties broken by agent
name. Agents without a value for the metric are excluded from that board.
Unknown metrics fall back to lifetime AP. When metric is omitted but a
window is given, the metric recommended for that window is used. The
response's metric field names the board actually served.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("metric",
				mcplib.Description("Catalog metric id, e.g. ap, xm_collected, portals_captured. Defaults to ap."),
			),
			mcplib.WithString("scope",
				mcplib.Description("Optional audience scope filter"),
			),
			mcplib.WithString("window",
				mcplib.Description("Optional time window filter, e.g. ALL TIME, WEEK, MONTH"),
			),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum rows to return"),
				mcplib.Min(1),
				mcplib.Max(rank.MaxLimit),
				mcplib.DefaultNumber(rank.DefaultLimit),
			),
		),
		s.handleLeaderboard,
	)

	// primeboard_rank — locate one agent on a metric board.
	s.mcpServer.AddTool(
		mcplib.NewTool("primeboard_rank",
			mcplib.WithDescription(`Find one agent's position on a metric board.

Returns the agent's rank, value, and the total number of ranked agents,
computed the same way primeboard_leaderboard computes the full board.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_name",
				mcplib.Description("The agent to locate"),
				mcplib.Required(),
			),
			mcplib.WithString("metric",
				mcplib.Description("Catalog metric id. Defaults to ap."),
			),
		),
		s.handleRank,
	)

	// primeboard_stats — categorized report for one agent.
	s.mcpServer.AddTool(
		mcplib.NewTool("primeboard_stats",
			mcplib.WithDescription(`Render an agent's most recent submission as a categorized stat report.

The report groups metrics by stat category with display units, the way
the in-game profile presents them.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("agent_name",
				mcplib.Description("The agent to report on"),
				mcplib.Required(),
			),
		),
		s.handleStats,
	)
}

func (s *Server) handleSubmit(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	text := request.GetString("text", "")
	scope := request.GetString("audience_scope", "")
	if strings.TrimSpace(text) == "" {
		return errorResult("text is required"), nil
	}
	if len(text) > model.MaxSubmissionBodyLen {
		return errorResult("text exceeds maximum size"), nil
	}

	result, err := s.ingestSvc.Ingest(ctx, text, scope)
	if err != nil {
		return errorResult(fmt.Sprintf("submit failed: %v", err)), nil
	}

	resultData, _ := json.MarshalIndent(result, "", "  ")
	return textResult(string(resultData)), nil
}

func (s *Server) handleLeaderboard(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	q := rank.Query{
		Metric: request.GetString("metric", ""),
		Limit:  request.GetInt("limit", rank.DefaultLimit),
	}
	if scope := request.GetString("scope", ""); scope != "" {
		q.Scope = &scope
	}
	if window := request.GetString("window", ""); window != "" {
		q.Window = &window
		if q.Metric == "" {
			q.Metric = catalog.RecommendedFor(window)
		}
	}

	board, err := s.rankSvc.Leaderboard(ctx, q)
	if err != nil {
		return errorResult(fmt.Sprintf("leaderboard failed: %v", err)), nil
	}

	resultData, _ := json.MarshalIndent(map[string]any{
		"metric": board.Metric,
		"rows":   board.Rows,
		"total":  len(board.Rows),
	}, "", "  ")
	return textResult(string(resultData)), nil
}

func (s *Server) handleRank(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name := request.GetString("agent_name", "")
	if name == "" {
		return errorResult("agent_name is required"), nil
	}
	q := rank.Query{Metric: request.GetString("metric", catalog.DefaultMetric)}

	res, err := s.rankSvc.AgentRank(ctx, name, q)
	if err != nil {
		if errors.Is(err, rank.ErrUnranked) {
			return errorResult(fmt.Sprintf("agent %q is not ranked on this board", name)), nil
		}
		return errorResult(fmt.Sprintf("rank lookup failed: %v", err)), nil
	}

	resultData, _ := json.MarshalIndent(res, "", "  ")
	return textResult(string(resultData)), nil
}

func (s *Server) handleStats(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name := request.GetString("agent_name", "")
	if name == "" {
		return errorResult("agent_name is required"), nil
	}

	agent, err := s.store.GetAgentByName(ctx, name)
	if err != nil {
		return errorResult(fmt.Sprintf("agent %q not found", name)), nil
	}
	sub, err := s.store.LatestSubmissionForAgent(ctx, agent.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("agent %q has no submissions", name)), nil
	}

	rec := format.RecordFromSubmission(agent, sub)
	return textResult(format.CategoryReport(rec)), nil
}
