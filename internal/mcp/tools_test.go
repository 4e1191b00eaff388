package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/parse"
	"github.com/primeboard/primeboard/internal/service/ingest"
	"github.com/primeboard/primeboard/internal/service/rank"
)

// fakeStore backs every service dependency in these tests.
type fakeStore struct {
	agents map[string]model.Agent
	subs   []model.Submission
	boards map[string]model.CachedBoard
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		agents: make(map[string]model.Agent),
		boards: make(map[string]model.CachedBoard),
	}
}

func (f *fakeStore) UpsertAgent(_ context.Context, name string, faction model.Faction) (model.Agent, error) {
	a, ok := f.agents[name]
	if !ok {
		a = model.Agent{ID: uuid.New(), Name: name}
	}
	a.Faction = faction
	f.agents[name] = a
	return a, nil
}

func (f *fakeStore) UpsertSubmission(_ context.Context, sub model.Submission) (model.Submission, error) {
	sub.SubmittedAt = time.Now()
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeStore) CurrentSubmissions(_ context.Context, _, _ *string) ([]model.AgentSubmission, error) {
	var out []model.AgentSubmission
	for _, sub := range f.subs {
		for _, a := range f.agents {
			if a.ID == sub.AgentID {
				out = append(out, model.AgentSubmission{
					AgentName:   a.Name,
					Faction:     a.Faction,
					AP:          sub.AP,
					Metrics:     sub.Metrics,
					SubmittedAt: sub.SubmittedAt,
				})
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetBoard(_ context.Context, metric string, faction model.Faction) (model.CachedBoard, error) {
	b, ok := f.boards[metric+"/"+string(faction)]
	if !ok {
		return model.CachedBoard{}, errors.New("no board")
	}
	return b, nil
}

func (f *fakeStore) GetAgentByName(_ context.Context, name string) (model.Agent, error) {
	a, ok := f.agents[name]
	if !ok {
		return model.Agent{}, errors.New("no agent")
	}
	return a, nil
}

func (f *fakeStore) LatestSubmissionForAgent(_ context.Context, agentID uuid.UUID) (model.Submission, error) {
	for i := len(f.subs) - 1; i >= 0; i-- {
		if f.subs[i].AgentID == agentID {
			return f.subs[i], nil
		}
	}
	return model.Submission{}, errors.New("no submission")
}

func newTestServer(store *fakeStore) *Server {
	parser := parse.New(nil, nil)
	return New(store, ingest.New(store, parser, nil), rank.New(store, nil), nil)
}

func toolRequest(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// toolText extracts the first TextContent text from a CallToolResult.
func toolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no TextContent found in tool result")
	return ""
}

func TestSubmitToolStoresBatch(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	result, err := srv.handleSubmit(context.Background(), toolRequest("primeboard_submit", map[string]any{
		"text": "ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000\n" +
			"ALL TIME Beta RES 2026-08-30 10:01:00 11 6000 5000",
		"audience_scope": "op-night",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var res model.SubmitResult
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	assert.Equal(t, 2, res.Accepted)
	require.Len(t, store.subs, 2)
	assert.Equal(t, "op-night", store.subs[0].AudienceScope)
}

func TestSubmitToolRequiresText(t *testing.T) {
	srv := newTestServer(newFakeStore())
	result, err := srv.handleSubmit(context.Background(), toolRequest("primeboard_submit", map[string]any{
		"text": "   ",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestLeaderboardToolRanksByMetric(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	_, err := srv.handleSubmit(context.Background(), toolRequest("primeboard_submit", map[string]any{
		"text": "ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000\n" +
			"ALL TIME Beta RES 2026-08-30 10:01:00 11 9000 8000",
	}))
	require.NoError(t, err)

	result, err := srv.handleLeaderboard(context.Background(), toolRequest("primeboard_leaderboard", map[string]any{
		"metric": "ap",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var res struct {
		Metric string                 `json:"metric"`
		Rows   []model.LeaderboardRow `json:"rows"`
		Total  int                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	assert.Equal(t, "ap", res.Metric)
	require.Equal(t, 2, res.Total)
	assert.Equal(t, "Beta", res.Rows[0].AgentName)
}

func TestLeaderboardToolEchoesResolvedMetric(t *testing.T) {
	srv := newTestServer(newFakeStore())
	result, err := srv.handleLeaderboard(context.Background(), toolRequest("primeboard_leaderboard", map[string]any{
		"metric": "no_such_metric",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var res struct {
		Metric string `json:"metric"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	assert.Equal(t, "ap", res.Metric)
}

func TestLeaderboardToolRecommendsMetricForWindow(t *testing.T) {
	srv := newTestServer(newFakeStore())
	result, err := srv.handleLeaderboard(context.Background(), toolRequest("primeboard_leaderboard", map[string]any{
		"window": "DAILY",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var res struct {
		Metric string `json:"metric"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	assert.Equal(t, "hacks", res.Metric)
}

func TestRankToolFindsAgent(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	_, err := srv.handleSubmit(context.Background(), toolRequest("primeboard_submit", map[string]any{
		"text": "ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000\n" +
			"ALL TIME Beta RES 2026-08-30 10:01:00 11 9000 8000",
	}))
	require.NoError(t, err)

	result, err := srv.handleRank(context.Background(), toolRequest("primeboard_rank", map[string]any{
		"agent_name": "Alpha",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var res model.AgentRankResult
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	assert.Equal(t, 2, res.Rank)
	assert.Equal(t, 2, res.Of)
}

func TestRankToolUnrankedAgent(t *testing.T) {
	srv := newTestServer(newFakeStore())
	result, err := srv.handleRank(context.Background(), toolRequest("primeboard_rank", map[string]any{
		"agent_name": "Ghost",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestStatsToolRendersReport(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	_, err := srv.handleSubmit(context.Background(), toolRequest("primeboard_submit", map[string]any{
		"text": "ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000",
	}))
	require.NoError(t, err)

	result, err := srv.handleStats(context.Background(), toolRequest("primeboard_stats", map[string]any{
		"agent_name": "Alpha",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	report := toolText(t, result)
	assert.Contains(t, report, "Alpha (ENL) L10")
	assert.Contains(t, report, "5,000")
}

func TestBoardResourceParsesURI(t *testing.T) {
	store := newFakeStore()
	store.boards["ap/ENL"] = model.CachedBoard{
		Metric:  "ap",
		Faction: model.FactionENL,
		Leaders: []model.BoardEntry{{Rank: 1, AgentName: "Alpha", Value: 5000}},
	}
	srv := newTestServer(store)

	contents, err := srv.handleBoardResource(context.Background(), mcplib.ReadResourceRequest{
		Params: mcplib.ReadResourceParams{URI: "primeboard://boards/ap/enl"},
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text := contents[0].(mcplib.TextResourceContents).Text
	var board model.CachedBoard
	require.NoError(t, json.Unmarshal([]byte(text), &board))
	require.Len(t, board.Leaders, 1)
	assert.Equal(t, "Alpha", board.Leaders[0].AgentName)
}

func TestBoardResourceRejectsBadURI(t *testing.T) {
	srv := newTestServer(newFakeStore())
	_, err := srv.handleBoardResource(context.Background(), mcplib.ReadResourceRequest{
		Params: mcplib.ReadResourceParams{URI: "primeboard://boards/ap"},
	})
	assert.Error(t, err)
}

func TestCatalogResourceGroupsByCategory(t *testing.T) {
	srv := newTestServer(newFakeStore())
	contents, err := srv.handleCatalog(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text := contents[0].(mcplib.TextResourceContents).Text
	var groups []struct {
		Category string `json:"category"`
		Metrics  []struct {
			ID string `json:"id"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &groups))
	require.NotEmpty(t, groups)

	// The core category leads and carries the default metric.
	assert.Equal(t, "core", groups[0].Category)
	assert.Equal(t, "ap", groups[0].Metrics[0].ID)

	seen := make(map[string]bool)
	for _, g := range groups {
		assert.False(t, seen[g.Category], "category %s listed twice", g.Category)
		seen[g.Category] = true
		assert.NotEmpty(t, g.Metrics)
	}
}
