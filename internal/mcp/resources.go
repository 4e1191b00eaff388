package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/model"
)

func (s *Server) registerResources() {
	// primeboard://catalog — the ranked metric catalog.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"primeboard://catalog",
			"Metric Catalog",
			mcplib.WithResourceDescription("Every metric that can drive a leaderboard, grouped by stat category"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleCatalog,
	)

	// primeboard://boards/{metric}/{faction} — cached top-N snapshot.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"primeboard://boards/{metric}/{faction}",
			"Cached Leaderboard",
			mcplib.WithTemplateDescription("Top-N snapshot for one metric and faction, rebuilt periodically"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		s.handleBoardResource,
	)
}

type catalogGroup struct {
	Category string               `json:"category"`
	Metrics  []catalog.Descriptor `json:"metrics"`
}

func (s *Server) handleCatalog(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	// Categories appear in the priority order of their best metric.
	seen := make(map[string]bool)
	var groups []catalogGroup
	for _, d := range catalog.Ranked() {
		if seen[d.Category] {
			continue
		}
		seen[d.Category] = true
		groups = append(groups, catalogGroup{
			Category: d.Category,
			Metrics:  catalog.ByCategory(d.Category),
		})
	}

	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal catalog: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "primeboard://catalog",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleBoardResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	rest, ok := strings.CutPrefix(uri, "primeboard://boards/")
	if !ok {
		return nil, fmt.Errorf("mcp: invalid board URI: %s", uri)
	}
	metric, rawFaction, ok := strings.Cut(rest, "/")
	if !ok || metric == "" {
		return nil, fmt.Errorf("mcp: invalid board URI: %s", uri)
	}
	faction, ok := model.ParseFaction(rawFaction)
	if !ok {
		return nil, fmt.Errorf("mcp: unknown faction in URI: %s", rawFaction)
	}

	board, err := s.store.GetBoard(ctx, metric, faction)
	if err != nil {
		return nil, fmt.Errorf("mcp: board %s/%s: %w", metric, faction, err)
	}

	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal board: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
