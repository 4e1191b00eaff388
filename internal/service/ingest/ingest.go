// Package ingest turns pasted export text into stored submissions. It is
// the shared write path behind the HTTP and MCP transports: parse the
// batch, upsert each agent, upsert one submission per recovered line.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/parse"
)

// Store is the storage surface an ingest needs.
type Store interface {
	UpsertAgent(ctx context.Context, name string, faction model.Faction) (model.Agent, error)
	UpsertSubmission(ctx context.Context, sub model.Submission) (model.Submission, error)
}

// Service ingests pasted stat exports.
type Service struct {
	store  Store
	parser *parse.Parser
	logger *slog.Logger
}

// New creates an ingest Service.
func New(store Store, parser *parse.Parser, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, parser: parser, logger: logger}
}

// Ingest parses text and stores one submission per recovered stat line
// under the given audience scope. Per-line failures are reported in the
// result; a storage failure aborts the batch.
func (s *Service) Ingest(ctx context.Context, text, audienceScope string) (model.SubmitResult, error) {
	batch := s.parser.ParseBatch(ctx, text)

	result := model.SubmitResult{Skipped: batch.Skipped}
	for _, rej := range batch.Rejections {
		result.Rejections = append(result.Rejections, model.LineRejection{
			Line:   rej.Line,
			Reason: rej.Reason,
		})
	}
	result.Rejected = len(result.Rejections)

	for _, rec := range batch.Records {
		agent, err := s.store.UpsertAgent(ctx, rec.AgentName, rec.Faction)
		if err != nil {
			return result, fmt.Errorf("ingest: upsert agent %q: %w", rec.AgentName, err)
		}

		// Level and current AP ride in the metrics map so they rank and
		// report like any bag metric.
		metrics := rec.NumericMetrics()
		metrics["level"] = float64(rec.Level)
		metrics["current_ap"] = float64(rec.CurrentAP)

		sub := model.Submission{
			AgentID:       agent.ID,
			AudienceScope: audienceScope,
			TimeWindow:    rec.TimeSpan,
			AP:            rec.LifetimeAP,
			Metrics:       metrics,
			CycleName:     rec.CycleName,
			CyclePoints:   rec.CyclePoints,
		}
		if _, err := s.store.UpsertSubmission(ctx, sub); err != nil {
			return result, fmt.Errorf("ingest: upsert submission for %q: %w", rec.AgentName, err)
		}
		result.Accepted++
	}

	s.logger.Info("batch ingested",
		"accepted", result.Accepted,
		"rejected", result.Rejected,
		"skipped", result.Skipped,
	)
	return result, nil
}
