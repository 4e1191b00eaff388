package parse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/telemetry"
)

// Parser turns pasted export text into validated stat records. Strategies
// are tried in order per line; the first hit wins. A shared CycleStore
// threads the active cycle name across lines and batches.
type Parser struct {
	cycles CycleStore
	logger *slog.Logger

	linesParsed   metric.Int64Counter
	linesRejected metric.Int64Counter
}

// Rejection describes a line that looked like a stat line but failed
// validation. Lines that never matched any strategy are skipped silently.
type Rejection struct {
	Line   int
	Reason string
}

// BatchResult is the outcome of parsing one paste.
type BatchResult struct {
	Records    []*model.StatRecord
	Rejections []Rejection
	Skipped    int
}

// New creates a Parser backed by the given cycle store.
func New(cycles CycleStore, logger *slog.Logger) *Parser {
	if cycles == nil {
		cycles = NewMemoryCycleStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	meter := telemetry.Meter("primeboard/parse")
	parsed, _ := meter.Int64Counter("primeboard.parse.lines_parsed",
		metric.WithDescription("Stat lines successfully parsed"),
	)
	rejected, _ := meter.Int64Counter("primeboard.parse.lines_rejected",
		metric.WithDescription("Stat lines rejected during validation"),
	)
	return &Parser{
		cycles:        cycles,
		logger:        logger,
		linesParsed:   parsed,
		linesRejected: rejected,
	}
}

// ParseLine parses a single line with the default strategy order and no
// header context.
func (p *Parser) ParseLine(ctx context.Context, line string) (*model.StatRecord, error) {
	res := p.ParseBatch(ctx, line)
	if len(res.Records) == 1 {
		return res.Records[0], nil
	}
	if len(res.Rejections) > 0 {
		return nil, fmt.Errorf("parse: %s", res.Rejections[0].Reason)
	}
	return nil, ErrNotAStatLine
}

// ParseBatch parses every line of a paste. A leading header line primes the
// header strategy for the rest of the batch. Bad lines are recorded and the
// batch continues; a paste never fails as a whole.
func (p *Parser) ParseBatch(ctx context.Context, text string) *BatchResult {
	res := &BatchResult{}
	strategies := []Strategy{
		&semanticStrategy{},
		newFixedWidthStrategy(),
	}
	var header *headerStrategy

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header == nil && looksLikeHeader(line) {
			header = newHeaderStrategy(line)
			continue
		}

		rec, reason := p.parseOne(line, strategies, header)
		if rec == nil {
			if reason == "" {
				res.Skipped++
				continue
			}
			res.Rejections = append(res.Rejections, Rejection{Line: lineNo, Reason: reason})
			p.linesRejected.Add(ctx, 1)
			p.logger.Warn("stat line rejected", "line", lineNo, "reason", reason)
			continue
		}

		if err := p.threadCycle(ctx, rec); err != nil {
			p.logger.Warn("cycle store unavailable", "error", err)
		}
		res.Records = append(res.Records, rec)
		p.linesParsed.Add(ctx, 1)
	}
	return res
}

// parseOne runs the strategy chain for a single line. An empty reason with a
// nil record means no strategy recognized the line at all.
func (p *Parser) parseOne(line string, strategies []Strategy, header *headerStrategy) (*model.StatRecord, string) {
	chain := strategies
	if header != nil {
		chain = append([]Strategy{strategies[0], strategies[1]}, header)
	}
	// First strategy that both parses and validates wins. A strategy that
	// recognizes the shape but produces an invalid record yields to the
	// next one; its failure only surfaces when every strategy declines.
	reason := ""
	for _, s := range chain {
		rec, err := s.TryParse(line)
		if err != nil {
			if !errors.Is(err, errStrategyMiss) && reason == "" {
				reason = err.Error()
			}
			continue
		}
		if err := finalize(rec); err != nil {
			p.logger.Debug("validation failed", "strategy", s.Name(), "error", err)
			if reason == "" {
				reason = err.Error()
			}
			continue
		}
		return rec, ""
	}
	return nil, reason
}

// threadCycle resolves the record's cycle attribution. Explicit cycle tokens
// update the store so later lines and batches inherit the name; lines
// without one inherit the stored name with no points.
func (p *Parser) threadCycle(ctx context.Context, rec *model.StatRecord) error {
	if rec.CycleExplicit && rec.CycleName != nil {
		return p.cycles.Set(ctx, *rec.CycleName)
	}
	if rec.CycleName == nil {
		name, err := p.cycles.Get(ctx)
		if err != nil {
			return err
		}
		if name != "" {
			rec.CycleName = &name
		}
	}
	return nil
}
