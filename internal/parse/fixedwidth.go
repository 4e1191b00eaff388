package parse

import (
	"strings"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/model"
)

// fixedColumn is one slot in the fixed-width layout.
type fixedColumn struct {
	field string // field id, or one of the head anchors
	start int    // inclusive rune offset
	end   int    // exclusive rune offset
}

// fixedWidthStrategy parses the padded export variant where every value is
// left-aligned in a column as wide as its header label. Byte offsets are
// derived from the canonical column labels once at startup; a line qualifies
// only when the date and time anchors sit at their expected offsets.
type fixedWidthStrategy struct {
	columns []fixedColumn
}

// Head column widths. Agent names run longer than the "Agent Name" label,
// so that column gets extra room; the rest pad their label by two.
var headWidths = map[string]int{
	"Time Span":         14,
	"Agent Name":        24,
	"Agent Faction":     15,
	"Date (yyyy-mm-dd)": 19,
	"Time (hh:mm:ss)":   17,
}

func newFixedWidthStrategy() *fixedWidthStrategy {
	var cols []fixedColumn
	offset := 0
	add := func(field string, width int) {
		cols = append(cols, fixedColumn{field: field, start: offset, end: offset + width})
		offset += width
	}
	headFields := []string{"time_span", "agent_name", "agent_faction", "date", "time"}
	for i, label := range catalog.HeadLabels {
		add(headFields[i], headWidths[label])
	}
	for _, f := range catalog.Fields() {
		if f.Delta {
			continue
		}
		add(f.ID, len(f.Label)+2)
	}
	return &fixedWidthStrategy{columns: cols}
}

func (*fixedWidthStrategy) Name() string { return "fixed-width" }

func (s *fixedWidthStrategy) TryParse(line string) (*model.StatRecord, error) {
	runes := []rune(line)

	cell := func(c fixedColumn) string {
		if c.start >= len(runes) {
			return ""
		}
		end := c.end
		if end > len(runes) {
			end = len(runes)
		}
		return strings.TrimSpace(string(runes[c.start:end]))
	}

	// The five head columns plus the level column are the minimum a stat
	// line carries; anything shorter isn't this layout.
	if len(runes) < s.columns[5].end {
		return nil, errStrategyMiss
	}

	dateCell := cell(s.columns[3])
	timeCell := cell(s.columns[4])
	if !datePattern.MatchString(dateCell) || !timePattern.MatchString(timeCell) {
		return nil, errStrategyMiss
	}

	factionCell := cell(s.columns[2])
	faction, ok := model.ParseFaction(factionCell)
	if !ok {
		return nil, invalid("agent_faction", CodeInvalidFaction, "unknown faction %q", factionCell)
	}
	agentName := cell(s.columns[1])
	if agentName == "" {
		return nil, invalid("agent_name", CodeMissingField, "empty agent name")
	}

	rec := &model.StatRecord{
		TimeSpan:  cell(s.columns[0]),
		AgentName: agentName,
		Faction:   faction,
		Date:      dateCell,
		Time:      normalizeTime(timeCell),
		Metrics:   make(map[string]any),
		Raw:       line,
	}

	for _, c := range s.columns[5:] {
		if v := coerce(cell(c)); v != nil {
			rec.Metrics[c.field] = v
		}
	}

	// Anything past the layout end is the transient cycle pair.
	if tailStart := s.columns[len(s.columns)-1].end; tailStart < len(runes) {
		tail := Tokenize(string(runes[tailStart:]))
		if _, name, points := extractCycle(tail); name != nil {
			rec.CycleName = name
			rec.CyclePoints = points
			rec.CycleExplicit = true
		}
	}
	return rec, nil
}
