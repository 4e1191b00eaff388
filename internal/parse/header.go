package parse

import (
	"strings"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/model"
)

// headerStrategy parses rows against the column positions a supplied header
// line names. It is primed once per batch when the paste opens with a header;
// without one it declines every line.
//
// Tab-separated rows are zipped positionally against the header. Bare
// space-separated rows are re-scanned semantically (the agent name can embed
// spaces, so positional splitting on single spaces is unsound) but the
// header still controls which fields the metric tail maps to.
type headerStrategy struct {
	fields    []string // normalized field ids, header order
	tabbed    bool
	cycleIdx  int    // index of the "+Name" cycle column, -1 when absent
	cycleName string // cycle name from the header, without the "+"
}

// looksLikeHeader reports whether a line is a column header rather than
// data: it must name at least three known column labels and carry no date
// anchor of its own.
func looksLikeHeader(line string) bool {
	if strings.ContainsAny(line, "0123456789") {
		// Labels like "NL-1331" contain digits; a full date does not appear
		// in any label, so only reject on a date-shaped token.
		for _, tok := range Tokenize(line) {
			if datePattern.MatchString(tok) {
				return false
			}
		}
	}
	known := 0
	if strings.Contains(line, "\t") {
		for _, cellText := range strings.Split(line, "\t") {
			if isKnownLabel(strings.TrimSpace(cellText)) {
				known++
			}
		}
	} else {
		for _, label := range catalog.HeadLabels {
			if strings.Contains(line, label) {
				known++
			}
		}
	}
	return known >= 3
}

func isKnownLabel(label string) bool {
	for _, h := range catalog.HeadLabels {
		if label == h {
			return true
		}
	}
	if _, ok := catalog.FieldByLabel(label); ok {
		return true
	}
	return strings.HasPrefix(label, "+")
}

// newHeaderStrategy builds a strategy from a header line. Only tab-separated
// headers can be split reliably; space-separated headers must match the
// canonical column set, which the semantic field order already covers.
func newHeaderStrategy(header string) *headerStrategy {
	s := &headerStrategy{cycleIdx: -1}
	var labels []string
	if strings.Contains(header, "\t") {
		s.tabbed = true
		for _, cellText := range strings.Split(header, "\t") {
			labels = append(labels, strings.TrimSpace(cellText))
		}
	} else {
		labels = append(labels, catalog.HeadLabels...)
		for _, f := range catalog.Fields() {
			labels = append(labels, f.Label)
		}
	}
	for i, label := range labels {
		// An unknown "+Name" header is the transient cycle column; known
		// "+Delta ..." event columns stay ordinary (ignored) fields.
		if strings.HasPrefix(label, "+") {
			if _, known := catalog.FieldByLabel(label); !known && s.cycleIdx == -1 {
				s.cycleIdx = i
				s.cycleName = strings.TrimSpace(label[1:])
				s.fields = append(s.fields, "")
				continue
			}
		}
		s.fields = append(s.fields, catalog.NormalizeLabel(label))
	}
	return s
}

func (*headerStrategy) Name() string { return "header" }

func (s *headerStrategy) TryParse(line string) (*model.StatRecord, error) {
	if s == nil || len(s.fields) == 0 {
		return nil, errStrategyMiss
	}
	var cells []string
	if s.tabbed {
		if !strings.Contains(line, "\t") {
			return nil, errStrategyMiss
		}
		for _, cellText := range strings.Split(line, "\t") {
			cells = append(cells, strings.TrimSpace(cellText))
		}
		if len(cells) != len(s.fields) {
			return nil, errStrategyMiss
		}
	} else {
		var err error
		cells, err = s.splitSpaceRow(line)
		if err != nil {
			return nil, err
		}
	}
	return s.build(line, cells)
}

// splitSpaceRow reassembles a space-separated row into one cell per header
// column, using the same anchors as the semantic strategy for the head.
func (s *headerStrategy) splitSpaceRow(line string) ([]string, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return nil, errStrategyMiss
	}

	spanEnd := 0
	for spanEnd < len(tokens) && isTimeSpanToken(strings.ToUpper(tokens[spanEnd])) {
		spanEnd++
	}
	if spanEnd == 0 {
		return nil, errStrategyMiss
	}
	factionIdx := -1
	for i := spanEnd; i < len(tokens); i++ {
		if model.IsFactionToken(tokens[i]) {
			factionIdx = i
			break
		}
	}
	if factionIdx == -1 || factionIdx == spanEnd {
		return nil, errStrategyMiss
	}
	rest := tokens[factionIdx+1:]
	if len(rest) != len(s.fields)-3 {
		return nil, errStrategyMiss
	}

	cells := []string{
		strings.Join(tokens[:spanEnd], " "),
		strings.Join(tokens[spanEnd:factionIdx], " "),
		tokens[factionIdx],
	}
	return append(cells, rest...), nil
}

func (s *headerStrategy) build(line string, cells []string) (*model.StatRecord, error) {
	rec := &model.StatRecord{Metrics: make(map[string]any), Raw: line}
	for i, field := range s.fields {
		val := cells[i]
		if i == s.cycleIdx {
			if pts, ok := coerceInt(val); ok {
				name := s.cycleName
				rec.CycleName = &name
				rec.CyclePoints = &pts
				rec.CycleExplicit = true
			}
			continue
		}
		switch field {
		case "time_span":
			rec.TimeSpan = val
		case "agent_name":
			rec.AgentName = val
		case "agent_faction":
			f, ok := model.ParseFaction(val)
			if !ok {
				return nil, invalid("agent_faction", CodeInvalidFaction, "unknown faction %q", val)
			}
			rec.Faction = f
		case "date":
			rec.Date = val
		case "time":
			rec.Time = normalizeTime(val)
		case "":
			// unmapped column
		default:
			if v := coerce(val); v != nil {
				rec.Metrics[field] = v
			}
		}
	}
	if rec.AgentName == "" {
		return nil, invalid("agent_name", CodeMissingField, "empty agent name")
	}
	return rec, nil
}
