package parse

import (
	"strings"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/model"
)

// semanticStrategy recovers fields from a bare space-separated line by
// locating pattern anchors instead of counting columns: the date and time
// tokens split the line into a head (time span, agent name, faction) and a
// metric tail consumed positionally against the catalog ordering.
//
// This is the primary strategy because it survives release-to-release column
// drift: a missing trailing column just leaves later bag fields unset.
type semanticStrategy struct{}

func (semanticStrategy) Name() string { return "semantic" }

func (semanticStrategy) TryParse(line string) (*model.StatRecord, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return nil, errStrategyMiss
	}

	dateIdx := -1
	for i, tok := range tokens {
		if datePattern.MatchString(tok) {
			dateIdx = i
			break
		}
	}
	if dateIdx == -1 {
		return nil, errStrategyMiss
	}
	timeIdx := -1
	for i := dateIdx + 1; i < len(tokens); i++ {
		if timePattern.MatchString(tokens[i]) {
			timeIdx = i
			break
		}
	}
	if timeIdx == -1 {
		return nil, errStrategyMiss
	}

	head := tokens[:dateIdx]
	if len(head) == 0 {
		return nil, errStrategyMiss
	}

	// Faction sits immediately before the date; scan right-to-left so an
	// agent named "Res Cue" can't shadow the real faction column.
	factionIdx := -1
	var faction model.Faction
	for i := len(head) - 1; i >= 0; i-- {
		if f, ok := model.ParseFaction(head[i]); ok {
			factionIdx = i
			faction = f
			break
		}
	}
	if factionIdx == -1 {
		return nil, invalid("agent_faction", CodeInvalidFaction, "no recognizable faction token in %q", strings.Join(head, " "))
	}

	// The leading run of time-span vocabulary (or pure numerals) ends where
	// the agent name starts; the name is everything up to the faction.
	split := 0
	var spanTokens []string
	for split < factionIdx {
		if !isTimeSpanToken(strings.ToUpper(head[split])) {
			break
		}
		spanTokens = append(spanTokens, head[split])
		split++
	}
	agentTokens := head[split:factionIdx]
	if len(agentTokens) == 0 && factionIdx > 0 {
		// Every head token matched span vocabulary ("All Time Week ENL ..."):
		// give the last one back as the name rather than losing the line.
		agentTokens = head[factionIdx-1 : factionIdx]
		spanTokens = head[:factionIdx-1]
	}
	agentName := strings.TrimSpace(strings.Join(agentTokens, " "))
	if agentName == "" {
		return nil, invalid("agent_name", CodeMissingField, "empty agent name")
	}

	metricTokens := tokens[timeIdx+1:]
	metricTokens, cycleName, cyclePoints := extractCycle(metricTokens)

	rec := &model.StatRecord{
		TimeSpan:      strings.Join(spanTokens, " "),
		AgentName:     agentName,
		Faction:       faction,
		Date:          tokens[dateIdx],
		Time:          normalizeTime(tokens[timeIdx]),
		Metrics:       make(map[string]any),
		CycleName:     cycleName,
		CyclePoints:   cyclePoints,
		CycleExplicit: cycleName != nil,
		Raw:           line,
	}

	for _, field := range catalog.FieldOrder() {
		if len(metricTokens) == 0 {
			break
		}
		v := coerce(metricTokens[0])
		metricTokens = metricTokens[1:]
		if v != nil {
			rec.Metrics[field] = v
		}
	}
	return rec, nil
}
