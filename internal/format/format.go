// Package format renders parsed stat records back to text: the canonical
// space-separated export line and a human-readable report grouped by stat
// category.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/model"
)

// Placeholder marks a metric the agent has no value for.
const Placeholder = "-"

// ExportLine renders a record as one canonical space-separated stat line in
// catalog column order. Parsing the result yields an equivalent record, so
// the line is safe to re-ingest.
func ExportLine(rec *model.StatRecord) string {
	parts := []string{
		rec.TimeSpan,
		rec.AgentName,
		string(rec.Faction),
		rec.Date,
		rec.Time,
	}
	for _, id := range catalog.FieldOrder() {
		parts = append(parts, valueToken(rec, id))
	}
	if rec.CycleExplicit && rec.CycleName != nil {
		parts = append(parts, "+"+*rec.CycleName)
		if rec.CyclePoints != nil {
			parts = append(parts, strconv.FormatInt(*rec.CyclePoints, 10))
		}
	}
	return strings.Join(parts, " ")
}

func valueToken(rec *model.StatRecord, id string) string {
	switch id {
	case "level":
		return strconv.FormatInt(rec.Level, 10)
	case "lifetime_ap":
		return strconv.FormatInt(rec.LifetimeAP, 10)
	case "current_ap":
		return strconv.FormatInt(rec.CurrentAP, 10)
	}
	v, ok := rec.Metrics[id]
	if !ok || v == nil {
		return Placeholder
	}
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		if strings.ContainsAny(n, " \t") {
			// A multi-word string value would shift every later column.
			return Placeholder
		}
		return n
	default:
		return Placeholder
	}
}

// CategoryReport renders a record as a multi-line report, one section per
// stat category in catalog order, with display units. Metrics the record
// has no value for are omitted.
func CategoryReport(rec *model.StatRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) L%d\n", rec.AgentName, rec.Faction, rec.Level)
	fmt.Fprintf(&b, "%s %s, %s\n", rec.Date, rec.Time, rec.TimeSpan)
	if rec.CycleName != nil {
		if rec.CyclePoints != nil {
			fmt.Fprintf(&b, "Cycle %s: %s\n", *rec.CycleName, group(*rec.CyclePoints))
		} else {
			fmt.Fprintf(&b, "Cycle %s\n", *rec.CycleName)
		}
	}

	for _, cat := range catalog.Categories() {
		var lines []string
		for _, f := range catalog.Fields() {
			if f.Category != cat || f.Delta {
				continue
			}
			tok := reportValue(rec, f.ID)
			if tok == "" {
				continue
			}
			if f.Unit != "" {
				tok += " " + f.Unit
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", f.Label, tok))
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString(cat + "\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func reportValue(rec *model.StatRecord, id string) string {
	switch id {
	case "level":
		return strconv.FormatInt(rec.Level, 10)
	case "lifetime_ap":
		return group(rec.LifetimeAP)
	case "current_ap":
		return group(rec.CurrentAP)
	}
	switch n := rec.Metrics[id].(type) {
	case int64:
		return group(n)
	case float64:
		return strconv.FormatFloat(n, 'f', 1, 64)
	case string:
		return n
	default:
		return ""
	}
}

// RecordFromSubmission rebuilds a stat record from a stored submission so
// the render helpers can treat it like freshly parsed data. Integral floats
// come back as int64 to keep thousands grouping in reports.
func RecordFromSubmission(agent model.Agent, sub model.Submission) *model.StatRecord {
	rec := &model.StatRecord{
		TimeSpan:    sub.TimeWindow,
		AgentName:   agent.Name,
		Faction:     agent.Faction,
		Date:        sub.SubmittedAt.UTC().Format("2006-01-02"),
		Time:        sub.SubmittedAt.UTC().Format("15:04:05"),
		LifetimeAP:  sub.AP,
		Metrics:     make(map[string]any, len(sub.Metrics)),
		CycleName:   sub.CycleName,
		CyclePoints: sub.CyclePoints,
	}
	for k, v := range sub.Metrics {
		switch k {
		case "level":
			rec.Level = int64(v)
		case "current_ap":
			rec.CurrentAP = int64(v)
		default:
			if v == math.Trunc(v) {
				rec.Metrics[k] = int64(v)
			} else {
				rec.Metrics[k] = v
			}
		}
	}
	return rec
}

// group renders an integer with comma thousands separators.
func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []string
	for len(s) > 3 {
		out = append([]string{s[len(s)-3:]}, out...)
		s = s[:len(s)-3]
	}
	out = append([]string{s}, out...)
	res := strings.Join(out, ",")
	if neg {
		return "-" + res
	}
	return res
}
