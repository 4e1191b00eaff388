package parse

import (
	"time"

	"github.com/primeboard/primeboard/internal/model"
)

// finalize checks the required fields of a raw strategy result and promotes
// the typed values out of the metric bag. A record that fails here is
// rejected wholesale; partial records never reach callers.
func finalize(rec *model.StatRecord) error {
	if rec.AgentName == "" {
		return invalid("agent_name", CodeMissingField, "empty agent name")
	}
	if rec.Faction != model.FactionENL && rec.Faction != model.FactionRES {
		return invalid("agent_faction", CodeInvalidFaction, "faction %q", rec.Faction)
	}
	if rec.Date == "" {
		return invalid("date", CodeMissingField, "missing date")
	}
	if _, err := time.Parse("2006-01-02", rec.Date); err != nil {
		return invalid("date", CodeInvalidDate, "date %q", rec.Date)
	}
	if rec.Time == "" {
		return invalid("time", CodeMissingField, "missing time")
	}
	if _, err := time.Parse("15:04:05", rec.Time); err != nil {
		return invalid("time", CodeInvalidTime, "time %q", rec.Time)
	}

	lvl, err := requireInt(rec, "level")
	if err != nil {
		return err
	}
	if lvl < model.MinLevel || lvl > model.MaxLevel {
		return invalid("level", CodeInvalidLevel, "level %d out of range", lvl)
	}
	rec.Level = lvl

	life, err := requireInt(rec, "lifetime_ap")
	if err != nil {
		return err
	}
	if life < 0 {
		return invalid("lifetime_ap", CodeInvalidValue, "negative lifetime_ap %d", life)
	}
	rec.LifetimeAP = life

	cur, err := requireInt(rec, "current_ap")
	if err != nil {
		return err
	}
	if cur < 0 {
		return invalid("current_ap", CodeInvalidValue, "negative current_ap %d", cur)
	}
	rec.CurrentAP = cur

	delete(rec.Metrics, "level")
	delete(rec.Metrics, "lifetime_ap")
	delete(rec.Metrics, "current_ap")
	return nil
}

func requireInt(rec *model.StatRecord, field string) (int64, error) {
	raw, ok := rec.Metrics[field]
	if !ok || raw == nil {
		return 0, invalid(field, CodeMissingField, "missing %s", field)
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
	}
	return 0, invalid(field, CodeInvalidValue, "%s is not an integer: %v", field, raw)
}
