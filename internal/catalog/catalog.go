// Package catalog is the static registry behind the stats pipeline: the
// canonical export column order consumed by the positional parsing
// strategies, display labels and units for formatting, and ranking
// descriptors for the leaderboard engine.
//
// Nothing here mutates at runtime. The parser, formatter, and ranking engine
// all read the same tables so a release that reorders the export only needs
// a change in this package.
package catalog

import (
	"regexp"
	"strings"
)

// Field describes one metric slot in the canonical export ordering.
type Field struct {
	ID       string // snake_case field id, used as the metric bag key
	Label    string // column label as the game prints it
	Unit     string // display unit ("km", "MUs", ...), "" when unitless
	Category string // stat category for the grouped report
	Delta    bool   // transient "+Delta ..." event column, ignored on ingest
}

// HeadLabels are the five anchor columns that precede the metric run.
var HeadLabels = []string{
	"Time Span",
	"Agent Name",
	"Agent Faction",
	"Date (yyyy-mm-dd)",
	"Time (hh:mm:ss)",
}

// fields lists every metric slot in export order, starting at Level. The
// ordering is load-bearing: the semantic and fixed-width strategies consume
// value tokens positionally against it.
var fields = []Field{
	{ID: "level", Label: "Level", Category: "General"},
	{ID: "lifetime_ap", Label: "Lifetime AP", Unit: "AP", Category: "General"},
	{ID: "current_ap", Label: "Current AP", Unit: "AP", Category: "General"},
	{ID: "unique_portals_visited", Label: "Unique Portals Visited", Category: "Discovery"},
	{ID: "unique_portals_drone_visited", Label: "Unique Portals Drone Visited", Category: "Discovery"},
	{ID: "furthest_drone_distance", Label: "Furthest Drone Distance", Unit: "km", Category: "Discovery"},
	{ID: "portals_discovered", Label: "Portals Discovered", Category: "Discovery"},
	{ID: "xm_collected", Label: "XM Collected", Unit: "XM", Category: "Discovery"},
	{ID: "opr_agreements", Label: "OPR Agreements", Category: "Discovery"},
	{ID: "portal_scans_uploaded", Label: "Portal Scans Uploaded", Category: "Discovery"},
	{ID: "uniques_scout_controlled", Label: "Uniques Scout Controlled", Category: "Discovery"},
	{ID: "resonators_deployed", Label: "Resonators Deployed", Category: "Building"},
	{ID: "links_created", Label: "Links Created", Category: "Building"},
	{ID: "control_fields_created", Label: "Control Fields Created", Category: "Building"},
	{ID: "mind_units_captured", Label: "Mind Units Captured", Unit: "MUs", Category: "Building"},
	{ID: "longest_link_ever_created", Label: "Longest Link Ever Created", Unit: "km", Category: "Building"},
	{ID: "largest_control_field", Label: "Largest Control Field", Unit: "MUs", Category: "Building"},
	{ID: "xm_recharged", Label: "XM Recharged", Unit: "XM", Category: "Building"},
	{ID: "portals_captured", Label: "Portals Captured", Category: "Building"},
	{ID: "unique_portals_captured", Label: "Unique Portals Captured", Category: "Building"},
	{ID: "mods_deployed", Label: "Mods Deployed", Category: "Building"},
	{ID: "hacks", Label: "Hacks", Category: "Resource Gathering"},
	{ID: "drone_hacks", Label: "Drone Hacks", Category: "Resource Gathering"},
	{ID: "glyph_hack_points", Label: "Glyph Hack Points", Category: "Resource Gathering"},
	{ID: "completed_hackstreaks", Label: "Completed Hackstreaks", Category: "Streaks"},
	{ID: "longest_sojourner_streak", Label: "Longest Sojourner Streak", Unit: "days", Category: "Streaks"},
	{ID: "resonators_destroyed", Label: "Resonators Destroyed", Category: "Combat"},
	{ID: "portals_neutralized", Label: "Portals Neutralized", Category: "Combat"},
	{ID: "enemy_links_destroyed", Label: "Enemy Links Destroyed", Category: "Combat"},
	{ID: "enemy_fields_destroyed", Label: "Enemy Fields Destroyed", Category: "Combat"},
	{ID: "battle_beacon_combatant", Label: "Battle Beacon Combatant", Category: "Combat"},
	{ID: "drones_returned", Label: "Drones Returned", Category: "Combat"},
	{ID: "machina_links_destroyed", Label: "Machina Links Destroyed", Category: "Combat"},
	{ID: "machina_resonators_destroyed", Label: "Machina Resonators Destroyed", Category: "Combat"},
	{ID: "machina_portals_neutralized", Label: "Machina Portals Neutralized", Category: "Combat"},
	{ID: "machina_portals_reclaimed", Label: "Machina Portals Reclaimed", Category: "Combat"},
	{ID: "max_time_portal_held", Label: "Max Time Portal Held", Unit: "days", Category: "Defense"},
	{ID: "max_time_link_maintained", Label: "Max Time Link Maintained", Unit: "days", Category: "Defense"},
	{ID: "max_link_length_x_days", Label: "Max Link Length x Days", Unit: "km-days", Category: "Defense"},
	{ID: "max_time_field_held", Label: "Max Time Field Held", Unit: "days", Category: "Defense"},
	{ID: "largest_field_mus_x_days", Label: "Largest Field MUs x Days", Unit: "MU-days", Category: "Defense"},
	{ID: "forced_drone_recalls", Label: "Forced Drone Recalls", Category: "Defense"},
	{ID: "distance_walked", Label: "Distance Walked", Unit: "km", Category: "Health"},
	{ID: "kinetic_capsules_completed", Label: "Kinetic Capsules Completed", Category: "Health"},
	{ID: "unique_missions_completed", Label: "Unique Missions Completed", Category: "Missions"},
	{ID: "research_bounties_completed", Label: "Research Bounties Completed", Category: "Research"},
	{ID: "research_days_completed", Label: "Research Days Completed", Category: "Research"},
	{ID: "mission_days_attended", Label: "Mission Day(s) Attended", Category: "Events"},
	{ID: "nl1331_meetups_attended", Label: "NL-1331 Meetup(s) Attended", Category: "Events"},
	{ID: "first_saturday_events", Label: "First Saturday Events", Category: "Events"},
	{ID: "second_sunday_events", Label: "Second Sunday Events", Category: "Events"},
	{ID: "delta_tokens", Label: "+Delta Tokens", Category: "Delta", Delta: true},
	{ID: "delta_reso_points", Label: "+Delta Reso Points", Category: "Delta", Delta: true},
	{ID: "delta_field_points", Label: "+Delta Field Points", Category: "Delta", Delta: true},
	{ID: "agents_recruited", Label: "Agents Recruited", Category: "Mentoring"},
	{ID: "recursions", Label: "Recursions", Category: "Recursion"},
	{ID: "months_subscribed", Label: "Months Subscribed", Category: "Subscription"},
}

var (
	fieldByID    = make(map[string]Field, len(fields))
	fieldByLabel = make(map[string]Field, len(fields))
)

func init() {
	for _, f := range fields {
		fieldByID[f.ID] = f
		fieldByLabel[f.Label] = f
	}
}

// Fields returns every metric slot in export order, delta columns included.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldOrder returns the field ids the semantic strategy consumes
// positionally, in order. Delta columns are excluded: they only appear in
// releases whose header names them, and the header-driven strategy handles
// those.
func FieldOrder() []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Delta {
			continue
		}
		out = append(out, f.ID)
	}
	return out
}

// FieldByID looks up a metric slot by field id.
func FieldByID(id string) (Field, bool) {
	f, ok := fieldByID[id]
	return f, ok
}

// FieldByLabel looks up a metric slot by its exact export column label.
func FieldByLabel(label string) (Field, bool) {
	f, ok := fieldByLabel[label]
	return f, ok
}

var labelCleaner = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NormalizeLabel converts a header label to its field id form:
// lowercase snake_case with punctuation collapsed. The two timestamp anchors
// keep their short ids so "Date (yyyy-mm-dd)" maps to "date".
func NormalizeLabel(label string) string {
	s := strings.TrimSpace(label)
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = labelCleaner.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(strings.ToLower(s)), "_")
	switch s {
	case "date_yyyy_mm_dd":
		return "date"
	case "time_hh_mm_ss":
		return "time"
	case "nl_1331_meetup_s_attended", "nl1331_meetup_s_attended":
		return "nl1331_meetups_attended"
	case "mission_day_s_attended":
		return "mission_days_attended"
	}
	return s
}

// Categories returns the distinct stat categories in export order.
func Categories() []string {
	var out []string
	seen := map[string]bool{"General": true}
	out = append(out, "General")
	for _, f := range fields {
		if !seen[f.Category] {
			seen[f.Category] = true
			out = append(out, f.Category)
		}
	}
	return out
}
