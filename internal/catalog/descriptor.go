package catalog

import "sort"

// StorageKind says where a metric's value lives on a submission.
type StorageKind int

const (
	// KindTopLevel metrics are dedicated columns on the submission row.
	KindTopLevel StorageKind = iota
	// KindBag metrics live in the sparse JSON metric bag.
	KindBag
)

// DefaultMetric is the fallback ranking metric. Every submission carries AP,
// so an unknown metric id degrades to a board that always has candidates.
const DefaultMetric = "ap"

// Descriptor is an immutable catalog entry for a rankable metric: where the
// value is stored, its default, and display/priority metadata. Descriptors
// are read-time only — the parser never consults them.
type Descriptor struct {
	ID          string      `json:"id"`
	Kind        StorageKind `json:"kind"`
	Default     float64     `json:"default"`
	Priority    int         `json:"priority"` // 1 = most prominent on dashboards
	Coverage    float64     `json:"coverage"` // estimated fraction of agents carrying the stat
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

// descriptors holds every metric exposed for leaderboard ranking. Ordering
// prominence and coverage estimates come from observed submission data.
var descriptors = map[string]Descriptor{
	"ap": {
		ID: "ap", Kind: KindTopLevel, Priority: 1, Coverage: 1.0,
		Category: "core", Description: "Lifetime AP — universal ranking standard",
	},
	"hacks": {
		ID: "hacks", Kind: KindBag, Priority: 2, Coverage: 0.98,
		Category: "core", Description: "Total hacks — high-frequency activity metric",
	},
	"xm_collected": {
		ID: "xm_collected", Kind: KindBag, Priority: 3, Coverage: 0.95,
		Category: "core", Description: "XM collected — activity volume indicator",
	},
	"links_created": {
		ID: "links_created", Kind: KindBag, Priority: 4, Coverage: 0.85,
		Category: "building", Description: "Links created — network building metric",
	},
	"control_fields_created": {
		ID: "control_fields_created", Kind: KindBag, Priority: 5, Coverage: 0.75,
		Category: "building", Description: "Control fields created — strategic contribution",
	},
	"portals_captured": {
		ID: "portals_captured", Kind: KindBag, Priority: 6, Coverage: 0.80,
		Category: "combat", Description: "Portals captured — territory control metric",
	},
	"resonators_deployed": {
		ID: "resonators_deployed", Kind: KindBag, Priority: 7, Coverage: 0.82,
		Category: "building", Description: "Resonators deployed — basic building activity",
	},
	"resonators_destroyed": {
		ID: "resonators_destroyed", Kind: KindBag, Priority: 8, Coverage: 0.70,
		Category: "combat", Description: "Resonators destroyed — combat activity",
	},
	"portals_neutralized": {
		ID: "portals_neutralized", Kind: KindBag, Priority: 9, Coverage: 0.75,
		Category: "combat", Description: "Portals neutralized — combat activity",
	},
	"distance_walked": {
		ID: "distance_walked", Kind: KindBag, Priority: 10, Coverage: 0.80,
		Category: "exploration", Description: "Distance walked — physical activity",
	},
	"mods_deployed": {
		ID: "mods_deployed", Kind: KindBag, Priority: 11, Coverage: 0.85,
		Category: "building", Description: "Mods deployed — strategic enhancement",
	},
	"glyph_hack_points": {
		ID: "glyph_hack_points", Kind: KindBag, Priority: 12, Coverage: 0.90,
		Category: "core", Description: "Glyph hack points — precision hacking metric",
	},
}

// Lookup resolves a metric id to its descriptor.
func Lookup(id string) (Descriptor, bool) {
	d, ok := descriptors[id]
	return d, ok
}

// Ranked returns all descriptors ordered by priority.
func Ranked() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// ByCategory returns descriptors in the given category, ordered by priority.
func ByCategory(category string) []Descriptor {
	var out []Descriptor
	for _, d := range descriptors {
		if d.Category == category {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// RecommendedFor picks the metric that best discriminates over a time
// window: short windows favor high-frequency stats, all-time favors AP.
func RecommendedFor(window string) string {
	switch window {
	case "DAILY":
		return "hacks"
	case "WEEKLY", "LAST 7 DAYS", "PAST 7 DAYS", "THIS WEEK", "LAST WEEK":
		return "xm_collected"
	case "MONTHLY", "LAST 30 DAYS", "PAST 30 DAYS", "THIS MONTH", "LAST MONTH":
		return "links_created"
	default:
		return DefaultMetric
	}
}
