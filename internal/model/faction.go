package model

import "strings"

// Faction is an agent's in-game allegiance. Exports spell it a dozen ways
// ("enl", "Enlightened", "RES", ...); everything normalizes to one of the
// two canonical values or fails.
type Faction string

const (
	FactionENL Faction = "ENL"
	FactionRES Faction = "RES"
)

// factionSynonyms maps lowercase faction spellings seen in exports to the
// canonical value.
var factionSynonyms = map[string]Faction{
	"enl":         FactionENL,
	"enlightened": FactionENL,
	"res":         FactionRES,
	"resistance":  FactionRES,
}

// ParseFaction normalizes a raw faction token case-insensitively.
// Unrecognized tokens return false — callers must reject the record
// rather than defaulting.
func ParseFaction(raw string) (Faction, bool) {
	f, ok := factionSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return f, ok
}

// IsFactionToken reports whether a token would normalize to a faction.
// Used by the positional parser to locate the agent-name/faction boundary.
func IsFactionToken(raw string) bool {
	_, ok := ParseFaction(raw)
	return ok
}

// Factions lists the canonical factions in display order.
func Factions() []Faction {
	return []Faction{FactionENL, FactionRES}
}
