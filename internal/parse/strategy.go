package parse

import (
	"regexp"

	"github.com/primeboard/primeboard/internal/model"
)

// Strategy is one column-layout interpretation of an export line. Strategies
// are tried in a fixed priority order; the first one whose output also passes
// validation wins. A strategy returns errStrategyMiss when the line's shape
// doesn't fit it at all, and a real error when the shape fits but a field is
// malformed.
//
// Adding support for a future export format means adding one more Strategy,
// not branching inside an existing one.
type Strategy interface {
	Name() string
	TryParse(line string) (*model.StatRecord, error)
}

// timeSpanWords is the vocabulary that can open a stat line before the agent
// name ("ALL TIME", "LAST 7 DAYS", "CURRENT CYCLE", ...). Pure numerals and
// compact duration tokens like "7D" also qualify.
var timeSpanWords = map[string]bool{
	"ALL": true, "TIME": true, "THIS": true, "WEEK": true, "WEEKS": true,
	"LAST": true, "DAY": true, "DAYS": true, "CYCLE": true, "CURRENT": true,
	"PREVIOUS": true, "PAST": true, "MONTH": true, "MONTHS": true,
	"YEAR": true, "YEARS": true, "SINCE": true, "INCEPTION": true,
	"WEEKLY": true, "MONTHLY": true, "DAILY": true, "NOW": true,
}

var compactDuration = regexp.MustCompile(`^\d+[A-Z]+$`)

// isTimeSpanToken reports whether a token belongs to the leading time-span
// run. The uppercased form is checked so "All Time" and "ALL TIME" agree.
func isTimeSpanToken(upper string) bool {
	if timeSpanWords[upper] {
		return true
	}
	if compactDuration.MatchString(upper) {
		return true
	}
	for _, r := range upper {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(upper) > 0
}
