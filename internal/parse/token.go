package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern    = regexp.MustCompile(`^\d{2}:\d{2}(?::\d{2})?$`)
	numericPattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// Tokenize splits a raw line into whitespace-delimited tokens. It carries no
// semantic knowledge — fields with embedded spaces are reassembled later.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// dashPlaceholders are the "no value" markers the game prints for stats an
// agent has never earned. They coerce to nil, not zero.
var dashPlaceholders = map[string]bool{
	"-":  true,
	"--": true,
	"—":  true,
}

// isNumeric reports whether a token parses as a (comma-grouped) number.
// Dash placeholders are not numeric.
func isNumeric(token string) bool {
	cleaned := strings.ReplaceAll(token, ",", "")
	if cleaned == "" || dashPlaceholders[cleaned] {
		return false
	}
	return numericPattern.MatchString(cleaned)
}

// coerce converts a value token to its typed form: nil for empty and dash
// placeholders, int64 for integers (and integral floats — the game prints
// "1234.0" for some counters), float64 for fractional values, and the raw
// string for anything else.
func coerce(token string) any {
	cleaned := strings.ReplaceAll(strings.TrimSpace(token), ",", "")
	if cleaned == "" || dashPlaceholders[cleaned] {
		return nil
	}
	if !numericPattern.MatchString(cleaned) {
		return strings.TrimSpace(token)
	}
	if !strings.Contains(cleaned, ".") {
		if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
			return n
		}
		return strings.TrimSpace(token)
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return strings.TrimSpace(token)
	}
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

// coerceInt returns the token's integer value when it has one.
func coerceInt(token string) (int64, bool) {
	switch v := coerce(token).(type) {
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// normalizeTime pads a two-part hh:mm token to hh:mm:00 wall-clock form.
func normalizeTime(value string) string {
	if strings.Count(value, ":") == 1 {
		return value + ":00"
	}
	return value
}
