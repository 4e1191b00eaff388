package parse

import (
	"context"
	"strings"
	"sync"
)

// CycleStore persists the single active cycle name for a deployment
// instance. The parser reads it once per batch and writes it whenever a line
// carries its own explicit cycle token. Implementations must serialize the
// read-modify-write — two concurrent pastes must not interleave.
type CycleStore interface {
	// Get returns the active cycle name, or "" when none is known.
	Get(ctx context.Context) (string, error)
	// Set durably records name as the active cycle.
	Set(ctx context.Context, name string) error
}

// MemoryCycleStore is an in-process CycleStore for tests and embedded use.
type MemoryCycleStore struct {
	mu   sync.Mutex
	name string
}

// NewMemoryCycleStore returns an empty in-memory store.
func NewMemoryCycleStore() *MemoryCycleStore { return &MemoryCycleStore{} }

// Get returns the stored cycle name.
func (s *MemoryCycleStore) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, nil
}

// Set stores the cycle name.
func (s *MemoryCycleStore) Set(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	return nil
}

// extractCycle scans a metric token run from the tail for a "+Name" cycle
// marker. When found, the marker (and its numeric value token, if the next
// token is numeric) is removed from the run. Returns the remaining tokens,
// the cycle name without its "+" prefix, and the points value when present.
//
// Scanning right-to-left matters: the cycle pair is appended after the
// regular metric columns, and a "+" can't otherwise appear in the tail.
func extractCycle(tokens []string) (rest []string, name *string, points *int64) {
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "+") || len(tok) < 2 {
			continue
		}
		n := strings.TrimSpace(tok[1:])
		if n == "" {
			continue
		}
		var p *int64
		end := i + 1
		if end < len(tokens) && isNumeric(tokens[end]) {
			if v, ok := coerceInt(tokens[end]); ok {
				p = &v
			}
			end++
		}
		rest = append(append([]string{}, tokens[:i]...), tokens[end:]...)
		return rest, &n, p
	}
	return tokens, nil, nil
}
