package activity

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces fresh unique identifiers for order records.
// Implemented by UUIDGenerator (production) and FixedIDs (tests).
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDGenerator struct{}

// NewID returns a new UUIDv7 as a hyphenated string.
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedIDs returns predetermined identifiers in order. This keeps test runs
// and golden traces deterministic.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
// Panics when exhausted - a fail-fast guard against test misconfiguration.
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// NewID returns the next predetermined identifier.
func (g *FixedIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
