package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predetermined run IDs in order. Once the list is
// exhausted it keeps returning "<last>-<n>" so long-running tests never
// collide, while the common single-run case stays byte-stable for golden
// files. With no IDs at all it starts from "test-run".
//
// Safe for concurrent use.
type FixedIDGenerator struct {
	mu    sync.Mutex
	ids   []string
	calls int
}

// NewFixedIDGenerator returns a generator that yields ids in order.
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	if len(ids) == 0 {
		ids = []string{"test-run"}
	}
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next ID.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i < len(g.ids) {
		return g.ids[i]
	}
	return fmt.Sprintf("%s-%d", g.ids[len(g.ids)-1], i-len(g.ids)+2)
}
