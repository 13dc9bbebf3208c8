// Package gate implements the Request Gate (spec §4.11): a per-client lock
// ensuring only one workflow is in flight for a given client at a time.
// Shape grounded on the teacher's internal/middleware/ratelimit per-key
// bucket map, simplified from a token bucket to a single-slot lock.
package gate

import "sync"

type Gate struct {
	mu      sync.Mutex
	held    map[string]bool
}

func NewGate() *Gate {
	return &Gate{held: make(map[string]bool)}
}

// TryAcquire reports whether clientID's slot was free and, if so, claims
// it. Callers must call Release exactly once after the workflow
// terminates (success, failure, or cancellation).
func (g *Gate) TryAcquire(clientID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held[clientID] {
		return false
	}
	g.held[clientID] = true
	return true
}

func (g *Gate) Release(clientID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, clientID)
}

func (g *Gate) IsHeld(clientID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held[clientID]
}
