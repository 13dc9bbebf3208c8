// Package tokens implements the process-wide Token Accountant (spec
// §4.10): a mutex-guarded running total of every authoritative token count
// the Streaming Runner reports, broadcast to every connected client after
// each update.
package tokens

import (
	"sync"

	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/metrics"
)

// Delta is one completed LLM call's authoritative usage, as reported by
// the provider SDK.
type Delta struct {
	Input    int64
	Output   int64
	Thinking int64
}

// Snapshot is the cumulative total broadcast as a token_update event.
type Snapshot struct {
	TotalInput    int64 `json:"total_input"`
	TotalOutput   int64 `json:"total_output"`
	TotalThinking int64 `json:"total_thinking"`
	CallCount     int64 `json:"call_count"`
}

// Accountant holds the single authoritative running total for the
// process. The mutex is held only for the duration of the integer
// addition; the broadcast happens after it's released (spec §5
// "Token Accountant updates are totally ordered by a single authoritative
// sequence").
type Accountant struct {
	mu   sync.Mutex
	snap Snapshot
	bus  *eventbus.Bus
}

func NewAccountant(bus *eventbus.Bus) *Accountant {
	return &Accountant{bus: bus}
}

// Add folds d into the running total and broadcasts the new snapshot.
func (a *Accountant) Add(d Delta) Snapshot {
	a.mu.Lock()
	a.snap.TotalInput += d.Input
	a.snap.TotalOutput += d.Output
	a.snap.TotalThinking += d.Thinking
	a.snap.CallCount++
	snap := a.snap
	a.mu.Unlock()

	metrics.SetTokenTotals(snap.TotalInput, snap.TotalOutput, snap.TotalThinking, snap.CallCount)
	a.bus.PublishAll(eventbus.EventTokenUpdate, snap)
	return snap
}

func (a *Accountant) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}
