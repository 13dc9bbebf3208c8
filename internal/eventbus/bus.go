package eventbus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/pkg/logger"
)

// replayBufferSize bounds how many recent events a late-joining client can
// recover via ReplaySince; older events are only recoverable through the
// workflow's own <ns>_results / token_update authoritative snapshots.
const replayBufferSize = 512

// clientQueue is one client's outbound channel plus its replay ring.
// Credited enrichment (DESIGN.md): the bounded ring-buffer-with-sequence
// shape for late-joiner replay is adapted from another pack example that
// solves the identical SSE/WS catch-up problem, not from the teacher.
type clientQueue struct {
	mu   sync.Mutex
	ch   chan Event
	ring []Event
	next uint64
}

func newClientQueue() *clientQueue {
	return &clientQueue{
		ch:   make(chan Event, 256),
		ring: make([]Event, 0, replayBufferSize),
	}
}

func (q *clientQueue) publish(e Event) {
	q.mu.Lock()
	e.Seq = q.next
	q.next++
	if len(q.ring) >= replayBufferSize {
		q.ring = q.ring[1:]
	}
	q.ring = append(q.ring, e)
	q.mu.Unlock()

	select {
	case q.ch <- e:
	default:
		logger.Warn("eventbus: client channel full, dropping live frame (replay buffer still has it)")
	}
}

func (q *clientQueue) replaySince(since uint64) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []Event
	for _, e := range q.ring {
		if e.Seq >= since {
			out = append(out, e)
		}
	}
	return out
}

// Bus is the per-process registry of connected clients. One Bus instance
// is shared across every workflow run; workflows never hold client
// channels themselves, only a client_id.
type Bus struct {
	mu      sync.RWMutex
	clients map[string]*clientQueue
}

func NewBus() *Bus {
	return &Bus{clients: make(map[string]*clientQueue)}
}

// Register opens a client's outbound queue. The returned func unregisters
// it; callers must call it on disconnect.
func (b *Bus) Register(clientID string) (<-chan Event, func()) {
	q := newClientQueue()

	b.mu.Lock()
	b.clients[clientID] = q
	b.mu.Unlock()

	logger.Info("eventbus: client registered", zap.String("client_id", clientID))

	unregister := func() {
		b.mu.Lock()
		delete(b.clients, clientID)
		b.mu.Unlock()
	}
	return q.ch, unregister
}

// Publish queues typ/payload for clientID. A publish to an unregistered
// client (already disconnected) is a silent no-op — the workflow goroutine
// driving it discovers the disconnect via its own context cancellation.
func (b *Bus) Publish(clientID string, typ string, payload any) {
	b.mu.RLock()
	q, ok := b.clients[clientID]
	b.mu.RUnlock()
	if !ok {
		return
	}
	q.publish(Event{Type: typ, Payload: payload})
}

// PublishAll broadcasts to every connected client — used for token_update,
// the only event type not scoped to one client's own workflow run.
func (b *Bus) PublishAll(typ string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, q := range b.clients {
		q.publish(Event{Type: typ, Payload: payload})
	}
}

// ReplaySince returns the buffered events for clientID with Seq >= since,
// for a client that reconnects mid-workflow.
func (b *Bus) ReplaySince(clientID string, since uint64) []Event {
	b.mu.RLock()
	q, ok := b.clients[clientID]
	b.mu.RUnlock()
	if !ok {
		return nil
	}
	return q.replaySince(since)
}
