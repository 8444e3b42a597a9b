package runtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Mohammad-Harkous/chat-app/contract"
)

type presenceEntry struct {
	sink       contract.EventSink
	generation uint64
}

// Presence is the in-memory registry mapping a user to their single live
// connection. It is rebuilt empty on every process start; absence simply
// means "offline, deliver nothing live".
//
// Semantics are last-writer-wins per user: a reconnect replaces the previous
// entry without closing it. The generation counter makes the superseded
// connection discoverable as stale, so its own handler can notice on
// teardown that it no longer owns the entry and must not remove the newer
// one.
type Presence struct {
	mu         sync.RWMutex
	generation uint64
	entries    map[uuid.UUID]presenceEntry
}

func NewPresence() *Presence {
	return &Presence{entries: make(map[uuid.UUID]presenceEntry)}
}

// Register binds the user to a sink, superseding any previous entry, and
// returns the generation the caller must present at Unregister time.
func (p *Presence) Register(userID uuid.UUID, sink contract.EventSink) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	p.entries[userID] = presenceEntry{sink: sink, generation: p.generation}
	return p.generation
}

// Unregister removes the user's entry only when the caller still owns it.
// Returns false when a newer connection has already replaced the entry; the
// caller is stale and must leave presence untouched.
func (p *Presence) Unregister(userID uuid.UUID, generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[userID]
	if !ok || entry.generation != generation {
		return false
	}
	delete(p.entries, userID)
	return true
}

func (p *Presence) Lookup(userID uuid.UUID) (contract.EventSink, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.sink, true
}

// Sinks snapshots every live connection, for presence broadcasts.
func (p *Presence) Sinks() []contract.EventSink {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(p.entries))
	for _, entry := range p.entries {
		sinks = append(sinks, entry.sink)
	}
	return sinks
}

func (p *Presence) Online(userID uuid.UUID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.entries[userID]
	return ok
}
