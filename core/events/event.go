package events

import (
	"sync"

	"tokenforge/core/types"
)

// Event represents a structured state change emitted by an engine.
type Event interface {
	EventType() string
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. the gateway or
// indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// RingEmitter retains the most recent events in a bounded in-memory buffer so
// external consumers can poll them. Oldest entries are evicted first.
type RingEmitter struct {
	mu     sync.RWMutex
	buf    []*types.Event
	limit  int
	seqTop uint64
}

// NewRingEmitter creates a ring emitter bounded to limit events. A
// non-positive limit defaults to 1024.
func NewRingEmitter(limit int) *RingEmitter {
	if limit <= 0 {
		limit = 1024
	}
	return &RingEmitter{limit: limit}
}

// Emit implements the Emitter interface.
func (r *RingEmitter) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	payload := evt.Event()
	if payload == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, payload)
	r.seqTop++
	if len(r.buf) > r.limit {
		r.buf = r.buf[len(r.buf)-r.limit:]
	}
}

// Recent returns up to n of the most recent events, newest last.
func (r *RingEmitter) Recent(n int) []*types.Event {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 || n > len(r.buf) {
		n = len(r.buf)
	}
	out := make([]*types.Event, n)
	copy(out, r.buf[len(r.buf)-n:])
	return out
}
