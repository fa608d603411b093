package registry

import "sync"

// Conn is the minimal surface the coordinator needs from a live duplex
// connection. *websocket.Conn is adapted to it by the handlers package;
// tests use in-memory fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry maps operator identities to their live connections. A later
// connect under the same identity silently replaces the earlier entry.
type Registry struct {
	mu    sync.Mutex
	conns map[string]Conn
}

func New() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

func (r *Registry) Set(employeeID string, conn Conn) {
	if r == nil || employeeID == "" || conn == nil {
		return
	}
	r.mu.Lock()
	r.conns[employeeID] = conn
	r.mu.Unlock()
}

// Remove evicts the entry for employeeID only while conn is still the
// registered connection. A stale connection closing after it was replaced
// must not evict its replacement.
func (r *Registry) Remove(employeeID string, conn Conn) bool {
	if r == nil || employeeID == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.conns[employeeID]
	if !ok || current != conn {
		return false
	}
	delete(r.conns, employeeID)
	return true
}

func (r *Registry) Get(employeeID string) (Conn, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[employeeID]
	return conn, ok
}

// Snapshot returns a copy of the current entries for lock-free iteration.
func (r *Registry) Snapshot() map[string]Conn {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Conn, len(r.conns))
	for id, conn := range r.conns {
		out[id] = conn
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
