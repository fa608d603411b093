package call

import "sync"

// Table holds every active call session, keyed by phone call id. Sessions
// live here from origination until end-of-call eviction and are never
// resurrected under the same id.
type Table struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewTable() *Table {
	return &Table{sessions: make(map[string]*Session)}
}

func (t *Table) Add(s *Session) {
	if t == nil || s == nil || s.ID() == "" {
		return
	}
	t.mu.Lock()
	t.sessions[s.ID()] = s
	t.mu.Unlock()
}

func (t *Table) Get(id string) (*Session, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	return s, ok
}

func (t *Table) Remove(id string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
