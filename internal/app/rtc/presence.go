package rtc

import "sync"

// Presence is the process-wide registry of which users are reachable right
// now. It maps a user id to the set of that user's live connections; one
// user may hold several (multiple tabs or devices).
//
// The table is private and only mutated through Register/Unregister, so
// atomicity is enforced at this API boundary. Entries are a cache of live
// transport state, not an account-level truth: they hold no authority
// across restarts.
type Presence struct {
	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{}
}

// NewPresence returns an empty registry.
func NewPresence() *Presence {
	return &Presence{
		conns: make(map[string]map[*Conn]struct{}),
	}
}

// Register adds the handle to the user's connection set. Registering the
// same handle twice is a no-op.
func (p *Presence) Register(userID string, c *Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set := p.conns[userID]
	if set == nil {
		set = make(map[*Conn]struct{})
		p.conns[userID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes the handle; the user's entry disappears when its set
// becomes empty. Unknown users and already-removed handles are no-ops.
func (p *Presence) Unregister(userID string, c *Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[userID]
	if !ok {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(p.conns, userID)
	}
}

// Lookup returns the user's live connection handles. Unknown users yield
// an empty slice, never an error. The slice is a copy; holding it does not
// pin registry state.
func (p *Presence) Lookup(userID string) []*Conn {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set := p.conns[userID]
	if len(set) == 0 {
		return nil
	}

	handles := make([]*Conn, 0, len(set))
	for c := range set {
		handles = append(handles, c)
	}
	return handles
}

// Online reports whether the user has at least one live connection.
func (p *Presence) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.conns[userID]) > 0
}
