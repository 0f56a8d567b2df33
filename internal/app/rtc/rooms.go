package rtc

import "sync"

// Rooms manages the broadcast groups a connection can belong to: session
// rooms keyed by appointment and personal channels keyed by user id.
// Rooms come into existence on first join and vanish when their last
// member leaves. A reverse index tracks which rooms each handle joined so
// disconnect cleanup needs no caller-side bookkeeping.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Conn]struct{}
	joined  map[*Conn]map[string]struct{}
}

// NewRooms returns an empty room table.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[*Conn]struct{}),
		joined:  make(map[*Conn]map[string]struct{}),
	}
}

// Join adds the handle to the room, creating the room on first join.
// Joining twice is a no-op: membership is a set.
func (r *Rooms) Join(c *Conn, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.members[roomKey]
	if set == nil {
		set = make(map[*Conn]struct{})
		r.members[roomKey] = set
	}
	set[c] = struct{}{}

	rooms := r.joined[c]
	if rooms == nil {
		rooms = make(map[string]struct{})
		r.joined[c] = rooms
	}
	rooms[roomKey] = struct{}{}
}

// Leave removes the handle from the room; the room is reaped when empty.
func (r *Rooms) Leave(c *Conn, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(c, roomKey)
}

// LeaveAll removes the handle from every room it belongs to. Called on
// disconnect; safe for a handle that never joined anything.
func (r *Rooms) LeaveAll(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomKey := range r.joined[c] {
		r.leaveLocked(c, roomKey)
	}
}

func (r *Rooms) leaveLocked(c *Conn, roomKey string) {
	if set, ok := r.members[roomKey]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.members, roomKey)
		}
	}

	if rooms, ok := r.joined[c]; ok {
		delete(rooms, roomKey)
		if len(rooms) == 0 {
			delete(r.joined, c)
		}
	}
}

// Broadcast queues the frame for every current member of the room,
// including the sender if the sender is a member: a sender's other tabs
// must see its own messages too. Callers needing sender exclusion filter
// themselves. An empty or unknown room is a no-op, not an error.
//
// Delivery is non-blocking per member; a stalled connection drops frames
// rather than holding up the room (the transport heartbeat reaps it).
func (r *Rooms) Broadcast(roomKey string, frame []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c := range r.members[roomKey] {
		c.enqueue(frame)
	}
}

// Contains reports whether the handle is currently a member of the room.
func (r *Rooms) Contains(c *Conn, roomKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[roomKey][c]
	return ok
}
