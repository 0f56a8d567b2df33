package rtc

import (
	"context"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"carelink/internal/app/message"
	"carelink/internal/pkg/logx"
)

// Hub owns the realtime core: the presence registry, the room tables, the
// message pipeline, and the signaling relay. Connections attach after
// authentication and dispatch their typed events through it.
type Hub struct {
	presence *Presence
	rooms    *Rooms
	pipeline *Pipeline
	relay    *Relay

	// conns tracks every attached connection for shutdown and makes
	// Disconnect idempotent: a handle that was never attached, or was
	// already cleaned up, is a no-op.
	mu    sync.Mutex
	conns map[*Conn]struct{}

	logger zerolog.Logger
}

// NewHub builds the core around the given message store.
func NewHub(store message.Store) *Hub {
	presence := NewPresence()
	rooms := NewRooms()

	return &Hub{
		presence: presence,
		rooms:    rooms,
		pipeline: NewPipeline(store, rooms, presence),
		relay:    NewRelay(presence),
		conns:    make(map[*Conn]struct{}),
		logger:   logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// Attach admits an authenticated websocket into the hub: the handle is
// registered in the presence table, joined to the user's personal channel,
// and its write pump is started. The caller runs ReadPump to completion.
func (h *Hub) Attach(sock *websocket.Conn, identity Identity) *Conn {
	c := newConn(h, sock, identity)
	h.admit(c)

	go c.WritePump()

	h.logger.Info().
		Str("conn_id", c.ID()).
		Str("user_id", identity.UserID).
		Str("role", identity.Role).
		Msg("Connection attached")

	return c
}

// admit tracks the handle and establishes its initial presence and
// personal-channel membership.
func (h *Hub) admit(c *Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	h.presence.Register(c.Identity().UserID, c)
	h.rooms.Join(c, PersonalRoom(c.Identity().UserID))
}

// Dispatch routes one decoded event to its handler. Handlers run
// synchronously in the connection's read goroutine, so each sender's
// events are processed in order.
func (h *Hub) Dispatch(c *Conn, ev Event) {
	switch e := ev.(type) {
	case JoinRoom:
		if e.RoomKey == "" {
			return
		}
		// Personal channels carry other users' notification previews;
		// clients never join them by key.
		if strings.HasPrefix(e.RoomKey, personalRoomPrefix) {
			h.logger.Warn().
				Str("conn_id", c.ID()).
				Str("user_id", c.Identity().UserID).
				Str("room_key", e.RoomKey).
				Msg("Rejected join into reserved room namespace")
			return
		}
		h.rooms.Join(c, e.RoomKey)

	case SendMessage:
		h.pipeline.HandleSend(c, e)

	case CallOffer:
		h.relay.HandleOffer(c, e)

	case CallAnswer:
		h.relay.HandleAnswer(c, e)

	case ICECandidate:
		h.relay.HandleCandidate(c, e)

	case EndCall:
		h.relay.HandleEnd(c, e)
	}
}

// Disconnect retracts the handle from presence and every room and closes
// its send queue. Idempotent and safe on a handle that never completed
// attachment; it must never panic, whatever state the connection died in.
func (h *Hub) Disconnect(c *Conn) {
	h.mu.Lock()
	_, attached := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()

	if !attached {
		return
	}

	h.presence.Unregister(c.Identity().UserID, c)
	h.rooms.LeaveAll(c)
	c.closeSend()

	h.logger.Info().
		Str("conn_id", c.ID()).
		Str("user_id", c.Identity().UserID).
		Msg("Connection cleaned up")
}

// MarkRead exposes the pipeline's bulk read-flag update to the REST surface.
func (h *Hub) MarkRead(ctx context.Context, sessionKey, readerID string) error {
	return h.pipeline.MarkRead(ctx, sessionKey, readerID)
}

// Shutdown disconnects every attached connection. Closed send queues make
// the write pumps send close frames and tear the sockets down.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.Disconnect(c)
	}

	h.logger.Info().Int("connections", len(conns)).Msg("Hub shutdown complete")
}
