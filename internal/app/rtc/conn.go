package rtc

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"carelink/internal/pkg/errs"
	"carelink/internal/pkg/logx"
)

const (
	// timeout for a single write to the websocket.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong before the peer is considered gone.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxFrameSize = 8192

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

// Conn is one live, authenticated websocket connection. A user with
// several tabs open holds several Conn handles; the handle id tells them
// apart in the presence and room tables.
type Conn struct {
	id       string
	identity Identity

	hub  *Hub
	sock *websocket.Conn

	// send queues outbound frames for WritePump. Closed exactly once by
	// the cleanup path; closed guards enqueue against the closed channel.
	send   chan []byte
	mu     sync.RWMutex
	closed bool

	logger zerolog.Logger
}

func newConn(hub *Hub, sock *websocket.Conn, identity Identity) *Conn {
	id := uuid.NewString()

	logger := logx.Logger().With().
		Str("conn_id", id).
		Str("user_id", identity.UserID).
		Str("role", identity.Role).
		Logger()

	return &Conn{
		id:       id,
		identity: identity,
		hub:      hub,
		sock:     sock,
		send:     make(chan []byte, sendQueueSize),
		logger:   logger,
	}
}

// ID returns the handle's unique id.
func (c *Conn) ID() string {
	return c.id
}

// Identity returns the identity fixed at handshake time.
func (c *Conn) Identity() Identity {
	return c.identity
}

// enqueue queues a frame for delivery without blocking. Frames for a full
// queue or a closed connection are dropped; a stalled receiver is the
// transport's problem, never the sender's.
func (c *Conn) enqueue(frame []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping frame")
		return false
	}
}

// sendEvent marshals and queues an outbound envelope.
func (c *Conn) sendEvent(event string, data any) {
	frame, err := EncodeEvent(event, data)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Failed to encode outbound event")
		return
	}
	c.enqueue(frame)
}

// sendError reports a scoped, recoverable failure to this connection only.
func (c *Conn) sendError(customErr *errs.CustomError) {
	c.sendEvent(EventMessageError, ErrorPayload{
		Code:  customErr.Code,
		Error: customErr.Message,
	})
}

// closeSend closes the outbound queue exactly once.
func (c *Conn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads frames until the connection dies, decoding each into its
// typed event and driving the hub handler sequentially. Sequential
// dispatch is what makes persist-then-broadcast a structural guarantee
// for each sender. Always ends in hub cleanup.
func (c *Conn) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)

		if err := c.sock.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in ReadPump")
		}
	}()

	c.sock.SetReadLimit(maxFrameSize)

	if err := c.sock.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			break
		}

		ev, err := DecodeEvent(frame)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Dropping undecodable frame")
			continue
		}

		c.hub.Dispatch(c, ev)
	}
}

// WritePump drains the send queue onto the socket and keeps the heartbeat
// alive. It exits when the queue closes or a write fails.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.sock.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.sock.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
