package rtc

import (
	"github.com/rs/zerolog"

	"carelink/internal/pkg/logx"
)

// Relay forwards WebRTC negotiation payloads between two identified peers.
// It is deliberately stateless: no notion of "a call in progress" lives
// here, payload bodies are never inspected, and nothing is persisted.
// Out-of-context signaling is forwarded as-is; call state, if a client
// needs it, is the client's concern.
type Relay struct {
	presence *Presence
	logger   zerolog.Logger
}

// NewRelay wires the relay to the presence registry it routes by.
func NewRelay(presence *Presence) *Relay {
	return &Relay{
		presence: presence,
		logger:   logx.Logger().With().Str("component", "relay").Logger(),
	}
}

// HandleOffer relays a call offer to every live handle of the receiver.
// An offline receiver yields user-offline back to the calling tab; that is
// the common case, not a failure.
func (r *Relay) HandleOffer(c *Conn, ev CallOffer) {
	targets := r.presence.Lookup(ev.ReceiverID)
	if len(targets) == 0 {
		c.sendEvent(EventUserOffline, UserOfflinePayload{Message: "User offline"})
		return
	}

	r.forward(targets, EventIncomingCall, IncomingCallPayload{
		CallerID:   c.Identity().UserID,
		SessionKey: ev.SessionKey,
		Offer:      ev.Offer,
	})
}

// HandleAnswer relays an answer back to the original caller. A caller who
// disconnected since offering gets nothing: the answer is dropped silently
// because there is no one left to tell.
func (r *Relay) HandleAnswer(c *Conn, ev CallAnswer) {
	targets := r.presence.Lookup(ev.CallerID)
	if len(targets) == 0 {
		r.logger.Debug().Str("caller_id", ev.CallerID).Msg("Dropping answer for vanished caller")
		return
	}

	r.forward(targets, EventCallAnswer, CallAnswerPayload{Answer: ev.Answer})
}

// HandleCandidate relays one ICE candidate to its target. Pure
// pass-through: no ordering, no buffering.
func (r *Relay) HandleCandidate(c *Conn, ev ICECandidate) {
	targets := r.presence.Lookup(ev.TargetID)
	if len(targets) == 0 {
		return
	}

	r.forward(targets, EventICECandidate, ICECandidatePayload{Candidate: ev.Candidate})
}

// HandleEnd asks the other party to tear down. Repeats and ends for calls
// that never were are fine; the event carries no state to conflict with.
func (r *Relay) HandleEnd(c *Conn, ev EndCall) {
	targets := r.presence.Lookup(ev.TargetID)
	if len(targets) == 0 {
		return
	}

	r.forward(targets, EventCallEnded, nil)
}

func (r *Relay) forward(targets []*Conn, event string, payload any) {
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event", event).Msg("Failed to encode relay frame")
		return
	}

	for _, t := range targets {
		t.enqueue(frame)
	}
}
