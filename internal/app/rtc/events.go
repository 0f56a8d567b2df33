package rtc

import (
	"encoding/json"
	"fmt"
)

// Event names exchanged over the websocket. One JSON envelope is used in
// both directions: {"event": "<name>", "data": {...}}.
const (
	// Inbound
	EventJoinRoom = "join-room"
	// EventJoinSession is an accepted alias for EventJoinRoom; some client
	// builds name the event after the session.
	EventJoinSession  = "join-session"
	EventSendMessage  = "send-message"
	EventCallOffer    = "call-offer"
	EventCallAnswer   = "call-answer" // also outbound, toward the caller
	EventICECandidate = "ice-candidate"
	EventEndCall      = "end-call"

	// Outbound
	EventReceiveMessage = "receive-message"
	EventMessageError   = "message-error"
	EventNotification   = "notification"
	EventIncomingCall   = "incoming-call"
	EventCallEnded      = "call-ended"
	EventUserOffline    = "user-offline"
)

// Envelope is the wire frame for every websocket message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is the closed set of inbound client events. Decoding happens once
// at the connection boundary; handlers receive a concrete variant and
// never touch raw JSON again.
type Event interface {
	isEvent()
}

// JoinRoom joins the connection to a session room.
type JoinRoom struct {
	RoomKey string `json:"roomKey"`
}

// SendMessage runs the message pipeline: validate, persist, broadcast to
// the session room, and notify the receiver's personal channel.
type SendMessage struct {
	SessionKey  string       `json:"sessionKey"`
	ReceiverID  string       `json:"receiverId"`
	Body        string       `json:"body"`
	SenderName  string       `json:"senderName"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// CallOffer proposes a call to a user within a session. The offer body is
// opaque WebRTC SDP, relayed verbatim.
type CallOffer struct {
	ReceiverID string          `json:"receiverId"`
	SessionKey string          `json:"sessionKey"`
	Offer      json.RawMessage `json:"offer"`
}

// CallAnswer answers a previously relayed offer, addressed back to the
// original caller by identity.
type CallAnswer struct {
	CallerID string          `json:"callerId"`
	Answer   json.RawMessage `json:"answer"`
}

// ICECandidate carries one ICE candidate toward the named peer. Candidates
// may arrive in any order relative to offer/answer; the relay does not
// buffer or reorder them.
type ICECandidate struct {
	TargetID  string          `json:"targetId"`
	Candidate json.RawMessage `json:"candidate"`
}

// EndCall asks the named peer to tear the call down. Safe to send twice or
// for a call that already ended.
type EndCall struct {
	TargetID string `json:"targetId"`
}

func (JoinRoom) isEvent()     {}
func (SendMessage) isEvent()  {}
func (CallOffer) isEvent()    {}
func (CallAnswer) isEvent()   {}
func (ICECandidate) isEvent() {}
func (EndCall) isEvent()      {}

// DecodeEvent parses a raw inbound frame into its typed variant. Unknown
// event names and malformed payloads return an error; the connection stays
// up and the frame is dropped by the caller.
func DecodeEvent(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed event frame: %w", err)
	}

	var (
		ev  Event
		err error
	)

	switch env.Event {
	case EventJoinRoom, EventJoinSession:
		var e JoinRoom
		err = json.Unmarshal(env.Data, &e)
		ev = e
	case EventSendMessage:
		var e SendMessage
		err = json.Unmarshal(env.Data, &e)
		ev = e
	case EventCallOffer:
		var e CallOffer
		err = json.Unmarshal(env.Data, &e)
		ev = e
	case EventCallAnswer:
		var e CallAnswer
		err = json.Unmarshal(env.Data, &e)
		ev = e
	case EventICECandidate:
		var e ICECandidate
		err = json.Unmarshal(env.Data, &e)
		ev = e
	case EventEndCall:
		var e EndCall
		err = json.Unmarshal(env.Data, &e)
		ev = e
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}

	if err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", env.Event, err)
	}

	return ev, nil
}

// EncodeEvent marshals an outbound envelope.
func EncodeEvent(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
	}

	return json.Marshal(Envelope{Event: event, Data: raw})
}

// Outbound payloads.

// ErrorPayload rides message-error events, sent to the originating
// connection only.
type ErrorPayload struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// NotificationPayload is the lightweight cross-session notification pushed
// to a receiver's personal channel. It is a preview, not the full record.
type NotificationPayload struct {
	SessionKey string `json:"sessionKey"`
	Preview    string `json:"preview"`
	SenderName string `json:"senderName"`
}

// IncomingCallPayload delivers a relayed offer to the callee.
type IncomingCallPayload struct {
	CallerID   string          `json:"callerId"`
	SessionKey string          `json:"sessionKey"`
	Offer      json.RawMessage `json:"offer"`
}

// CallAnswerPayload delivers a relayed answer to the original caller.
type CallAnswerPayload struct {
	Answer json.RawMessage `json:"answer"`
}

// ICECandidatePayload delivers a relayed candidate to its target.
type ICECandidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
}

// UserOfflinePayload tells the initiator the target has no live
// connection. This is an expected outcome, not an error.
type UserOfflinePayload struct {
	Message string `json:"message"`
}
