/*
Package rtc implements the realtime core of the CareLink server: presence
tracking, room-scoped message delivery, the chat message pipeline, and the
WebRTC call-signaling relay.

A client connects over a websocket, is authenticated from its handshake
token, and is then registered in the presence table and joined to its
personal channel. Chat messages are persisted before they are broadcast;
call-signaling payloads are relayed between peers without being persisted
or inspected.
*/
package rtc

// Identity is the authenticated party behind a connection. It is asserted
// once from the verified handshake credential and never changes for the
// lifetime of the connection.
type Identity struct {
	// UserID is the platform-wide user identifier.
	UserID string `json:"userId"`

	// Role is "patient" or "doctor".
	Role string `json:"role"`
}

// personalRoomPrefix reserves the personal-channel namespace. Client joins
// into it are rejected; only attach may place a handle there.
const personalRoomPrefix = "user:"

// PersonalRoom is the room key of a user's personal channel. Every
// connection of the user joins it on attach, so out-of-band notifications
// reach the user regardless of which session rooms they are viewing.
func PersonalRoom(userID string) string {
	return personalRoomPrefix + userID
}
