/*
Package message owns the durable chat message log.

It defines the Record persisted for every delivered chat message and the
Store interface the realtime pipeline and the REST handlers write through.
*/
package message

import "time"

// Record is the canonical, persisted form of a chat message. The id and
// timestamp are assigned by the store on save; clients reconcile their
// optimistic copies against the broadcast record by id.
type Record struct {
	ID          string    `json:"id"`
	SessionKey  string    `json:"sessionKey"`
	SenderID    string    `json:"senderId"`
	ReceiverID  string    `json:"receiverId"`
	SenderRole  string    `json:"senderRole"`
	SenderName  string    `json:"senderName"`
	Body        string    `json:"body"`
	Attachments []string  `json:"attachments,omitempty"`
	Read        bool      `json:"read"`
	Timestamp   time.Time `json:"timestamp"`
}
