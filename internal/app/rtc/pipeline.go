package rtc

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"carelink/internal/app/message"
	"carelink/internal/pkg/errs"
	"carelink/internal/pkg/logx"
)

const (
	// MaxContentBytes caps the text body of one message.
	MaxContentBytes = 5000

	// previewRunes caps the preview carried by cross-session notifications.
	previewRunes = 120

	// saveTimeout bounds the persistence round-trip for one send.
	saveTimeout = 5 * time.Second
)

// Pipeline drives a chat send from raw event to delivered record:
// validate, persist, broadcast to the session room, then notify the
// receiver's personal channel.
//
// Persist-then-broadcast is mandatory: the broadcast payload is the stored
// record with its server-assigned id and timestamp, and a failed write
// must never leak a message to the room. Delivery is at-most-once on
// failure; the sender is told and may resubmit.
type Pipeline struct {
	store    message.Store
	rooms    *Rooms
	presence *Presence
	logger   zerolog.Logger
}

// NewPipeline wires the pipeline to its store and delivery tables.
func NewPipeline(store message.Store, rooms *Rooms, presence *Presence) *Pipeline {
	return &Pipeline{
		store:    store,
		rooms:    rooms,
		presence: presence,
		logger:   logx.Logger().With().Str("component", "pipeline").Logger(),
	}
}

// HandleSend processes one send-message event from the given connection.
// Validation and persistence failures are reported to the sender only.
func (p *Pipeline) HandleSend(c *Conn, ev SendMessage) {
	if customErr := p.validate(ev); customErr != nil {
		c.sendError(customErr)
		return
	}

	identity := c.Identity()

	attachmentKeys := make([]string, 0, len(ev.Attachments))
	for _, a := range ev.Attachments {
		attachmentKeys = append(attachmentKeys, a.Key)
	}

	rec := &message.Record{
		SessionKey:  ev.SessionKey,
		SenderID:    identity.UserID,
		ReceiverID:  ev.ReceiverID,
		SenderRole:  identity.Role,
		SenderName:  ev.SenderName,
		Body:        ev.Body,
		Attachments: attachmentKeys,
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	saved, err := p.store.Save(ctx, rec)
	if err != nil {
		p.logger.Error().Err(err).
			Str("session_key", ev.SessionKey).
			Str("sender_id", identity.UserID).
			Msg("Message persistence failed, nothing broadcast")
		c.sendError(errs.NewError(errs.ErrMessageNotSaved))
		return
	}

	// Membership is read here, after the store round-trip, so anyone who
	// joined or left the session room during the wait is handled with the
	// live view.
	frame, err := EncodeEvent(EventReceiveMessage, saved)
	if err != nil {
		p.logger.Error().Err(err).Str("message_id", saved.ID).Msg("Failed to encode stored record")
		c.sendError(errs.NewError(errs.ErrUnknown))
		return
	}
	p.rooms.Broadcast(ev.SessionKey, frame)

	p.notifyReceiver(ev, saved.SenderName)
}

// notifyReceiver pushes a lightweight preview to the receiver's personal
// channel so a receiver not viewing this session still learns a message
// arrived. Skipped entirely when the receiver is offline.
func (p *Pipeline) notifyReceiver(ev SendMessage, senderName string) {
	if !p.presence.Online(ev.ReceiverID) {
		return
	}

	preview := strings.TrimSpace(ev.Body)
	if preview == "" {
		preview = "Sent an attachment"
	} else if runes := []rune(preview); len(runes) > previewRunes {
		preview = string(runes[:previewRunes])
	}

	frame, err := EncodeEvent(EventNotification, NotificationPayload{
		SessionKey: ev.SessionKey,
		Preview:    preview,
		SenderName: senderName,
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to encode notification")
		return
	}

	p.rooms.Broadcast(PersonalRoom(ev.ReceiverID), frame)
}

// MarkRead flags every message of the session addressed to the reader as
// read. Off the hot path; no broadcast side effect.
func (p *Pipeline) MarkRead(ctx context.Context, sessionKey, readerID string) error {
	return p.store.MarkRead(ctx, sessionKey, readerID)
}

// validate applies the local, non-fatal checks of the received stage.
func (p *Pipeline) validate(ev SendMessage) *errs.CustomError {
	if ev.ReceiverID == "" || ev.SessionKey == "" {
		return errs.NewError(errs.ErrReceiverMissing)
	}

	if strings.TrimSpace(ev.Body) == "" && len(ev.Attachments) == 0 {
		return errs.NewError(errs.ErrMessageBodyEmpty)
	}

	if len(ev.Body) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageTooLong)
	}

	return validateAttachments(ev.SessionKey, ev.Attachments)
}
