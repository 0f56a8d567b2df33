package message

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the durable message log the realtime pipeline writes through.
// Save must not return before the record is durable: the pipeline's
// persist-then-broadcast guarantee hangs on it.
type Store interface {
	// Save assigns an id and server timestamp, persists the record, and
	// returns the canonical stored form.
	Save(ctx context.Context, rec *Record) (*Record, error)

	// FindBySession returns every message of a session in send order.
	FindBySession(ctx context.Context, sessionKey string) ([]Record, error)

	// MarkRead flags all messages of the session addressed to readerID as read.
	MarkRead(ctx context.Context, sessionKey, readerID string) error
}

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Save(ctx context.Context, rec *Record) (*Record, error) {
	saved := *rec
	saved.ID = uuid.NewString()
	saved.Read = false

	if saved.Attachments == nil {
		saved.Attachments = []string{}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, session_key, sender_id, receiver_id, sender_role, sender_name, body, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		saved.ID, saved.SessionKey, saved.SenderID, saved.ReceiverID,
		saved.SenderRole, saved.SenderName, saved.Body, saved.Attachments,
	)

	if err := row.Scan(&saved.Timestamp); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	return &saved, nil
}

func (s *PGStore) FindBySession(ctx context.Context, sessionKey string) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_key, sender_id, receiver_id, sender_role, sender_name, body, attachments, read, created_at
		FROM messages
		WHERE session_key = $1
		ORDER BY created_at ASC`,
		sessionKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session messages: %w", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(
			&rec.ID, &rec.SessionKey, &rec.SenderID, &rec.ReceiverID,
			&rec.SenderRole, &rec.SenderName, &rec.Body, &rec.Attachments,
			&rec.Read, &rec.Timestamp,
		)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan session messages: %w", err)
	}

	return records, nil
}

func (s *PGStore) MarkRead(ctx context.Context, sessionKey, readerID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET read = TRUE
		WHERE session_key = $1 AND receiver_id = $2 AND NOT read`,
		sessionKey, readerID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session messages read: %w", err)
	}

	return nil
}
