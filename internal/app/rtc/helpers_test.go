package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"carelink/internal/app/message"
)

// fakeStore is an in-memory message.Store for pipeline and hub tests.
type fakeStore struct {
	mu    sync.Mutex
	saved []message.Record

	// failSave makes Save return an error without storing anything.
	failSave bool

	// onSave runs inside Save, before it returns; used to interleave
	// room-membership changes with the persistence wait.
	onSave func()

	markReadCalls [][2]string
}

func (s *fakeStore) Save(ctx context.Context, rec *message.Record) (*message.Record, error) {
	if s.failSave {
		return nil, errors.New("store unavailable")
	}

	if s.onSave != nil {
		s.onSave()
	}

	saved := *rec
	saved.ID = uuid.NewString()
	saved.Timestamp = time.Now()

	s.mu.Lock()
	s.saved = append(s.saved, saved)
	s.mu.Unlock()

	return &saved, nil
}

func (s *fakeStore) FindBySession(ctx context.Context, sessionKey string) ([]message.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []message.Record
	for _, rec := range s.saved {
		if rec.SessionKey == sessionKey {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkRead(ctx context.Context, sessionKey, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markReadCalls = append(s.markReadCalls, [2]string{sessionKey, readerID})
	for i := range s.saved {
		if s.saved[i].SessionKey == sessionKey && s.saved[i].ReceiverID == readerID {
			s.saved[i].Read = true
		}
	}
	return nil
}

func (s *fakeStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// newTestConn builds a handle without a socket; tests read queued frames
// straight off the send channel.
func newTestConn(userID, role string) *Conn {
	return newConn(nil, nil, Identity{UserID: userID, Role: role})
}

// recvEvent pops the next queued frame, or reports that none arrived.
func recvEvent(t *testing.T, c *Conn) (Envelope, bool) {
	t.Helper()

	select {
	case frame, ok := <-c.send:
		if !ok {
			return Envelope{}, false
		}
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env, true
	case <-time.After(200 * time.Millisecond):
		return Envelope{}, false
	}
}

// requireEvent pops the next frame and asserts its event name.
func requireEvent(t *testing.T, c *Conn, event string) Envelope {
	t.Helper()

	env, ok := recvEvent(t, c)
	require.True(t, ok, "expected %q event, got none", event)
	require.Equal(t, event, env.Event)
	return env
}

// requireNoEvent asserts that no frame is queued for the handle.
func requireNoEvent(t *testing.T, c *Conn) {
	t.Helper()

	env, ok := recvEvent(t, c)
	require.False(t, ok, "expected no event, got %q", env.Event)
}

func decodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
