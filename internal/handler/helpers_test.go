package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"carelink/internal/app/message"
	"carelink/internal/app/rtc"
	"carelink/internal/configs"
	authjwt "carelink/internal/pkg/auth/jwt"
)

const testSecret = "handler-test-secret"

// memStore is an in-memory message.Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	saved    []message.Record
	failSave bool
}

func (s *memStore) Save(ctx context.Context, rec *message.Record) (*message.Record, error) {
	if s.failSave {
		return nil, errors.New("store unavailable")
	}

	saved := *rec
	saved.ID = uuid.NewString()
	saved.Timestamp = time.Now()

	s.mu.Lock()
	s.saved = append(s.saved, saved)
	s.mu.Unlock()

	return &saved, nil
}

func (s *memStore) FindBySession(ctx context.Context, sessionKey string) ([]message.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []message.Record{}
	for _, rec := range s.saved {
		if rec.SessionKey == sessionKey {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memStore) MarkRead(ctx context.Context, sessionKey, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.saved {
		if s.saved[i].SessionKey == sessionKey && s.saved[i].ReceiverID == readerID {
			s.saved[i].Read = true
		}
	}
	return nil
}

// newTestServer spins up the full router against an in-memory store.
func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := &memStore{}
	hub := rtc.NewHub(store)
	t.Cleanup(hub.Shutdown)

	deps := &AppDeps{
		Hub: hub,
		Config: &configs.AppConfig{
			Environment: "development",
			JWTSecret:   testSecret,
		},
		Store:          store,
		StorageService: fakeStorage{},
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)

	return srv, store
}

func mintToken(t *testing.T, userID, role string) string {
	t.Helper()

	token, err := authjwt.GenerateToken(userID, role, testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

// dialWS opens an authenticated websocket against the test server.
func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { ws.Close() })

	return ws
}

func sendEvent(t *testing.T, ws *websocket.Conn, event string, data any) {
	t.Helper()

	frame, err := rtc.EncodeEvent(event, data)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, frame))
}

// waitForEvent reads frames until the named event arrives, failing the test
// when nothing matches within the deadline.
func waitForEvent(t *testing.T, ws *websocket.Conn, event string) rtc.Envelope {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, ws.SetReadDeadline(deadline))

		_, frame, err := ws.ReadMessage()
		require.NoError(t, err, "timed out waiting for %q", event)

		var env rtc.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		if env.Event == event {
			return env
		}
	}
}

// requireSilence asserts no frame arrives within the window.
func requireSilence(t *testing.T, ws *websocket.Conn, window time.Duration) {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(window)))

	_, frame, err := ws.ReadMessage()
	require.Error(t, err, "expected silence, got frame %s", frame)
}

func unmarshalData[T any](t *testing.T, env rtc.Envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
