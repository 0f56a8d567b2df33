package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelink/internal/app/message"
	"carelink/internal/app/rtc"
	authjwt "carelink/internal/pkg/auth/jwt"
)

func TestWebSocketRejectsBadCredential(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, token := range []string{"", "garbage"} {
		resp, err := http.Get(srv.URL + "/ws?token=" + token)
		require.NoError(t, err)
		resp.Body.Close()

		// The connection is never upgraded; the JSON envelope carries the
		// business code.
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestMessageFlowPatientToDoctor(t *testing.T) {
	srv, store := newTestServer(t)

	patient := dialWS(t, srv, mintToken(t, "p1", authjwt.RolePatient))
	doctor := dialWS(t, srv, mintToken(t, "d1", authjwt.RoleDoctor))

	sendEvent(t, patient, rtc.EventJoinRoom, rtc.JoinRoom{RoomKey: "appt-1"})
	sendEvent(t, doctor, rtc.EventJoinRoom, rtc.JoinRoom{RoomKey: "appt-1"})

	// Let the joins land before sending.
	time.Sleep(200 * time.Millisecond)

	sendEvent(t, patient, rtc.EventSendMessage, rtc.SendMessage{
		SessionKey: "appt-1",
		ReceiverID: "d1",
		Body:       "hello",
		SenderName: "Pat",
	})

	env := waitForEvent(t, doctor, rtc.EventReceiveMessage)
	rec := unmarshalData[message.Record](t, env)
	assert.Equal(t, "hello", rec.Body)
	assert.Equal(t, "p1", rec.SenderID)
	assert.NotEmpty(t, rec.ID)

	notifEnv := waitForEvent(t, doctor, rtc.EventNotification)
	notif := unmarshalData[rtc.NotificationPayload](t, notifEnv)
	assert.Equal(t, "appt-1", notif.SessionKey)
	assert.Equal(t, "hello", notif.Preview)
	assert.Equal(t, "Pat", notif.SenderName)

	// The persisted record matches what was broadcast.
	saved, err := store.FindBySession(context.Background(), "appt-1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, rec.ID, saved[0].ID)
}

func TestPersistenceFailureReachesOnlySender(t *testing.T) {
	srv, store := newTestServer(t)
	store.failSave = true

	patient := dialWS(t, srv, mintToken(t, "p1", authjwt.RolePatient))
	doctor := dialWS(t, srv, mintToken(t, "d1", authjwt.RoleDoctor))

	sendEvent(t, patient, rtc.EventJoinRoom, rtc.JoinRoom{RoomKey: "appt-1"})
	sendEvent(t, doctor, rtc.EventJoinRoom, rtc.JoinRoom{RoomKey: "appt-1"})
	time.Sleep(200 * time.Millisecond)

	sendEvent(t, patient, rtc.EventSendMessage, rtc.SendMessage{
		SessionKey: "appt-1",
		ReceiverID: "d1",
		Body:       "hello",
	})

	waitForEvent(t, patient, rtc.EventMessageError)
	requireSilence(t, doctor, 300*time.Millisecond)
}

func TestCallOfferToDisconnectedUser(t *testing.T) {
	srv, _ := newTestServer(t)

	doctor := dialWS(t, srv, mintToken(t, "d1", authjwt.RoleDoctor))

	sendEvent(t, doctor, rtc.EventCallOffer, rtc.CallOffer{
		ReceiverID: "p1",
		SessionKey: "appt-1",
	})

	env := waitForEvent(t, doctor, rtc.EventUserOffline)
	payload := unmarshalData[rtc.UserOfflinePayload](t, env)
	assert.Equal(t, "User offline", payload.Message)

	requireSilence(t, doctor, 300*time.Millisecond)
}

func TestSignalingRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	doctor := dialWS(t, srv, mintToken(t, "d1", authjwt.RoleDoctor))
	patient := dialWS(t, srv, mintToken(t, "p1", authjwt.RolePatient))

	// Presence registration happens at attach; no join needed for calls.
	time.Sleep(200 * time.Millisecond)

	sendEvent(t, doctor, rtc.EventCallOffer, rtc.CallOffer{
		ReceiverID: "p1",
		SessionKey: "appt-1",
		Offer:      []byte(`{"type":"offer","sdp":"v=0"}`),
	})

	incoming := waitForEvent(t, patient, rtc.EventIncomingCall)
	offer := unmarshalData[rtc.IncomingCallPayload](t, incoming)
	assert.Equal(t, "d1", offer.CallerID)

	sendEvent(t, patient, rtc.EventCallAnswer, rtc.CallAnswer{
		CallerID: offer.CallerID,
		Answer:   []byte(`{"type":"answer","sdp":"v=0"}`),
	})
	waitForEvent(t, doctor, rtc.EventCallAnswer)

	sendEvent(t, doctor, rtc.EventEndCall, rtc.EndCall{TargetID: "p1"})
	waitForEvent(t, patient, rtc.EventCallEnded)
}

func TestTwoTabsReceiveExactlyOneCopyEach(t *testing.T) {
	srv, _ := newTestServer(t)

	tab1 := dialWS(t, srv, mintToken(t, "u1", authjwt.RoleDoctor))
	tab2 := dialWS(t, srv, mintToken(t, "u1", authjwt.RoleDoctor))
	patient := dialWS(t, srv, mintToken(t, "p1", authjwt.RolePatient))

	sendEvent(t, tab1, rtc.EventJoinRoom, rtc.JoinRoom{RoomKey: "appt-1"})
	sendEvent(t, tab2, rtc.EventJoinRoom, rtc.JoinRoom{RoomKey: "appt-1"})
	sendEvent(t, patient, rtc.EventJoinRoom, rtc.JoinRoom{RoomKey: "appt-1"})
	time.Sleep(200 * time.Millisecond)

	sendEvent(t, patient, rtc.EventSendMessage, rtc.SendMessage{
		SessionKey: "appt-1",
		ReceiverID: "u1",
		Body:       "hello",
	})

	for _, tab := range []*websocket.Conn{tab1, tab2} {
		env := waitForEvent(t, tab, rtc.EventReceiveMessage)
		rec := unmarshalData[message.Record](t, env)
		assert.Equal(t, "hello", rec.Body)

		// Both tabs also sit in u1's personal channel.
		waitForEvent(t, tab, rtc.EventNotification)

		// Exactly once: nothing further arrives.
		requireSilence(t, tab, 300*time.Millisecond)
	}
}

func TestDisconnectRetractsPresence(t *testing.T) {
	srv, _ := newTestServer(t)

	doctor := dialWS(t, srv, mintToken(t, "d1", authjwt.RoleDoctor))
	patient := dialWS(t, srv, mintToken(t, "p1", authjwt.RolePatient))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, patient.Close())
	time.Sleep(200 * time.Millisecond)

	sendEvent(t, doctor, rtc.EventCallOffer, rtc.CallOffer{
		ReceiverID: "p1",
		SessionKey: "appt-1",
	})

	waitForEvent(t, doctor, rtc.EventUserOffline)
}
