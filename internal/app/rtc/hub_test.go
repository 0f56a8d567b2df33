package rtc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carelink/internal/app/message"
)

func admitTestConn(h *Hub, userID, role string) *Conn {
	c := newTestConn(userID, role)
	c.hub = h
	h.admit(c)
	return c
}

func TestHubAdmitEstablishesPresenceAndPersonalChannel(t *testing.T) {
	h := NewHub(&fakeStore{})

	c := admitTestConn(h, "u1", "patient")

	assert.True(t, h.presence.Online("u1"))
	assert.True(t, h.rooms.Contains(c, PersonalRoom("u1")))
}

func TestHubDispatchRoutesEvents(t *testing.T) {
	store := &fakeStore{}
	h := NewHub(store)

	patient := admitTestConn(h, "p1", "patient")
	doctor := admitTestConn(h, "d1", "doctor")

	h.Dispatch(patient, JoinRoom{RoomKey: "appt-1"})
	h.Dispatch(doctor, JoinRoom{RoomKey: "appt-1"})

	h.Dispatch(patient, SendMessage{
		SessionKey: "appt-1",
		ReceiverID: "d1",
		Body:       "hello",
		SenderName: "Pat",
	})

	env := requireEvent(t, doctor, EventReceiveMessage)
	rec := decodeData[message.Record](t, env)
	assert.Equal(t, "hello", rec.Body)
	assert.Equal(t, "p1", rec.SenderID)
	assert.NotEmpty(t, rec.ID)

	// Personal channel notification follows the room broadcast.
	requireEvent(t, doctor, EventNotification)

	h.Dispatch(doctor, CallOffer{ReceiverID: "p1", SessionKey: "appt-1"})
	requireEvent(t, patient, EventReceiveMessage) // own message from the room first
	requireEvent(t, patient, EventIncomingCall)
}

// The personal-channel namespace is reserved: a client-supplied join must
// never land a handle in another user's channel, or it would see that
// user's notification previews.
func TestHubDispatchRejectsPersonalChannelJoin(t *testing.T) {
	h := NewHub(&fakeStore{})

	patient := admitTestConn(h, "p1", "patient")
	doctor := admitTestConn(h, "d1", "doctor")
	intruder := admitTestConn(h, "eve", "patient")

	h.Dispatch(intruder, JoinRoom{RoomKey: PersonalRoom("d1")})
	assert.False(t, h.rooms.Contains(intruder, PersonalRoom("d1")))

	h.Dispatch(patient, JoinRoom{RoomKey: "appt-1"})
	h.Dispatch(doctor, JoinRoom{RoomKey: "appt-1"})
	h.Dispatch(patient, SendMessage{
		SessionKey: "appt-1",
		ReceiverID: "d1",
		Body:       "confidential lab results",
		SenderName: "Pat",
	})

	requireEvent(t, doctor, EventReceiveMessage)
	requireEvent(t, doctor, EventNotification)
	requireNoEvent(t, intruder)
}

func TestHubDispatchIgnoresEmptyRoomKey(t *testing.T) {
	h := NewHub(&fakeStore{})
	c := admitTestConn(h, "u1", "patient")

	h.Dispatch(c, JoinRoom{})

	assert.False(t, h.rooms.Contains(c, ""))
}

func TestHubDisconnectCleanupCompleteness(t *testing.T) {
	h := NewHub(&fakeStore{})

	gone := admitTestConn(h, "u1", "patient")
	stays := admitTestConn(h, "u2", "doctor")

	h.Dispatch(gone, JoinRoom{RoomKey: "appt-1"})
	h.Dispatch(stays, JoinRoom{RoomKey: "appt-1"})

	h.Disconnect(gone)

	assert.False(t, h.presence.Online("u1"))
	assert.Empty(t, h.presence.Lookup("u1"))

	// No subsequent broadcast to any of its rooms reaches the handle.
	h.rooms.Broadcast("appt-1", []byte(`{"event":"x"}`))
	h.rooms.Broadcast(PersonalRoom("u1"), []byte(`{"event":"x"}`))

	_, ok := recvEvent(t, gone)
	assert.False(t, ok)

	_, ok = recvEvent(t, stays)
	assert.True(t, ok, "surviving member still receives room traffic")
}

func TestHubDisconnectIdempotent(t *testing.T) {
	h := NewHub(&fakeStore{})
	c := admitTestConn(h, "u1", "patient")

	h.Disconnect(c)
	h.Disconnect(c) // second cleanup is a no-op, must not panic

	// A handle that never attached is a safe no-op too.
	h.Disconnect(newTestConn("u2", "doctor"))
}

func TestHubShutdownDisconnectsEveryone(t *testing.T) {
	h := NewHub(&fakeStore{})

	c1 := admitTestConn(h, "u1", "patient")
	c2 := admitTestConn(h, "u2", "doctor")

	h.Shutdown()

	assert.False(t, h.presence.Online("u1"))
	assert.False(t, h.presence.Online("u2"))

	// Send queues are closed: enqueue reports failure instead of panicking.
	assert.False(t, c1.enqueue([]byte(`{}`)))
	assert.False(t, c2.enqueue([]byte(`{}`)))
}

func TestConnEnqueueDropsWhenFull(t *testing.T) {
	c := newTestConn("u1", "patient")

	for i := 0; i < sendQueueSize; i++ {
		assert.True(t, c.enqueue([]byte(`{}`)))
	}

	assert.False(t, c.enqueue([]byte(`{}`)), "full queue drops instead of blocking")
}
