package bus

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func drain(c *Client) []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestBroadcastReachesOnlyTheAudience(t *testing.T) {
	hub := NewHub(zap.NewNop())

	u1 := uuid.New() // acme-corp, participant
	u2 := uuid.New() // acme-corp, participant
	u3 := uuid.New() // other-corp, NOT a participant

	c1 := NewClient(u1, "acme-corp")
	c2 := NewClient(u2, "acme-corp")
	c3 := NewClient(u3, "other-corp")
	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	hub.Broadcast(Event{Type: EventNewMessage, Data: "hello"}, []uuid.UUID{u1, u2})

	assert.Len(t, drain(c1), 1)
	assert.Len(t, drain(c2), 1)
	assert.Empty(t, drain(c3), "a connection outside the conversation must receive nothing")
}

func TestBroadcastToUsersWithoutConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// Audience member with no live connection: nothing to deliver, no error.
	hub.Broadcast(Event{Type: EventNewMessage, Data: "into the void"}, []uuid.UUID{uuid.New()})
	assert.Equal(t, 0, hub.Len())
}

func TestSameUserMultipleConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())
	userID := uuid.New()

	a := NewClient(userID, "acme-corp")
	b := NewClient(userID, "acme-corp")
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(Event{Type: EventNewMessage, Data: "x"}, []uuid.UUID{userID})

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestPerConnectionOrdering(t *testing.T) {
	hub := NewHub(zap.NewNop())
	userID := uuid.New()
	c := NewClient(userID, "acme-corp")
	hub.Register(c)

	for i := 0; i < 5; i++ {
		hub.Broadcast(Event{Type: EventNewMessage, Data: i}, []uuid.UUID{userID})
	}

	events := drain(c)
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, i, ev.Data)
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	var dropped int
	hub := NewHub(zap.NewNop(), WithDeliveryFuncs(nil, func() { dropped++ }))
	userID := uuid.New()
	c := NewClient(userID, "acme-corp")
	hub.Register(c)

	// Nobody drains the channel; overflow past the buffer must evict the
	// client instead of blocking the broadcaster.
	for i := 0; i < sendBuffer+10; i++ {
		hub.Broadcast(Event{Type: EventNewMessage, Data: i}, []uuid.UUID{userID})
	}

	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, 1, dropped)

	// The channel was closed on eviction: the queued events drain, then ok
	// flips to false.
	events := drain(c)
	assert.Len(t, events, sendBuffer)
	_, ok := <-c.Events()
	assert.False(t, ok)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := NewClient(uuid.New(), "acme-corp")
	hub.Register(c)

	hub.Unregister(c.ID)
	hub.Unregister(c.ID)

	assert.Equal(t, 0, hub.Len())

	// Unregistered connections miss subsequent events entirely.
	hub.Broadcast(Event{Type: EventNewMessage, Data: "late"}, []uuid.UUID{c.UserID})
	assert.Empty(t, drain(c))
}

func TestClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := NewClient(uuid.New(), "acme-corp")
	b := NewClient(uuid.New(), "other-corp")
	hub.Register(a)
	hub.Register(b)

	hub.Close()

	assert.Equal(t, 0, hub.Len())
	_, ok := <-a.Events()
	assert.False(t, ok)
	_, ok = <-b.Events()
	assert.False(t, ok)
}
