package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modavia/backend/internal/models"
)

// stallingBus simulates an event bus whose subscribe hangs on the network
// until released.
type stallingBus struct {
	started   chan struct{}
	release   chan struct{}
	cancelled chan struct{}
}

func (b *stallingBus) PublishUserEvent(userID uuid.UUID, event string, payload []byte) error {
	return nil
}

func (b *stallingBus) SubscribeUser(userID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	close(b.started)
	<-b.release
	return func() { close(b.cancelled) }, nil
}

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return &Client{hub: hub, send: make(chan WSMessage, sendBufferSize), userID: userID}
}

func TestHubPushNotificationReachesUserConnections(t *testing.T) {
	hub := NewHub(nil, nil)
	userID := uuid.New()
	other := uuid.New()

	c1 := newTestClient(hub, userID)
	c2 := newTestClient(hub, userID)
	c3 := newTestClient(hub, other)
	hub.register(c1)
	hub.register(c2)
	hub.register(c3)

	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    models.NotificationTypeCatalogAdded,
		Message: "New List Acme Available Now!",
	}
	hub.PushNotification(userID, n)

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			assert.Equal(t, EventNotification, msg.Event)
			var got models.Notification
			require.NoError(t, json.Unmarshal(msg.Data, &got))
			assert.Equal(t, n.ID, got.ID)
			assert.Equal(t, n.Message, got.Message)
		default:
			t.Fatal("expected a queued event for the user's connection")
		}
	}
	assert.Empty(t, c3.send, "other users must not receive the event")
}

func TestHubUnregisterDropsUser(t *testing.T) {
	hub := NewHub(nil, nil)
	userID := uuid.New()

	c1 := newTestClient(hub, userID)
	c2 := newTestClient(hub, userID)
	hub.register(c1)
	hub.register(c2)
	assert.Equal(t, 1, hub.ConnectedUsers())

	hub.unregister(c1)
	assert.Equal(t, 1, hub.ConnectedUsers())

	hub.unregister(c2)
	assert.Equal(t, 0, hub.ConnectedUsers())

	// Pushing to a fully disconnected user is a no-op.
	hub.PushNotification(userID, &models.Notification{ID: uuid.New()})
}

func TestHubStaysResponsiveWhileSubscribing(t *testing.T) {
	bus := &stallingBus{
		started:   make(chan struct{}),
		release:   make(chan struct{}),
		cancelled: make(chan struct{}),
	}
	hub := NewHub(bus, nil)
	userID := uuid.New()

	c1 := newTestClient(hub, userID)
	registered := make(chan struct{})
	go func() {
		hub.register(c1)
		close(registered)
	}()
	<-bus.started

	// Bookkeeping must proceed while the subscription is still connecting.
	done := make(chan struct{})
	go func() {
		c2 := newTestClient(hub, userID)
		hub.register(c2)
		hub.deliverLocal(userID, WSMessage{Event: EventNotification})
		hub.unregister(c2)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub blocked while a subscription was connecting")
	}
	assert.Equal(t, 1, hub.ConnectedUsers())

	close(bus.release)
	<-registered

	hub.unregister(c1)
	select {
	case <-bus.cancelled:
	case <-time.After(time.Second):
		t.Fatal("subscription not cancelled after the last disconnect")
	}
}

func TestHubSkipsSlowConsumer(t *testing.T) {
	hub := NewHub(nil, nil)
	userID := uuid.New()

	c := &Client{hub: hub, send: make(chan WSMessage), userID: userID} // no buffer
	hub.register(c)

	// Must not block even though nothing reads from the channel.
	hub.PushNotification(userID, &models.Notification{ID: uuid.New()})
}
