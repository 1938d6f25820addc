package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modavia/backend/internal/models"
)

// WSMessage is the frame sent to websocket clients.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event names pushed to clients.
const (
	EventNotification = "notification"
)

// eventBus carries per-user events across instances. Implemented by
// *RedisPubSub.
type eventBus interface {
	PublishUserEvent(userID uuid.UUID, event string, payload []byte) error
	SubscribeUser(userID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub tracks websocket connections keyed by user and delivers server-side
// events to them. With a Redis bridge attached, events published on one
// instance reach users connected to any instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
	// cancels holds the Redis subscription cancel per user with at least
	// one live connection on this instance.
	cancels map[uuid.UUID]func()

	pubsub eventBus // optional
	logger *zap.Logger
}

// NewHub creates a connection hub. pubsub may be nil for single-instance
// deployments; events are then delivered to local connections only.
func NewHub(pubsub eventBus, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		cancels: make(map[uuid.UUID]func()),
		pubsub:  pubsub,
		logger:  logger,
	}
}

// register adds a connection and, on the user's first connection here,
// subscribes to their Redis channel. The subscribe happens outside the
// hub lock: it blocks on Redis, and bookkeeping must never wait on
// network I/O.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	conns, ok := h.clients[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.userID] = conns
	}
	conns[c] = struct{}{}
	connected := len(conns)
	h.mu.Unlock()

	if !ok && h.pubsub != nil {
		userID := c.userID
		cancel, err := h.pubsub.SubscribeUser(userID, func(event string, payload []byte) {
			h.deliverLocal(userID, WSMessage{Event: event, Data: payload})
		})
		if err != nil {
			h.logger.Error("user channel subscribe failed", zap.Error(err), zap.String("user_id", userID.String()))
		} else {
			h.mu.Lock()
			if _, live := h.clients[userID]; live {
				h.cancels[userID] = cancel
				cancel = nil
			}
			h.mu.Unlock()
			// The user disconnected while the subscription was connecting.
			if cancel != nil {
				cancel()
			}
		}
	}

	h.logger.Debug("ws client connected", zap.String("user_id", c.userID.String()), zap.Int("connections", connected))
}

// unregister removes a connection and tears down the Redis subscription
// when the user's last connection here closes.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)

	if len(conns) == 0 {
		delete(h.clients, c.userID)
		if cancel, ok := h.cancels[c.userID]; ok {
			cancel()
			delete(h.cancels, c.userID)
		}
	}
	h.logger.Debug("ws client disconnected", zap.String("user_id", c.userID.String()))
}

// deliverLocal sends a message to every live connection of a user on this
// instance. Slow consumers with a full send buffer are skipped.
func (h *Hub) deliverLocal(userID uuid.UUID, msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("ws send buffer full, dropping event", zap.String("user_id", userID.String()), zap.String("event", msg.Event))
		}
	}
}

// PushNotification delivers a realtime copy of a notification to the user.
// Best effort: delivery failures are logged, never surfaced to the caller.
func (h *Hub) PushNotification(userID uuid.UUID, n *models.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("marshal notification", zap.Error(err))
		return
	}
	if h.pubsub != nil {
		// Local connections receive it through their subscription.
		if err := h.pubsub.PublishUserEvent(userID, EventNotification, payload); err != nil {
			h.logger.Warn("publish notification event failed", zap.Error(err), zap.String("user_id", userID.String()))
			h.deliverLocal(userID, WSMessage{Event: EventNotification, Data: payload})
		}
		return
	}
	h.deliverLocal(userID, WSMessage{Event: EventNotification, Data: payload})
}

// ConnectedUsers returns the number of distinct users connected here.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
