// Package bus fans real-time events out to connected websocket clients.
//
// The hub owns the connection registry and nothing else: it never loads or
// stores messages, it only observes creation events handed to it. Delivery is
// best-effort: no acknowledgement, no retry, no replay. A receiver that is
// slow or gone simply misses events; the sender is never told.
//
// Broadcast takes an explicit audience. An event only ever reaches
// connections belonging to users in that audience; the caller derives it from
// the conversation's participants, so nothing crosses a tenant boundary.
package bus

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sendBuffer is the per-connection event queue. A client that falls this far
// behind is dropped rather than allowed to stall the broadcaster.
const sendBuffer = 32

// EventNewMessage is pushed when a chat message is created.
const EventNewMessage = "new_message"

// Event is the JSON envelope written to websocket clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client is one live connection, bound at register time to the user and
// tenant the connecting session proved. Events arrive on the channel returned
// by Events, in broadcast order; the websocket writer drains it.
type Client struct {
	ID         string
	UserID     uuid.UUID
	TenantSlug string

	send      chan Event
	closeOnce sync.Once
}

// NewClient builds an unregistered client for the given identity.
func NewClient(userID uuid.UUID, tenantSlug string) *Client {
	return &Client{
		ID:         uuid.NewString(),
		UserID:     userID,
		TenantSlug: tenantSlug,
		send:       make(chan Event, sendBuffer),
	}
}

// Events is the client's receive channel. It closes when the client is
// unregistered, which is the writer's signal to shut the socket down.
func (c *Client) Events() <-chan Event {
	return c.send
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Hub is the connection registry. All mutation happens under the mutex; the
// hub is the only component that touches the registry map.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
	logger  *zap.Logger

	// onDelivered / onDropped feed the broadcast counters; either may be nil.
	onDelivered func()
	onDropped   func()
	onCount     func(n int)
}

// Option configures a Hub.
type Option func(*Hub)

// WithDeliveryFuncs registers callbacks for delivered and dropped events.
func WithDeliveryFuncs(delivered, dropped func()) Option {
	return func(h *Hub) {
		h.onDelivered = delivered
		h.onDropped = dropped
	}
}

// WithCountFunc registers a callback invoked with the connection count after
// every register and unregister.
func WithCountFunc(fn func(n int)) Option {
	return func(h *Hub) { h.onCount = fn }
}

func NewHub(logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a client to the registry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()

	if h.onCount != nil {
		h.onCount(n)
	}
	h.logger.Debug("ws client registered",
		zap.String("connection_id", c.ID),
		zap.String("tenant", c.TenantSlug),
	)
}

// Unregister removes a client and closes its event channel. Safe to call
// more than once — disconnect paths race (read error vs. slow-consumer drop)
// and both may land here.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.close()
	if h.onCount != nil {
		h.onCount(n)
	}
	h.logger.Debug("ws client unregistered", zap.String("connection_id", c.ID))
}

// Broadcast queues event on every registered connection whose user is in the
// audience. Fire and forget: a client whose buffer is full is unregistered
// and misses the event, and no error ever reaches the caller.
func (h *Hub) Broadcast(event Event, audience []uuid.UUID) {
	members := make(map[uuid.UUID]struct{}, len(audience))
	for _, id := range audience {
		members[id] = struct{}{}
	}

	h.mu.Lock()
	var stale []*Client
	for _, c := range h.clients {
		if _, ok := members[c.UserID]; !ok {
			continue
		}
		select {
		case c.send <- event:
			if h.onDelivered != nil {
				h.onDelivered()
			}
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		delete(h.clients, c.ID)
	}
	h.mu.Unlock()

	for _, c := range stale {
		c.close()
		if h.onDropped != nil {
			h.onDropped()
		}
		h.logger.Warn("dropping slow ws client",
			zap.String("connection_id", c.ID),
			zap.String("tenant", c.TenantSlug),
		)
	}
}

// Len reports the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close unregisters every client. Used at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
