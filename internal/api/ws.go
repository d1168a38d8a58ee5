package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/qially/portal/internal/bus"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/session"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second

	// readLimit bounds inbound frames. Clients only listen on this channel;
	// anything they send is drained and discarded, so a small cap is plenty.
	readLimit = 4 << 10
)

// WsHandler upgrades GET /ws connections and binds them to the hub.
type WsHandler struct {
	sessions *session.Store
	hub      *bus.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWsHandler(sessions *session.Store, hub *bus.Hub, logger *zap.Logger) *WsHandler {
	return &WsHandler{
		sessions: sessions,
		hub:      hub,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// acme.qially.com connects to the shared portal host, so any
			// origin is accepted. The session token is the access control.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws?token=<session token>.
//
// Browsers cannot set headers on websocket upgrades, so the bearer token
// rides in the query string instead. The connection is bound to the session's
// user and tenant at register time — that binding is what lets the hub scope
// every broadcast. Anonymous connections are rejected, not silently tolerated.
func (h *WsHandler) Serve(c *gin.Context) {
	sess, ok := h.sessions.Validate(c.Query("token"))
	if !ok {
		httpx.Respond(c, httpx.Unauthenticated("valid session token required"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := bus.NewClient(sess.UserID, sess.TenantSlug)
	h.hub.Register(client)

	go h.writeLoop(client, conn)
	go h.readLoop(client, conn)
}

// writeLoop drains the client's event channel onto the socket, preserving
// broadcast order. It exits when the channel closes (unregistered) or a
// write fails (peer gone), and either way the socket ends up closed.
func (h *WsHandler) writeLoop(client *bus.Client, conn *websocket.Conn) {
	defer conn.Close()

	for event := range client.Events() {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(event); err != nil {
			h.hub.Unregister(client.ID)
			return
		}
	}
}

// readLoop exists to notice disconnects: the read returns an error the
// moment the peer closes, and unregistering cancels every pending send for
// this connection. Inbound payloads are discarded — this channel is
// server-push only.
func (h *WsHandler) readLoop(client *bus.Client, conn *websocket.Conn) {
	conn.SetReadLimit(readLimit)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(client.ID)
			return
		}
	}
}
