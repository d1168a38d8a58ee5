package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qially/portal/internal/bus"
	"github.com/qially/portal/internal/middleware"
	"github.com/qially/portal/internal/observ"
	"github.com/qially/portal/internal/session"
	"github.com/qially/portal/internal/storage/memory"
	"github.com/qially/portal/internal/tenant"
	"go.uber.org/zap"
)

// Deps is everything the router needs. Each component is constructed by the
// caller (main, or a test) and injected — nothing here is a package global,
// so two routers in the same process never share state.
type Deps struct {
	Stores   *memory.Stores
	Sessions *session.Store
	Hub      *bus.Hub
	Resolver *tenant.Resolver
	Metrics  *observ.Metrics
	Logger   *zap.Logger

	// Optional external collaborators; nil means "not configured" and the
	// corresponding routes answer 503.
	Payments  PaymentProvider
	Completer ChatCompleter
}

// NewRouter builds the full route table.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	authHandler := NewAuthHandler(d.Stores.Users, d.Sessions, d.Logger)
	clientHandler := NewClientHandler(d.Stores.Tenants, d.Stores.Users, d.Resolver, d.Logger)
	projectHandler := NewProjectHandler(d.Stores.Projects, d.Logger)
	kbHandler := NewKbHandler(d.Stores.KbFiles, d.Logger)
	conversationHandler := NewConversationHandler(d.Stores.Conversations, d.Stores.Messages, d.Stores.Users, d.Hub, d.Logger)
	invoiceHandler := NewInvoiceHandler(d.Stores.Invoices, d.Payments, d.Logger)
	serviceRequestHandler := NewServiceRequestHandler(d.Stores.ServiceRequests, d.Logger)
	aiHandler := NewAiChatHandler(d.Stores.KbFiles, d.Completer, d.Logger)
	wsHandler := NewWsHandler(d.Sessions, d.Hub, d.Logger)

	// Public surface. Logout lives here, not behind the session middleware:
	// revocation is idempotent, and a second logout with a now-dead token
	// must succeed exactly like the first.
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/tenant", clientHandler.Current)
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/logout", authHandler.Logout)

	// The websocket endpoint authenticates via query token inside the
	// handler (upgrade requests cannot carry an Authorization header).
	r.GET("/ws", wsHandler.Serve)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			d.Metrics.Registry, promhttp.HandlerOpts{},
		)))
	}

	// Everything below requires a valid session.
	authed := r.Group("/api")
	authed.Use(middleware.RequireSession(d.Sessions))

	authed.GET("/user/me", authHandler.Me)

	authed.GET("/clients", clientHandler.List)
	authed.POST("/clients", clientHandler.Create)
	authed.GET("/clients/:slug", clientHandler.Get)
	authed.PATCH("/clients/:slug", clientHandler.Update)
	authed.GET("/clients/:slug/users", clientHandler.Users)

	authed.GET("/projects", projectHandler.List)
	authed.POST("/projects", projectHandler.Create)
	authed.GET("/projects/:id", projectHandler.Get)
	authed.PATCH("/projects/:id", projectHandler.Update)

	authed.GET("/kb", kbHandler.List)
	authed.GET("/kb/search", kbHandler.Search)
	authed.POST("/kb", kbHandler.Create)
	authed.PATCH("/kb/:id", kbHandler.Update)

	authed.GET("/conversations", conversationHandler.List)
	authed.POST("/conversations", conversationHandler.Create)
	authed.GET("/conversations/:id/messages", conversationHandler.Messages)
	authed.POST("/conversations/:id/messages", conversationHandler.CreateMessage)
	authed.POST("/conversations/:id/read", conversationHandler.MarkRead)

	authed.GET("/invoices", invoiceHandler.List)
	authed.POST("/invoices", invoiceHandler.Create)
	authed.POST("/invoices/:id/pay", invoiceHandler.Pay)
	authed.POST("/create-payment-intent", invoiceHandler.CreatePaymentIntent)

	authed.GET("/service-requests", serviceRequestHandler.List)
	authed.POST("/service-requests", serviceRequestHandler.Create)
	authed.PATCH("/service-requests/:id", serviceRequestHandler.Update)

	authed.POST("/ai/chat", aiHandler.Chat)

	return r
}
