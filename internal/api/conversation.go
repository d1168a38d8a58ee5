package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qially/portal/internal/bus"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/middleware"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
	"go.uber.org/zap"
)

// ConversationHandler serves conversations and their messages. Message
// creation is the one spot where storage and the bus meet: persist first,
// then fan the event out to the conversation's participants — and only them.
type ConversationHandler struct {
	conversations storage.ConversationRepository
	messages      storage.MessageRepository
	users         storage.UserRepository
	hub           *bus.Hub
	logger        *zap.Logger
}

func NewConversationHandler(
	conversations storage.ConversationRepository,
	messages storage.MessageRepository,
	users storage.UserRepository,
	hub *bus.Hub,
	logger *zap.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		users:         users,
		hub:           hub,
		logger:        logger,
	}
}

// List handles GET /api/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	conversations, err := h.conversations.ListByTenant(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

type createConversationRequest struct {
	TenantSlug     string   `json:"tenant_slug"`
	Title          string   `json:"title" binding:"required"`
	ParticipantIDs []string `json:"participant_ids" binding:"required,min=1"`
}

// Create handles POST /api/conversations. Every participant must be an
// existing user of the conversation's tenant — that is what later makes
// "broadcast to participants" imply "broadcast within one tenant".
func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	slug, ok := tenantScope(c, req.TenantSlug)
	if !ok {
		return
	}

	participants := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Respond(c, httpx.Validation("invalid participant id"))
			return
		}
		user, err := h.users.GetByID(c.Request.Context(), id)
		if err != nil || user.TenantSlug != slug {
			httpx.Respond(c, httpx.Validation("participants must belong to the conversation's tenant"))
			return
		}
		participants = append(participants, id)
	}

	created, err := h.conversations.Create(c.Request.Context(), &models.Conversation{
		TenantSlug:     slug,
		Title:          req.Title,
		ParticipantIDs: participants,
	})
	if err != nil {
		h.logger.Error("create conversation failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// conversation resolves the :id conversation within the caller's authorized
// tenant scope. A conversation of a foreign tenant is a 404, never a leak.
func (h *ConversationHandler) conversation(c *gin.Context) (*models.Conversation, bool) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Respond(c, httpx.Validation("invalid conversation id"))
		return nil, false
	}

	conv, err := h.conversations.Get(c.Request.Context(), slug, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("conversation not found"))
			return nil, false
		}
		h.logger.Error("get conversation failed", zap.Error(err))
		httpx.Respond(c, err)
		return nil, false
	}
	return conv, true
}

// Messages handles GET /api/conversations/:id/messages, oldest first.
func (h *ConversationHandler) Messages(c *gin.Context) {
	conv, ok := h.conversation(c)
	if !ok {
		return
	}

	messages, err := h.messages.ListByConversation(c.Request.Context(), conv.ID)
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

type createMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateMessage handles POST /api/conversations/:id/messages.
//
// Order matters here: tenant scope (via the conversation lookup), then the
// participant check, then persistence, then fan-out. The broadcast audience
// is exactly the conversation's participants, so a connection belonging to
// another user — same tenant or not — receives nothing.
func (h *ConversationHandler) CreateMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	conv, ok := h.conversation(c)
	if !ok {
		return
	}

	p := middleware.GetPrincipal(c)
	if !isParticipant(conv, p.UserID) {
		httpx.Respond(c, httpx.InsufficientRole("sender is not a participant of this conversation"))
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), &models.Message{
		ConversationID: conv.ID,
		SenderID:       p.UserID,
		Content:        req.Content,
	})
	if err != nil {
		h.logger.Error("create message failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	// Fire and forget: delivery problems are the hub's concern, never the
	// sender's. The HTTP response does not wait on any socket.
	h.hub.Broadcast(bus.Event{Type: bus.EventNewMessage, Data: msg}, conv.ParticipantIDs)

	c.JSON(http.StatusCreated, msg)
}

// MarkRead handles POST /api/conversations/:id/read.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	conv, ok := h.conversation(c)
	if !ok {
		return
	}

	p := middleware.GetPrincipal(c)
	if err := h.messages.MarkRead(c.Request.Context(), conv.ID, p.UserID); err != nil {
		h.logger.Error("mark read failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func isParticipant(conv *models.Conversation, userID uuid.UUID) bool {
	for _, id := range conv.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
