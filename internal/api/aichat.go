package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
	"go.uber.org/zap"
)

// ChatCompleter is the outward-facing AI collaborator: given a system prompt
// and a user message, produce an answer. The model/provider behind it is not
// the core's business.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// AiChatHandler answers portal questions grounded in the tenant's knowledge
// base: search the KB, stuff the top hits into the prompt, ask the completer.
type AiChatHandler struct {
	kb        storage.KbFileRepository
	completer ChatCompleter // nil when no AI backend is configured
	logger    *zap.Logger
}

func NewAiChatHandler(kb storage.KbFileRepository, completer ChatCompleter, logger *zap.Logger) *AiChatHandler {
	return &AiChatHandler{kb: kb, completer: completer, logger: logger}
}

type aiChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type aiChatSource struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// maxContextFiles caps how many KB hits go into the prompt.
const maxContextFiles = 3

// Chat handles POST /api/ai/chat.
func (h *AiChatHandler) Chat(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	if h.completer == nil {
		httpx.Respond(c, httpx.Unavailable("ai service not configured"))
		return
	}

	var req aiChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	files, err := h.kb.Search(c.Request.Context(), slug, req.Message)
	if err != nil {
		h.logger.Error("kb search for ai chat failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	if len(files) > maxContextFiles {
		files = files[:maxContextFiles]
	}

	answer, err := h.completer.Complete(c.Request.Context(), buildSystemPrompt(slug, files), req.Message)
	if err != nil {
		h.logger.Error("ai completion failed", zap.Error(err))
		httpx.Respond(c, httpx.Unavailable("ai provider error"))
		return
	}

	sources := make([]aiChatSource, 0, len(files))
	for _, f := range files {
		sources = append(sources, aiChatSource{Title: f.Title, Path: f.Path})
	}
	c.JSON(http.StatusOK, gin.H{"response": answer, "sources": sources})
}

func buildSystemPrompt(tenantSlug string, files []models.KbFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful assistant for %s. Answer from the knowledge base context below; if the answer is not there, say so politely.\n", tenantSlug)
	for _, f := range files {
		content := f.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Fprintf(&b, "\nTitle: %s\nContent: %s\n", f.Title, content)
	}
	return b.String()
}
