package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
	"go.uber.org/zap"
)

type KbHandler struct {
	repo   storage.KbFileRepository
	logger *zap.Logger
}

func NewKbHandler(repo storage.KbFileRepository, logger *zap.Logger) *KbHandler {
	return &KbHandler{repo: repo, logger: logger}
}

// List handles GET /api/kb.
func (h *KbHandler) List(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	files, err := h.repo.ListByTenant(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("list kb files failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// Search handles GET /api/kb/search?q=.
func (h *KbHandler) Search(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		httpx.Respond(c, httpx.Validation("query parameter 'q' required"))
		return
	}

	files, err := h.repo.Search(c.Request.Context(), slug, query)
	if err != nil {
		h.logger.Error("kb search failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

type createKbFileRequest struct {
	TenantSlug string   `json:"tenant_slug"`
	Path       string   `json:"path" binding:"required"`
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Visibility string   `json:"visibility"`
}

// Create handles POST /api/kb.
func (h *KbHandler) Create(c *gin.Context) {
	var req createKbFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	slug, ok := tenantScope(c, req.TenantSlug, models.RoleTeamMember)
	if !ok {
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = "private"
	}

	created, err := h.repo.Create(c.Request.Context(), &models.KbFile{
		TenantSlug: slug,
		Path:       req.Path,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
		Visibility: visibility,
	})
	if err != nil {
		h.logger.Error("create kb file failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateKbFileRequest struct {
	TenantSlug string   `json:"tenant_slug"`
	Path       *string  `json:"path"`
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Tags       []string `json:"tags"`
	Visibility *string  `json:"visibility"`
}

// Update handles PATCH /api/kb/:id.
func (h *KbHandler) Update(c *gin.Context) {
	var req updateKbFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	slug, ok := tenantScope(c, req.TenantSlug, models.RoleTeamMember)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Respond(c, httpx.Validation("invalid kb file id"))
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), slug, id, storage.KbFilePatch{
		Path:       req.Path,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
		Visibility: req.Visibility,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("kb file not found"))
			return
		}
		h.logger.Error("update kb file failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
