package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	repo   storage.ProjectRepository
	logger *zap.Logger
}

func NewProjectHandler(repo storage.ProjectRepository, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{repo: repo, logger: logger}
}

// List handles GET /api/projects. Admins pass ?tenantSlug=, members get
// their own tenant.
func (h *ProjectHandler) List(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	projects, err := h.repo.ListByTenant(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("list projects failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Get handles GET /api/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Respond(c, httpx.Validation("invalid project id"))
		return
	}

	project, err := h.repo.Get(c.Request.Context(), slug, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("project not found"))
			return
		}
		h.logger.Error("get project failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type createProjectRequest struct {
	TenantSlug  string     `json:"tenant_slug"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	DueDate     *time.Time `json:"due_date"`
}

// Create handles POST /api/projects. Client users can view projects but not
// create them; that is staff work.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	// The payload's slug participates in scope derivation: an admin must
	// supply it, a member supplying a foreign one is denied tenant_mismatch.
	slug, ok := tenantScope(c, req.TenantSlug, models.RoleTeamMember)
	if !ok {
		return
	}

	status := req.Status
	if status == "" {
		status = "planned"
	}

	created, err := h.repo.Create(c.Request.Context(), &models.Project{
		TenantSlug:  slug,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Progress:    req.Progress,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.logger.Error("create project failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateProjectRequest struct {
	TenantSlug  string     `json:"tenant_slug"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Progress    *int       `json:"progress"`
	DueDate     *time.Time `json:"due_date"`
}

// Update handles PATCH /api/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
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
		httpx.Respond(c, httpx.Validation("invalid project id"))
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), slug, id, storage.ProjectPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Progress:    req.Progress,
		DueDate:     req.DueDate,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("project not found"))
			return
		}
		h.logger.Error("update project failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
