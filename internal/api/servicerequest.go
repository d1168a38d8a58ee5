package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/middleware"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
	"go.uber.org/zap"
)

type ServiceRequestHandler struct {
	repo   storage.ServiceRequestRepository
	logger *zap.Logger
}

func NewServiceRequestHandler(repo storage.ServiceRequestRepository, logger *zap.Logger) *ServiceRequestHandler {
	return &ServiceRequestHandler{repo: repo, logger: logger}
}

// List handles GET /api/service-requests.
func (h *ServiceRequestHandler) List(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	requests, err := h.repo.ListByTenant(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("list service requests failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

type createServiceRequestRequest struct {
	Title   string `json:"title" binding:"required"`
	Details string `json:"details"`
}

// Create handles POST /api/service-requests. Requests come from the tenant
// side (client users and team members), always against the caller's own
// tenant — there is no admin variant, since a request carries its
// requester's identity.
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	var req createServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	// Admins fail this scope derivation with a validation error: they have no
	// tenant to submit a request against, and requests carry their
	// requester's identity.
	slug, ok := tenantScope(c, "", models.RoleClientUser, models.RoleTeamMember)
	if !ok {
		return
	}

	p := middleware.GetPrincipal(c)
	created, err := h.repo.Create(c.Request.Context(), &models.ServiceRequest{
		TenantSlug: slug,
		UserID:     p.UserID,
		Title:      req.Title,
		Details:    req.Details,
	})
	if err != nil {
		h.logger.Error("create service request failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateServiceRequestRequest struct {
	TenantSlug string  `json:"tenant_slug"`
	Status     *string `json:"status"`
	Details    *string `json:"details"`
}

// Update handles PATCH /api/service-requests/:id — admins triaging requests.
func (h *ServiceRequestHandler) Update(c *gin.Context) {
	var req updateServiceRequestRequest
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
		httpx.Respond(c, httpx.Validation("invalid service request id"))
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), slug, id, storage.ServiceRequestPatch{
		Status:  req.Status,
		Details: req.Details,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("service request not found"))
			return
		}
		h.logger.Error("update service request failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
