package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
	"github.com/qially/portal/internal/tenant"
	"go.uber.org/zap"
)

// ClientHandler is the admin console surface for managing tenants ("clients"
// in portal terms) plus the public tenant-resolution endpoint.
type ClientHandler struct {
	tenants  storage.TenantRepository
	users    storage.UserRepository
	resolver *tenant.Resolver
	logger   *zap.Logger
}

func NewClientHandler(
	tenants storage.TenantRepository,
	users storage.UserRepository,
	resolver *tenant.Resolver,
	logger *zap.Logger,
) *ClientHandler {
	return &ClientHandler{tenants: tenants, users: users, resolver: resolver, logger: logger}
}

// Current handles GET /api/tenant — the one public, subdomain-addressed
// route. The Host header picks the tenant; unknown or unresolvable hosts get
// the default tenant's branding rather than an error, so the login page
// always renders.
func (h *ClientHandler) Current(c *gin.Context) {
	slug := h.resolver.Resolve(c.Request.Host)

	t, err := h.tenants.Get(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("tenant not found"))
			return
		}
		h.logger.Error("tenant lookup failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	// Public view: branding and flags only, no settings.
	c.JSON(http.StatusOK, gin.H{
		"slug":          t.Slug,
		"name":          t.Name,
		"branding":      t.Branding,
		"feature_flags": t.FeatureFlags,
	})
}

// List handles GET /api/clients — the admin-wide query; no tenant scope.
func (h *ClientHandler) List(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	tenants, err := h.tenants.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list tenants failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tenants)
}

type createClientRequest struct {
	Slug         string            `json:"slug" binding:"required"`
	Name         string            `json:"name" binding:"required"`
	Branding     map[string]string `json:"branding"`
	FeatureFlags map[string]bool   `json:"feature_flags"`
	Settings     map[string]string `json:"settings"`
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	created, err := h.tenants.Create(c.Request.Context(), &models.Tenant{
		Slug:         strings.ToLower(strings.TrimSpace(req.Slug)),
		Name:         req.Name,
		Branding:     req.Branding,
		FeatureFlags: req.FeatureFlags,
		Settings:     req.Settings,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			httpx.Respond(c, httpx.Validation("slug already in use"))
			return
		}
		h.logger.Error("create tenant failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/clients/:slug — admins see any tenant, members see
// their own.
func (h *ClientHandler) Get(c *gin.Context) {
	slug := h.resolver.Normalize(c.Param("slug"))

	if _, ok := tenantScope(c, slug); !ok {
		return
	}

	t, err := h.tenants.Get(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("tenant not found"))
			return
		}
		h.logger.Error("get tenant failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type updateClientRequest struct {
	Name         *string           `json:"name"`
	Branding     map[string]string `json:"branding"`
	FeatureFlags map[string]bool   `json:"feature_flags"`
	Settings     map[string]string `json:"settings"`
}

// Update handles PATCH /api/clients/:slug.
func (h *ClientHandler) Update(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	updated, err := h.tenants.Update(c.Request.Context(), c.Param("slug"), storage.TenantPatch{
		Name:         req.Name,
		Branding:     req.Branding,
		FeatureFlags: req.FeatureFlags,
		Settings:     req.Settings,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("tenant not found"))
			return
		}
		h.logger.Error("update tenant failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Users handles GET /api/clients/:slug/users.
func (h *ClientHandler) Users(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	users, err := h.users.ListByTenant(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.logger.Error("list tenant users failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
