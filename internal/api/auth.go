package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/middleware"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/session"
	"github.com/qially/portal/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles login, register, and logout. Login and register are the
// only endpoints (besides health and tenant resolution) that skip the session
// middleware — they are what produces a session.
type AuthHandler struct {
	users    storage.UserRepository
	sessions *session.Store
	logger   *zap.Logger
}

func NewAuthHandler(users storage.UserRepository, sessions *session.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authResponse carries the bearer credential plus the user the client just
// became. The token is the session token verbatim — clients send it back as
// "Authorization: Bearer <token>".
type authResponse struct {
	SessionToken string       `json:"session_token"`
	User         *models.User `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.logger.Error("login lookup failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	// One generic rejection for both "no such user" and "wrong password":
	// distinguishing them tells an attacker which emails are registered.
	if errors.Is(err, storage.ErrNotFound) ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		httpx.Respond(c, httpx.Unauthenticated("invalid email or password"))
		return
	}

	token := h.sessions.Create(user.ID, user.TenantSlug, user.Role)

	c.JSON(http.StatusOK, authResponse{SessionToken: token, User: user})
}

type registerRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role" binding:"required"`
	TenantSlug string `json:"tenant_slug"`
}

// Register handles POST /api/auth/register.
//
// Role/tenant invariants are enforced here, at creation, because they are
// immutable afterwards: admins carry no tenant slug, everyone else must name
// exactly one.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.TenantSlug))
	if role == models.RoleAdmin && slug != "" {
		httpx.Respond(c, httpx.Validation("admin users carry no tenant_slug"))
		return
	}
	if role != models.RoleAdmin && slug == "" {
		httpx.Respond(c, httpx.Validation("tenant_slug required for non-admin users"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("password hash failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		TenantSlug:   slug,
		Name:         req.Name,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			httpx.Respond(c, httpx.Validation("email already registered"))
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	token := h.sessions.Create(user.ID, user.TenantSlug, user.Role)

	c.JSON(http.StatusCreated, authResponse{SessionToken: token, User: user})
}

// Logout handles POST /api/auth/logout. Revocation is idempotent: logging out
// twice with the same token succeeds both times with the same body, so a
// client retrying a flaky logout never sees an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		h.sessions.Revoke(parts[1])
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Me handles GET /api/user/me.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		httpx.Respond(c, httpx.Unauthenticated("authentication required"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Session outlived the user record; treat as logged out.
			httpx.Respond(c, httpx.Unauthenticated("user no longer exists"))
			return
		}
		h.logger.Error("me lookup failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
