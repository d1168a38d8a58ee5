package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qially/portal/internal/guard"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/session"
)

// ContextKeyPrincipal is where the authenticated caller lives in the gin
// context. Handlers read it through GetPrincipal rather than touching the
// key directly.
const ContextKeyPrincipal = "principal"

// RequireSession validates the Bearer token against the session store and
// stores the resulting Principal in the request context. Requests without a
// valid session never reach the handler.
//
// The store is injected (not a package global) so tests can run the
// middleware against an isolated store per test case.
func RequireSession(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httpx.Abort(c, httpx.Unauthenticated("missing authorization header"))
			return
		}

		// Expected format: "Bearer <token>".
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httpx.Abort(c, httpx.Unauthenticated("invalid authorization format, expected: Bearer <token>"))
			return
		}

		sess, ok := sessions.Validate(parts[1])
		if !ok {
			// Expired and never-issued tokens are indistinguishable here.
			httpx.Abort(c, httpx.Unauthenticated("invalid or expired session"))
			return
		}

		c.Set(ContextKeyPrincipal, &guard.Principal{
			UserID:     sess.UserID,
			TenantSlug: sess.TenantSlug,
			Role:       sess.Role,
		})
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or nil on routes that did
// not pass through RequireSession. The guard treats nil as unauthenticated,
// so a misrouted handler fails closed.
func GetPrincipal(c *gin.Context) *guard.Principal {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, ok := val.(*guard.Principal)
	if !ok {
		return nil
	}
	return p
}
