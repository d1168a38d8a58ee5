package api

import (
	"github.com/gin-gonic/gin"
	"github.com/qially/portal/internal/guard"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/middleware"
	"github.com/qially/portal/internal/models"
)

// tenantScope derives the tenant a request targets and runs it through the
// guard. Every tenant-scoped handler calls this exactly once, first thing —
// it is the only place scope derivation happens, so no route can forget the
// check or reinvent it differently.
//
// explicit is a caller-supplied target slug (the ?tenantSlug= query value, or
// the slug in a create payload); empty means "none supplied".
//
//   - Admins have no tenant of their own, so explicit is the target. The
//     guard rejects an empty one as a validation error.
//   - Non-admins default to their own tenant. If they did supply a slug it is
//     passed through as-is: a foreign slug must come back tenant_mismatch,
//     not be silently corrected.
//
// On denial the response has already been written; callers just return.
func tenantScope(c *gin.Context, explicit string, requiredRoles ...models.Role) (string, bool) {
	p := middleware.GetPrincipal(c)

	requested := explicit
	if requested == "" && p != nil && p.Role != models.RoleAdmin {
		requested = p.TenantSlug
	}

	if err := guard.Authorize(p, requested, requiredRoles...); err != nil {
		httpx.Respond(c, err)
		return "", false
	}
	return requested, true
}

// requireAdmin gates admin-console operations that have no tenant scope.
func requireAdmin(c *gin.Context) (*guard.Principal, bool) {
	p := middleware.GetPrincipal(c)
	if err := guard.RequireAdmin(p); err != nil {
		httpx.Respond(c, err)
		return nil, false
	}
	return p, true
}
