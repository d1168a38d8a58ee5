// Package guard is the single authorization gate. Every tenant-scoped
// request funnels through Authorize before any storage call, so the decision
// table lives in exactly one place.
package guard

import (
	"github.com/google/uuid"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
)

// Principal is the authenticated caller, as established by the session
// middleware. TenantSlug is empty for admins.
type Principal struct {
	UserID     uuid.UUID
	TenantSlug string
	Role       models.Role
}

// Authorize decides whether the principal may act on the requested tenant.
//
// Decision table:
//   - nil principal → unauthenticated.
//   - admin → authorized for any tenant, but must name one: admins have no
//     tenant of their own, so an empty requested slug is a validation error,
//     never an implicit "all tenants".
//   - non-admin → requested slug must equal the principal's own slug
//     (tenant_mismatch otherwise, even if the requested tenant does not
//     exist), and if requiredRoles is non-empty the principal's role must be
//     among them (insufficient_role otherwise).
//
// Pure function: no I/O, no side effects, safe to call anywhere.
func Authorize(p *Principal, requestedSlug string, requiredRoles ...models.Role) error {
	if p == nil {
		return httpx.Unauthenticated("authentication required")
	}

	if p.Role == models.RoleAdmin {
		if requestedSlug == "" {
			return httpx.Validation("tenantSlug required for admin")
		}
		return nil
	}

	if requestedSlug != p.TenantSlug {
		return httpx.TenantMismatch("not a member of the requested tenant")
	}

	if len(requiredRoles) > 0 {
		for _, role := range requiredRoles {
			if p.Role == role {
				return nil
			}
		}
		return httpx.InsufficientRole("role not permitted for this operation")
	}

	return nil
}

// RequireAdmin authorizes operations that only admins may perform,
// independent of any tenant scope (listing all tenants, creating one).
func RequireAdmin(p *Principal) error {
	if p == nil {
		return httpx.Unauthenticated("authentication required")
	}
	if p.Role != models.RoleAdmin {
		return httpx.InsufficientRole("admin access required")
	}
	return nil
}
