// Package tenant maps request hostnames to tenant slugs.
//
// The portal serves every tenant from one process; the subdomain says which
// tenant a browser is talking to (acme.qially.com → "acme"). Resolution is a
// pure string computation with no failure mode: anything unusable — bare
// domain, localhost, an IP, a reserved label — falls back to the default
// tenant, so an attacker-controlled Host header can at worst select the
// default view, never an invalid state.
package tenant

import (
	"net"
	"strings"
)

// reserved are first labels that address the platform itself rather than a
// tenant (www.qially.com is the marketing site, not tenant "www").
var reserved = map[string]struct{}{
	"www":    {},
	"portal": {},
	"app":    {},
	"api":    {},
	"cdn":    {},
}

// Resolver derives tenant slugs from hostnames.
type Resolver struct {
	defaultSlug string
	aliases     map[string]string
}

// NewResolver builds a Resolver. aliases maps legacy short slugs to canonical
// ones and may be nil.
func NewResolver(defaultSlug string, aliases map[string]string) *Resolver {
	return &Resolver{defaultSlug: defaultSlug, aliases: aliases}
}

// Resolve returns the tenant slug addressed by hostname.
//
// Rules, in order:
//  1. An optional :port suffix is stripped (Host headers carry one).
//  2. Fewer than three dot-separated labels (qially.com, localhost, an IP)
//     → default slug.
//  3. A reserved first label (www, portal, app, api, cdn) → default slug.
//  4. Otherwise the first label, lowercased, with the alias table applied.
func (r *Resolver) Resolve(hostname string) string {
	if host, _, err := net.SplitHostPort(hostname); err == nil {
		hostname = host
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 3 {
		return r.defaultSlug
	}

	slug := strings.ToLower(parts[0])
	if slug == "" {
		return r.defaultSlug
	}
	if _, ok := reserved[slug]; ok {
		return r.defaultSlug
	}

	return r.Normalize(slug)
}

// Normalize applies the alias table to a caller-supplied slug. Slugs without
// an alias pass through unchanged.
func (r *Resolver) Normalize(slug string) string {
	if canonical, ok := r.aliases[slug]; ok {
		return canonical
	}
	return slug
}
