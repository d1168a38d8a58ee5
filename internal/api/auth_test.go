package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qially/portal/internal/httpx"
)

func TestLoginIssuesWorkingSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "sarah@acmecorp.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON[map[string]any](t, rec)
	token, _ := body["session_token"].(string)
	require.NotEmpty(t, token)

	user := body["user"].(map[string]any)
	assert.Equal(t, "sarah@acmecorp.com", user["email"])
	assert.Equal(t, "client_user", user["role"])
	assert.Equal(t, "acme-corp", user["tenant_slug"])
	// The password hash must never appear on the wire.
	_, leaked := user["PasswordHash"]
	assert.False(t, leaked)

	me := f.do(t, http.MethodGet, "/api/user/me", token, nil)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	wrongPassword := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "sarah@acmecorp.com", "password": "nope",
	})
	unknownEmail := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ghost@acmecorp.com", "password": "password123",
	})

	// Identical rejection for both failure modes.
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, errorCode(t, wrongPassword), errorCode(t, unknownEmail))
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t)

	first := f.do(t, http.MethodPost, "/api/auth/logout", f.clientToken, nil)
	assert.Equal(t, http.StatusOK, first.Code)

	// The session is dead now.
	me := f.do(t, http.MethodGet, "/api/user/me", f.clientToken, nil)
	assert.Equal(t, http.StatusUnauthorized, me.Code)

	// Logging out again with the same, now-invalid token must look exactly
	// like the first call.
	second := f.do(t, http.MethodPost, "/api/auth/logout", f.clientToken, nil)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestRegisterEnforcesRoleTenantInvariants(t *testing.T) {
	f := newFixture(t)

	adminWithTenant := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new-admin@qially.com", "password": "password123",
		"name": "New Admin", "role": "admin", "tenant_slug": "acme-corp",
	})
	assert.Equal(t, http.StatusBadRequest, adminWithTenant.Code)

	memberWithoutTenant := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new-member@acmecorp.com", "password": "password123",
		"name": "New Member", "role": "client_user",
	})
	assert.Equal(t, http.StatusBadRequest, memberWithoutTenant.Code)

	unknownRole := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "x@acmecorp.com", "password": "password123",
		"name": "X", "role": "superuser", "tenant_slug": "acme-corp",
	})
	assert.Equal(t, http.StatusBadRequest, unknownRole.Code)

	duplicate := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "sarah@acmecorp.com", "password": "password123",
		"name": "Sarah Again", "role": "client_user", "tenant_slug": "acme-corp",
	})
	assert.Equal(t, http.StatusBadRequest, duplicate.Code)
	assert.Equal(t, httpx.CodeValidation, errorCode(t, duplicate))

	ok := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new-member@acmecorp.com", "password": "password123",
		"name": "New Member", "role": "client_user", "tenant_slug": "acme-corp",
	})
	assert.Equal(t, http.StatusCreated, ok.Code)
}

func TestRequestWithoutTokenIsUnauthenticated(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httpx.CodeUnauthenticated, errorCode(t, rec))

	garbage := f.do(t, http.MethodGet, "/api/projects", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, garbage.Code)
}
