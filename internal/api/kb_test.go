package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
)

func TestKbSearchEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, file := range []*models.KbFile{
		{TenantSlug: "acme-corp", Path: "/kb/brand.md", Title: "Brand Style Guide", Tags: []string{"design"}},
		{TenantSlug: "acme-corp", Path: "/kb/onboarding.md", Title: "Onboarding", Content: "welcome pack"},
		{TenantSlug: "other-corp", Path: "/kb/brand.md", Title: "Brand Rules"},
	} {
		_, err := f.stores.KbFiles.Create(ctx, file)
		require.NoError(t, err)
	}

	t.Run("matches stay inside the caller's tenant", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/kb/search?q=brand", f.clientToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		files := decodeJSON[[]models.KbFile](t, rec)
		require.Len(t, files, 1)
		assert.Equal(t, "Brand Style Guide", files[0].Title)
	})

	t.Run("missing query is a validation error", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/kb/search", f.clientToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httpx.CodeValidation, errorCode(t, rec))
	})
}

func TestKbCreateDefaultsVisibility(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/kb", f.teamToken, map[string]any{
		"path": "/kb/faq.md", "title": "FAQ",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	file := decodeJSON[models.KbFile](t, rec)
	assert.Equal(t, "private", file.Visibility)
	assert.Equal(t, "acme-corp", file.TenantSlug)
}

func TestServiceRequestLifecycle(t *testing.T) {
	f := newFixture(t)

	t.Run("client user submits against their own tenant", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/service-requests", f.clientToken, map[string]any{
			"title": "Add a blog section", "details": "Three posts to start",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		sr := decodeJSON[models.ServiceRequest](t, rec)
		assert.Equal(t, "acme-corp", sr.TenantSlug)
		assert.Equal(t, f.clientUser.ID, sr.UserID)
		assert.Equal(t, "open", sr.Status)
	})

	t.Run("admins cannot submit — they have no tenant", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/service-requests", f.adminToken, map[string]any{
			"title": "Nope",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httpx.CodeValidation, errorCode(t, rec))
	})

	t.Run("team member triages via patch", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/service-requests", f.teamToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		requests := decodeJSON[[]models.ServiceRequest](t, rec)
		require.NotEmpty(t, requests)

		status := "in_progress"
		rec = f.do(t, http.MethodPatch, "/api/service-requests/"+requests[0].ID.String(),
			f.teamToken, map[string]any{"status": status})
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decodeJSON[models.ServiceRequest](t, rec)
		assert.Equal(t, status, updated.Status)
	})
}
