package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/qially/portal/internal/bus"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/session"
	"github.com/qially/portal/internal/storage/memory"
	"github.com/qially/portal/internal/tenant"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixture is a fully wired server with two tenants and one user per role:
// an admin, a team member and a client user in acme-corp, and a client user
// in other-corp. Each test constructs its own fixture — no shared state.
type fixture struct {
	router   *gin.Engine
	stores   *memory.Stores
	sessions *session.Store
	hub      *bus.Hub

	admin       *models.User
	teamMember  *models.User
	clientUser  *models.User
	otherClient *models.User

	adminToken  string
	teamToken   string
	clientToken string
	otherToken  string
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	ctx := context.Background()

	stores := memory.NewStores()
	sessions := session.NewStore(time.Hour)
	t.Cleanup(sessions.Close)
	hub := bus.NewHub(zap.NewNop())
	t.Cleanup(hub.Close)

	for _, tn := range []*models.Tenant{
		{Slug: "qially", Name: "Qially"},
		{Slug: "acme-corp", Name: "Acme Corp", Branding: map[string]string{"primaryColor": "#6366F1"}},
		{Slug: "other-corp", Name: "Other Corp"},
	} {
		_, err := stores.Tenants.Create(ctx, tn)
		require.NoError(t, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{stores: stores, sessions: sessions, hub: hub}

	f.admin = f.mustCreateUser(t, &models.User{
		Email: "admin@qially.com", PasswordHash: string(hash), Role: models.RoleAdmin, Name: "Admin",
	})
	f.teamMember = f.mustCreateUser(t, &models.User{
		Email: "dev@qially.com", PasswordHash: string(hash), Role: models.RoleTeamMember,
		TenantSlug: "acme-corp", Name: "Dev",
	})
	f.clientUser = f.mustCreateUser(t, &models.User{
		Email: "sarah@acmecorp.com", PasswordHash: string(hash), Role: models.RoleClientUser,
		TenantSlug: "acme-corp", Name: "Sarah",
	})
	f.otherClient = f.mustCreateUser(t, &models.User{
		Email: "pat@othercorp.com", PasswordHash: string(hash), Role: models.RoleClientUser,
		TenantSlug: "other-corp", Name: "Pat",
	})

	f.adminToken = sessions.Create(f.admin.ID, "", models.RoleAdmin)
	f.teamToken = sessions.Create(f.teamMember.ID, "acme-corp", models.RoleTeamMember)
	f.clientToken = sessions.Create(f.clientUser.ID, "acme-corp", models.RoleClientUser)
	f.otherToken = sessions.Create(f.otherClient.ID, "other-corp", models.RoleClientUser)

	deps := Deps{
		Stores:   stores,
		Sessions: sessions,
		Hub:      hub,
		Resolver: tenant.NewResolver("qially", map[string]string{"zjk": "zaitullahk"}),
		Logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.router = NewRouter(deps)
	return f
}

func (f *fixture) mustCreateUser(t *testing.T, u *models.User) *models.User {
	t.Helper()
	created, err := f.stores.Users.Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

// do issues a request against the in-memory router. body may be nil; token
// may be empty for anonymous requests.
func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// hostRequest builds an anonymous GET /api/tenant with the given Host header,
// the way a browser on a tenant subdomain would.
func hostRequest(t *testing.T, host string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/tenant", nil)
	req.Host = host
	return req, httptest.NewRecorder()
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeJSON[map[string]any](t, rec)
	code, _ := body["error"].(string)
	return code
}

// newConversation creates a conversation between the acme team member and
// client user, directly through the store.
func (f *fixture) newConversation(t *testing.T, participants ...uuid.UUID) *models.Conversation {
	t.Helper()
	conv, err := f.stores.Conversations.Create(context.Background(), &models.Conversation{
		TenantSlug:     "acme-corp",
		Title:          "Website Redesign",
		ParticipantIDs: participants,
	})
	require.NoError(t, err)
	return conv
}
