// Package storage defines the contracts for tenant-scoped data access.
//
// tenantSlug appears in almost every method signature: every list, search,
// get, and update is scoped, so a caller holding a valid entity ID still
// cannot touch it without also naming the tenant the guard authorized. The
// exceptions are admin-wide queries (listing all tenants, looking a user up
// by email for login) and identity lookups that precede any tenant scope.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
)

// ErrNotFound is returned when no entity matches the id within the given
// tenant scope. An entity that exists under a different tenant is
// indistinguishable from one that does not exist at all.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned on unique-key violations (tenant slug, user
// email).
var ErrAlreadyExists = errors.New("already exists")

// TenantRepository manages the tenants themselves. List and Create are
// admin-console operations.
type TenantRepository interface {
	// Create inserts a tenant. The slug must be unused.
	Create(ctx context.Context, t *models.Tenant) (*models.Tenant, error)

	// Get returns the tenant with the given slug.
	Get(ctx context.Context, slug string) (*models.Tenant, error)

	// List returns every tenant, newest first. Admin-wide, no scope.
	List(ctx context.Context) ([]models.Tenant, error)

	// Update applies a patch. The slug itself is immutable.
	Update(ctx context.Context, slug string, patch TenantPatch) (*models.Tenant, error)
}

// UserRepository handles user records. GetByID and GetByEmail are identity
// lookups: they run before any tenant scope exists (login, session
// resolution), so they take no scope.
type UserRepository interface {
	// Create inserts a user. The email must be unused.
	Create(ctx context.Context, u *models.User) (*models.User, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ListByTenant returns the users of one tenant, newest first.
	ListByTenant(ctx context.Context, tenantSlug string) ([]models.User, error)
}

// ProjectRepository handles client projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.Project, error)
	ListByTenant(ctx context.Context, tenantSlug string) ([]models.Project, error)
	Update(ctx context.Context, tenantSlug string, id uuid.UUID, patch ProjectPatch) (*models.Project, error)
}

// KbFileRepository handles knowledge-base documents.
type KbFileRepository interface {
	Create(ctx context.Context, f *models.KbFile) (*models.KbFile, error)
	Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.KbFile, error)
	ListByTenant(ctx context.Context, tenantSlug string) ([]models.KbFile, error)
	Update(ctx context.Context, tenantSlug string, id uuid.UUID, patch KbFilePatch) (*models.KbFile, error)

	// Search does a case-insensitive substring match over title, content, and
	// tags. It is a full scan — O(n) in the tenant's file count — which is
	// fine at portal scale but worth remembering before reusing elsewhere.
	Search(ctx context.Context, tenantSlug, query string) ([]models.KbFile, error)
}

// ConversationRepository handles message threads.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error)
	Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.Conversation, error)
	ListByTenant(ctx context.Context, tenantSlug string) ([]models.Conversation, error)
}

// MessageRepository handles chat messages. Messages are scoped through their
// conversation: callers resolve the conversation (tenant-scoped) first, so
// these methods take a conversation ID the caller has already authorized.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)

	// ListByConversation returns messages oldest first — creation order,
	// which is the order clients render.
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)

	// MarkRead marks every message in the conversation not sent by readerID
	// as read. Idempotent.
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error
}

// InvoiceRepository handles invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.Invoice, error)
	ListByTenant(ctx context.Context, tenantSlug string) ([]models.Invoice, error)

	// MarkPaid transitions the invoice to paid and records the payment
	// reference.
	MarkPaid(ctx context.Context, tenantSlug string, id uuid.UUID, paymentIntentID string) (*models.Invoice, error)
}

// ServiceRequestRepository handles client service requests.
type ServiceRequestRepository interface {
	Create(ctx context.Context, sr *models.ServiceRequest) (*models.ServiceRequest, error)
	ListByTenant(ctx context.Context, tenantSlug string) ([]models.ServiceRequest, error)
	Update(ctx context.Context, tenantSlug string, id uuid.UUID, patch ServiceRequestPatch) (*models.ServiceRequest, error)
}

// Patch types: nil fields are left untouched. The same shape the reference
// system expressed as Partial<Entity>.

type TenantPatch struct {
	Name         *string
	Branding     map[string]string
	FeatureFlags map[string]bool
	Settings     map[string]string
}

type ProjectPatch struct {
	Title       *string
	Description *string
	Status      *string
	Progress    *int
	DueDate     *time.Time
}

type KbFilePatch struct {
	Path       *string
	Title      *string
	Content    *string
	Tags       []string
	Visibility *string
}

type ServiceRequestPatch struct {
	Status  *string
	Details *string
}
