package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of roles a user can hold. ParseRole validates at
// the JSON boundary; everything past it works with values known to be valid.
type Role string

const (
	// RoleAdmin users act tenant-agnostically: their TenantSlug is empty and
	// they name a target tenant explicitly on every request.
	RoleAdmin Role = "admin"

	// RoleTeamMember is agency staff assigned to a single tenant.
	RoleTeamMember Role = "team_member"

	// RoleClientUser is a customer-side user of a single tenant.
	RoleClientUser Role = "client_user"
)

// ParseRole validates a wire-format role string. Unknown values are rejected
// here, at the boundary, so handlers and the guard never see one.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleTeamMember, RoleClientUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Tenant is the isolation boundary: one customer organization of the portal.
// The slug is the sole partition key — every tenant-owned row carries it, and
// every scoped query filters on it. Slugs are immutable after creation.
type Tenant struct {
	Slug         string            `json:"slug"`
	Name         string            `json:"name"`
	Branding     map[string]string `json:"branding"`
	FeatureFlags map[string]bool   `json:"feature_flags"`
	Settings     map[string]string `json:"settings"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// User is a person who can log in.
//
// TenantSlug is empty exactly when Role is admin: admins belong to no tenant
// and select one per request. For every other role the slug is set at creation
// and never changes. PasswordHash is a bcrypt hash, never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TenantSlug   string    `json:"tenant_slug,omitempty"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Project is a unit of client work tracked in the portal.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	TenantSlug  string     `json:"tenant_slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// KbFile is one document in a tenant's knowledge base. Title, Content, and
// Tags are the fields the search scan matches against.
type KbFile struct {
	ID         uuid.UUID `json:"id"`
	TenantSlug string    `json:"tenant_slug"`
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Conversation is a message thread within a tenant. ParticipantIDs is the
// audience for real-time fan-out: only these users' connections receive
// new-message events.
type Conversation struct {
	ID             uuid.UUID   `json:"id"`
	TenantSlug     string      `json:"tenant_slug"`
	Title          string      `json:"title"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Message is a single chat message. Tenant membership is indirect: a message
// belongs to whatever tenant its conversation belongs to, which the handler
// verifies against the sender before creation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// Invoice amounts are integer cents. Storing "38.50" as a float invites
// rounding drift; cents never do.
type Invoice struct {
	ID              uuid.UUID  `json:"id"`
	TenantSlug      string     `json:"tenant_slug"`
	ProjectID       uuid.UUID  `json:"project_id,omitempty"`
	Number          string     `json:"number"`
	AmountCents     int64      `json:"amount_cents"`
	Status          string     `json:"status"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Invoice status values. Pay transitions pending → paid.
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
)

// ServiceRequest is a client-submitted request for additional work.
type ServiceRequest struct {
	ID         uuid.UUID `json:"id"`
	TenantSlug string    `json:"tenant_slug"`
	UserID     uuid.UUID `json:"user_id"`
	Title      string    `json:"title"`
	Details    string    `json:"details"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
