package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
)

// UserStore keeps users keyed by id with a secondary email index.
// Emails are compared case-insensitively, matching how people type them.
type UserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
	order   []uuid.UUID
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return nil, storage.ErrAlreadyExists
	}

	now := time.Now()
	stored := *u
	stored.ID = uuid.New()
	stored.Email = email
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.users[stored.ID] = &stored
	s.byEmail[email] = stored.ID
	s.order = append(s.order, stored.ID)

	out := stored
	return &out, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *s.users[id]
	return &out, nil
}

func (s *UserStore) ListByTenant(ctx context.Context, tenantSlug string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		u := s.users[s.order[i]]
		if u.TenantSlug == tenantSlug {
			out = append(out, *u)
		}
	}
	return out, nil
}
