package memory

import (
	"context"
	"sync"
	"time"

	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
)

// TenantStore keeps tenants keyed by slug. order remembers insertion so List
// can return newest-first deterministically.
type TenantStore struct {
	mu      sync.RWMutex
	tenants map[string]*models.Tenant
	order   []string
}

func NewTenantStore() *TenantStore {
	return &TenantStore{tenants: make(map[string]*models.Tenant)}
}

func (s *TenantStore) Create(ctx context.Context, t *models.Tenant) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.Slug]; exists {
		return nil, storage.ErrAlreadyExists
	}

	now := time.Now()
	stored := *t
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.tenants[stored.Slug] = &stored
	s.order = append(s.order, stored.Slug)

	out := stored
	return &out, nil
}

func (s *TenantStore) Get(ctx context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[slug]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (s *TenantStore) List(ctx context.Context) ([]models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Tenant, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.tenants[s.order[i]])
	}
	return out, nil
}

func (s *TenantStore) Update(ctx context.Context, slug string, patch storage.TenantPatch) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[slug]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Branding != nil {
		t.Branding = patch.Branding
	}
	if patch.FeatureFlags != nil {
		t.FeatureFlags = patch.FeatureFlags
	}
	if patch.Settings != nil {
		t.Settings = patch.Settings
	}
	t.UpdatedAt = time.Now()

	out := *t
	return &out, nil
}
