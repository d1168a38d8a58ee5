package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
)

type ServiceRequestStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*models.ServiceRequest
	order    []uuid.UUID
}

func NewServiceRequestStore() *ServiceRequestStore {
	return &ServiceRequestStore{requests: make(map[uuid.UUID]*models.ServiceRequest)}
}

func (s *ServiceRequestStore) Create(ctx context.Context, sr *models.ServiceRequest) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *sr
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Status == "" {
		stored.Status = "open"
	}

	s.requests[stored.ID] = &stored
	s.order = append(s.order, stored.ID)

	out := stored
	return &out, nil
}

func (s *ServiceRequestStore) ListByTenant(ctx context.Context, tenantSlug string) ([]models.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ServiceRequest, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		sr := s.requests[s.order[i]]
		if sr.TenantSlug == tenantSlug {
			out = append(out, *sr)
		}
	}
	return out, nil
}

func (s *ServiceRequestStore) Update(ctx context.Context, tenantSlug string, id uuid.UUID, patch storage.ServiceRequestPatch) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.requests[id]
	if !ok || sr.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}

	if patch.Status != nil {
		sr.Status = *patch.Status
	}
	if patch.Details != nil {
		sr.Details = *patch.Details
	}
	sr.UpdatedAt = time.Now()

	out := *sr
	return &out, nil
}
