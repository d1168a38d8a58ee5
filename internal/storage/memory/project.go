package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
)

type ProjectStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*models.Project
	order    []uuid.UUID
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{projects: make(map[uuid.UUID]*models.Project)}
}

func (s *ProjectStore) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *p
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.projects[stored.ID] = &stored
	s.order = append(s.order, stored.ID)

	out := stored
	return &out, nil
}

// Get filters by tenant as well as id: a project belonging to another tenant
// is reported as not found, same as a project that does not exist.
func (s *ProjectStore) Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok || p.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *ProjectStore) ListByTenant(ctx context.Context, tenantSlug string) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Project, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.projects[s.order[i]]
		if p.TenantSlug == tenantSlug {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *ProjectStore) Update(ctx context.Context, tenantSlug string, id uuid.UUID, patch storage.ProjectPatch) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Progress != nil {
		p.Progress = *patch.Progress
	}
	if patch.DueDate != nil {
		p.DueDate = patch.DueDate
	}
	p.UpdatedAt = time.Now()

	out := *p
	return &out, nil
}
