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

type KbFileStore struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*models.KbFile
	order []uuid.UUID
}

func NewKbFileStore() *KbFileStore {
	return &KbFileStore{files: make(map[uuid.UUID]*models.KbFile)}
}

func (s *KbFileStore) Create(ctx context.Context, f *models.KbFile) (*models.KbFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *f
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.files[stored.ID] = &stored
	s.order = append(s.order, stored.ID)

	out := stored
	return &out, nil
}

func (s *KbFileStore) Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.KbFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok || f.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}
	out := *f
	return &out, nil
}

func (s *KbFileStore) ListByTenant(ctx context.Context, tenantSlug string) ([]models.KbFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.KbFile, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		f := s.files[s.order[i]]
		if f.TenantSlug == tenantSlug {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *KbFileStore) Update(ctx context.Context, tenantSlug string, id uuid.UUID, patch storage.KbFilePatch) (*models.KbFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok || f.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}

	if patch.Path != nil {
		f.Path = *patch.Path
	}
	if patch.Title != nil {
		f.Title = *patch.Title
	}
	if patch.Content != nil {
		f.Content = *patch.Content
	}
	if patch.Tags != nil {
		f.Tags = patch.Tags
	}
	if patch.Visibility != nil {
		f.Visibility = *patch.Visibility
	}
	f.UpdatedAt = time.Now()

	out := *f
	return &out, nil
}

// Search scans every file of the tenant and keeps those whose title, content,
// or any tag contains the query, case-insensitively. Full scan per call —
// there is no index.
func (s *KbFileStore) Search(ctx context.Context, tenantSlug, query string) ([]models.KbFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	out := make([]models.KbFile, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		f := s.files[s.order[i]]
		if f.TenantSlug != tenantSlug {
			continue
		}
		if matchesKbFile(f, needle) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func matchesKbFile(f *models.KbFile, needle string) bool {
	if strings.Contains(strings.ToLower(f.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(f.Content), needle) {
		return true
	}
	for _, tag := range f.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
