package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
)

type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]*models.Conversation
	order         []uuid.UUID
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{conversations: make(map[uuid.UUID]*models.Conversation)}
}

func (s *ConversationStore) Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *conv
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.ParticipantIDs = append([]uuid.UUID(nil), conv.ParticipantIDs...)

	s.conversations[stored.ID] = &stored
	s.order = append(s.order, stored.ID)

	out := stored
	out.ParticipantIDs = append([]uuid.UUID(nil), stored.ParticipantIDs...)
	return &out, nil
}

func (s *ConversationStore) Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok || conv.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}
	out := *conv
	out.ParticipantIDs = append([]uuid.UUID(nil), conv.ParticipantIDs...)
	return &out, nil
}

func (s *ConversationStore) ListByTenant(ctx context.Context, tenantSlug string) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Conversation, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		conv := s.conversations[s.order[i]]
		if conv.TenantSlug != tenantSlug {
			continue
		}
		cp := *conv
		cp.ParticipantIDs = append([]uuid.UUID(nil), conv.ParticipantIDs...)
		out = append(out, cp)
	}
	return out, nil
}
