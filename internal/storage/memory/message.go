package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
)

// MessageStore keeps messages as an append-only slice: insertion order is
// creation order, which is exactly the order ListByConversation returns.
// Tenant scoping happens one level up, through the conversation lookup.
type MessageStore struct {
	mu       sync.RWMutex
	messages []*models.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (s *MessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *m
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()

	s.messages = append(s.messages, &stored)

	out := stored
	return &out, nil
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID {
			m.IsRead = true
		}
	}
	return nil
}
