package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
)

type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*models.Invoice
	order    []uuid.UUID
}

func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{invoices: make(map[uuid.UUID]*models.Invoice)}
}

func (s *InvoiceStore) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *inv
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	if stored.Status == "" {
		stored.Status = models.InvoicePending
	}

	s.invoices[stored.ID] = &stored
	s.order = append(s.order, stored.ID)

	out := stored
	return &out, nil
}

func (s *InvoiceStore) Get(ctx context.Context, tenantSlug string, id uuid.UUID) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok || inv.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}
	out := *inv
	return &out, nil
}

func (s *InvoiceStore) ListByTenant(ctx context.Context, tenantSlug string) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Invoice, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		inv := s.invoices[s.order[i]]
		if inv.TenantSlug == tenantSlug {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *InvoiceStore) MarkPaid(ctx context.Context, tenantSlug string, id uuid.UUID, paymentIntentID string) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok || inv.TenantSlug != tenantSlug {
		return nil, storage.ErrNotFound
	}

	now := time.Now()
	inv.Status = models.InvoicePaid
	inv.PaymentIntentID = paymentIntentID
	inv.PaidAt = &now

	out := *inv
	return &out, nil
}
