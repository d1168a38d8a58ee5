package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
)

// stubPayments records the last intent request and returns a canned secret.
type stubPayments struct {
	lastAmount  int64
	lastInvoice string
	err         error
}

func (s *stubPayments) CreateIntent(amountCents int64, invoiceID string) (string, error) {
	s.lastAmount = amountCents
	s.lastInvoice = invoiceID
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("pi_secret_%s", invoiceID), nil
}

func (f *fixture) seedInvoice(t *testing.T, tenantSlug string, cents int64) *models.Invoice {
	t.Helper()
	inv, err := f.stores.Invoices.Create(context.Background(), &models.Invoice{
		TenantSlug: tenantSlug, Number: "INV-001", AmountCents: cents,
	})
	require.NoError(t, err)
	return inv
}

func TestInvoiceCreateIsAdminOnly(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/invoices", f.teamToken, map[string]any{
		"tenant_slug": "acme-corp", "number": "INV-002", "amount_cents": 42000,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, httpx.CodeInsufficientRole, errorCode(t, rec))

	rec = f.do(t, http.MethodPost, "/api/invoices", f.adminToken, map[string]any{
		"tenant_slug": "acme-corp", "number": "INV-002", "amount_cents": 42000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	inv := decodeJSON[models.Invoice](t, rec)
	assert.Equal(t, int64(42000), inv.AmountCents)
	assert.Equal(t, models.InvoicePending, inv.Status)
}

func TestCreatePaymentIntentWithoutProviderIs503(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvoice(t, "acme-corp", 385000)

	rec := f.do(t, http.MethodPost, "/api/create-payment-intent", f.clientToken, map[string]any{
		"invoice_id": inv.ID.String(),
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, httpx.CodeUnavailable, errorCode(t, rec))
}

func TestCreatePaymentIntentUsesProvider(t *testing.T) {
	payments := &stubPayments{}
	f := newFixture(t, func(d *Deps) { d.Payments = payments })
	inv := f.seedInvoice(t, "acme-corp", 385000)

	rec := f.do(t, http.MethodPost, "/api/create-payment-intent", f.clientToken, map[string]any{
		"invoice_id": inv.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON[map[string]string](t, rec)
	assert.Equal(t, "pi_secret_"+inv.ID.String(), body["client_secret"])
	assert.Equal(t, int64(385000), payments.lastAmount)
}

func TestCreatePaymentIntentProviderErrorIs503(t *testing.T) {
	payments := &stubPayments{err: errors.New("processor down")}
	f := newFixture(t, func(d *Deps) { d.Payments = payments })
	inv := f.seedInvoice(t, "acme-corp", 100)

	rec := f.do(t, http.MethodPost, "/api/create-payment-intent", f.clientToken, map[string]any{
		"invoice_id": inv.ID.String(),
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPayInvoiceScopedByTenant(t *testing.T) {
	f := newFixture(t)
	inv := f.seedInvoice(t, "acme-corp", 385000)
	path := "/api/invoices/" + inv.ID.String() + "/pay"

	// Another tenant's user cannot pay it — the invoice is invisible to them.
	foreign := f.do(t, http.MethodPost, path, f.otherToken, map[string]any{
		"payment_intent_id": "pi_123",
	})
	assert.Equal(t, http.StatusNotFound, foreign.Code)

	rec := f.do(t, http.MethodPost, path, f.clientToken, map[string]any{
		"payment_intent_id": "pi_123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decodeJSON[models.Invoice](t, rec)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
}
