package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qially/portal/internal/httpx"
	"github.com/qially/portal/internal/models"
	"github.com/qially/portal/internal/storage"
	"go.uber.org/zap"
)

// PaymentProvider is the outward-facing payment collaborator. The portal
// core only needs a client secret for the frontend's payment form; whatever
// processor sits behind this stays outside the core.
type PaymentProvider interface {
	CreateIntent(amountCents int64, invoiceID string) (clientSecret string, err error)
}

type InvoiceHandler struct {
	repo     storage.InvoiceRepository
	payments PaymentProvider // nil when no processor is configured
	logger   *zap.Logger
}

func NewInvoiceHandler(repo storage.InvoiceRepository, payments PaymentProvider, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{repo: repo, payments: payments, logger: logger}
}

// List handles GET /api/invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	invoices, err := h.repo.ListByTenant(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("list invoices failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

type createInvoiceRequest struct {
	TenantSlug  string     `json:"tenant_slug" binding:"required"`
	ProjectID   string     `json:"project_id"`
	Number      string     `json:"number" binding:"required"`
	AmountCents int64      `json:"amount_cents" binding:"required,gt=0"`
	DueDate     *time.Time `json:"due_date"`
}

// Create handles POST /api/invoices. Issuing invoices is admin work.
func (h *InvoiceHandler) Create(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	var projectID uuid.UUID
	if req.ProjectID != "" {
		var err error
		if projectID, err = uuid.Parse(req.ProjectID); err != nil {
			httpx.Respond(c, httpx.Validation("invalid project id"))
			return
		}
	}

	created, err := h.repo.Create(c.Request.Context(), &models.Invoice{
		TenantSlug:  req.TenantSlug,
		ProjectID:   projectID,
		Number:      req.Number,
		AmountCents: req.AmountCents,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.logger.Error("create invoice failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type createPaymentIntentRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
}

// CreatePaymentIntent handles POST /api/create-payment-intent. Without a
// configured provider the route degrades to 503 rather than disappearing, so
// clients get a distinct "try later / not set up" signal.
func (h *InvoiceHandler) CreatePaymentIntent(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	if h.payments == nil {
		httpx.Respond(c, httpx.Unavailable("payment service not configured"))
		return
	}

	var req createPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	id, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		httpx.Respond(c, httpx.Validation("invalid invoice id"))
		return
	}

	inv, err := h.repo.Get(c.Request.Context(), slug, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("invoice not found"))
			return
		}
		h.logger.Error("get invoice failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}

	secret, err := h.payments.CreateIntent(inv.AmountCents, inv.ID.String())
	if err != nil {
		h.logger.Error("create payment intent failed", zap.Error(err))
		httpx.Respond(c, httpx.Unavailable("payment provider error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_secret": secret})
}

type payInvoiceRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// Pay handles POST /api/invoices/:id/pay: records the completed payment
// against the invoice.
func (h *InvoiceHandler) Pay(c *gin.Context) {
	slug, ok := tenantScope(c, c.Query("tenantSlug"))
	if !ok {
		return
	}

	var req payInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Respond(c, httpx.Validation(err.Error()))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.Respond(c, httpx.Validation("invalid invoice id"))
		return
	}

	paid, err := h.repo.MarkPaid(c.Request.Context(), slug, id, req.PaymentIntentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Respond(c, httpx.NotFound("invoice not found"))
			return
		}
		h.logger.Error("pay invoice failed", zap.Error(err))
		httpx.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paid)
}
