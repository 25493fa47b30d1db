package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
)

type CheckoutHandler struct {
	checkout *services.CheckoutService
}

func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Checkout godoc
// @Summary     Finalize an invoice
// @Description Sells the listed stock barcodes to one customer at the configured unit price.
// @Description Any barcode not COMMITTED_TO_STOCK rejects the whole invoice.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       request body models.CheckoutRequest true "Cart"
// @Success     201 {object} services.CheckoutResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.BarcodeIDs))
	for _, raw := range req.BarcodeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid barcode id", err)
			return
		}
		ids = append(ids, id)
	}

	result, err := h.checkout.Finalize(c.Request.Context(), req.CustomerName, ids, req.InvoiceNo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListInvoices godoc
// @Summary     List invoices
// @Tags        checkout
// @Produce     json
// @Success     200 {array} models.Invoice
// @Router      /invoices [get]
func (h *CheckoutHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.checkout.Invoices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}
