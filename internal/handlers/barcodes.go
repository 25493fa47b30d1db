package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
)

type BarcodesHandler struct {
	barcodes *services.BarcodeService
}

func NewBarcodesHandler(barcodes *services.BarcodeService) *BarcodesHandler {
	return &BarcodesHandler{barcodes: barcodes}
}

// GenerateBarcodes godoc
// @Summary     Generate barcodes for an order
// @Description Allocates count serials ORDERNO-STYLE-SIZE-NNNNN continuing the order's counter,
// @Description and returns them with a printable receipt payload.
// @Tags        barcodes
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Param       request body models.GenerateBarcodesRequest true "Batch"
// @Success     201 {object} services.GeneratedBatch
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/barcodes [post]
func (h *BarcodesHandler) GenerateBarcodes(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	var req models.GenerateBarcodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	batch, err := h.barcodes.Generate(c.Request.Context(), orderID, req.Count, req.StyleNumber, req.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// ListOrderBarcodes godoc
// @Summary     Barcodes of an order
// @Tags        barcodes
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {array} models.Barcode
// @Router      /orders/{order_id}/barcodes [get]
func (h *BarcodesHandler) ListOrderBarcodes(c *gin.Context) {
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	h.list(c, services.ListFilter{OrderID: &orderID, Status: models.BarcodeStatus(strings.ToUpper(c.Query("status")))})
}

// ListBarcodes godoc
// @Summary     Search barcodes
// @Tags        barcodes
// @Produce     json
// @Param       status query string false "Barcode status"
// @Param       serial query string false "Exact serial"
// @Param       order_id query string false "Order ID (UUID)"
// @Success     200 {array} models.Barcode
// @Router      /barcodes [get]
func (h *BarcodesHandler) ListBarcodes(c *gin.Context) {
	f := services.ListFilter{
		Status: models.BarcodeStatus(strings.ToUpper(c.Query("status"))),
		Serial: c.Query("serial"),
	}
	if raw := c.Query("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid order_id", err)
			return
		}
		f.OrderID = &id
	}
	h.list(c, f)
}

func (h *BarcodesHandler) list(c *gin.Context, f services.ListFilter) {
	barcodes, err := h.barcodes.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	if barcodes == nil {
		barcodes = []models.Barcode{}
	}
	c.JSON(http.StatusOK, barcodes)
}

// AdvanceBarcode godoc
// @Summary     Advance a barcode one production step
// @Tags        barcodes
// @Produce     json
// @Param       barcode_id path string true "Barcode ID (UUID)"
// @Success     200 {object} models.Barcode
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /barcodes/{barcode_id}/advance [post]
func (h *BarcodesHandler) AdvanceBarcode(c *gin.Context) {
	id, ok := pathID(c, "barcode_id")
	if !ok {
		return
	}
	b, err := h.barcodes.Advance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
