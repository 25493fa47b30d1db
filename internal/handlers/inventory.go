package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
)

// InventoryHandler drives the scan-and-commit staging flow.
type InventoryHandler struct {
	inventory *services.InventoryService
	checkout  *services.CheckoutService
}

func NewInventoryHandler(inventory *services.InventoryService, checkout *services.CheckoutService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, checkout: checkout}
}

// OpenSession godoc
// @Summary     Open a staging session
// @Tags        inventory
// @Produce     json
// @Success     201 {object} services.SessionView
// @Router      /inventory/sessions [post]
func (h *InventoryHandler) OpenSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.inventory.Open())
}

// GetSession godoc
// @Summary     View a staging session
// @Tags        inventory
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} services.SessionView
// @Failure     404 {object} models.ErrorResponse
// @Router      /inventory/sessions/{session_id} [get]
func (h *InventoryHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	view, err := h.inventory.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DiscardSession godoc
// @Summary     Discard a staging session
// @Tags        inventory
// @Param       session_id path string true "Session ID (UUID)"
// @Success     204
// @Router      /inventory/sessions/{session_id} [delete]
func (h *InventoryHandler) DiscardSession(c *gin.Context) {
	id, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	if err := h.inventory.Discard(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Scan godoc
// @Summary     Scan a serial into the session
// @Description The scanned item is classified READY, EXISTS, DUPLICATE_SCAN or ERROR.
// @Description Classification never fails the request.
// @Tags        inventory
// @Accept      json
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       request body models.ScanRequest true "Scanned serial"
// @Success     200 {object} inventory.Item
// @Router      /inventory/sessions/{session_id}/scan [post]
func (h *InventoryHandler) Scan(c *gin.Context) {
	id, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	item, err := h.inventory.Scan(c.Request.Context(), id, req.BarcodeSerial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveItem godoc
// @Summary     Remove one staged row
// @Description Only the row with this item ID is dropped. Other scans of the same serial stay.
// @Tags        inventory
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Param       item_id path string true "Staged item ID (UUID)"
// @Success     200 {object} services.SessionView
// @Router      /inventory/sessions/{session_id}/items/{item_id} [delete]
func (h *InventoryHandler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	view, err := h.inventory.Remove(id, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Commit godoc
// @Summary     Commit READY items to stock
// @Description Every READY item moves to COMMITTED_TO_STOCK under one stock commit. The session list is cleared.
// @Tags        inventory
// @Produce     json
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} services.CommitReport
// @Failure     503 {object} models.ErrorResponse
// @Router      /inventory/sessions/{session_id}/commit [post]
func (h *InventoryHandler) Commit(c *gin.Context) {
	id, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	report, err := h.inventory.Commit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *InventoryHandler) History(c *gin.Context) {
	commits, err := h.inventory.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if commits == nil {
		commits = []models.StockCommit{}
	}
	c.JSON(http.StatusOK, commits)
}

func (h *InventoryHandler) Stock(c *gin.Context) {
	stock, err := h.checkout.Stock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if stock == nil {
		stock = []models.Barcode{}
	}
	c.JSON(http.StatusOK, stock)
}
