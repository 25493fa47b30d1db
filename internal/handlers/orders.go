package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"tintura-sst/internal/middleware"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
)

type OrdersHandler struct {
	orders *services.OrderService
}

func NewOrdersHandler(orders *services.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// CreateOrder godoc
// @Summary     Create an order
// @Description Assigns a new production order to a unit. Quantity is the sum of the size breakdown.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.CreateOrderRequest true "Order"
// @Success     201 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders godoc
// @Summary     List orders
// @Description Newest first, optionally for one unit
// @Tags        orders
// @Produce     json
// @Param       unit_id query int false "Unit ID"
// @Success     200 {array} models.Order
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	var unitID *int64
	if raw := c.Query("unit_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid unit_id", err)
			return
		}
		unitID = &v
	}

	orders, err := h.orders.List(c.Request.Context(), unitID)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary     Get an order
// @Description Returns the order with its planned versus completed reconciliation
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} services.OrderDetail
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	detail, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateOrder godoc
// @Summary     Update order details
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Param       request body models.UpdateOrderRequest true "Fields to change"
// @Success     200 {object} models.Order
// @Router      /orders/{order_id} [patch]
func (h *OrdersHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	order, err := h.orders.UpdateDetails(c.Request.Context(), id, req.Patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdvanceOrder godoc
// @Summary     Advance an order
// @Description Moves the order one step: ASSIGNED to STARTED, STARTED to QC, QC to QC_APPROVED.
// @Description Completion has its own endpoint.
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/advance [post]
func (h *OrdersHandler) AdvanceOrder(c *gin.Context) {
	id, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	order, err := h.orders.Advance(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RejectOrder godoc
// @Summary     Reject at QC
// @Description Sends an order in QC back to STARTED with a note
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Param       request body models.RejectOrderRequest true "Rejection note"
// @Success     200 {object} models.Order
// @Router      /orders/{order_id}/reject [post]
func (h *OrdersHandler) RejectOrder(c *gin.Context) {
	id, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	var req models.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	order, err := h.orders.RejectQC(c.Request.Context(), id, req.Note, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CompleteOrder godoc
// @Summary     Complete an order
// @Description Records the completed breakdown and box count of a QC_APPROVED order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Param       request body models.CompleteOrderRequest true "Completion"
// @Success     200 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/complete [post]
func (h *OrdersHandler) CompleteOrder(c *gin.Context) {
	id, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	var req models.CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	order, err := h.orders.Complete(c.Request.Context(), id, req.CompletionBreakdown, *req.ActualBoxCount, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AddNote godoc
// @Summary     Add a note to the order log
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Param       request body models.AddNoteRequest true "Note"
// @Success     201 {object} models.OrderLog
// @Router      /orders/{order_id}/logs [post]
func (h *OrdersHandler) AddNote(c *gin.Context) {
	id, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	var req models.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	entry, err := h.orders.AddNote(c.Request.Context(), id, req.Message, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListLogs godoc
// @Summary     Order log
// @Description Oldest first
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {array} models.OrderLog
// @Router      /orders/{order_id}/logs [get]
func (h *OrdersHandler) ListLogs(c *gin.Context) {
	id, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	logs, err := h.orders.Logs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []models.OrderLog{}
	}
	c.JSON(http.StatusOK, logs)
}
