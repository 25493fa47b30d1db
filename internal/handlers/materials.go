package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
)

type MaterialsHandler struct {
	materials *services.MaterialService
}

func NewMaterialsHandler(materials *services.MaterialService) *MaterialsHandler {
	return &MaterialsHandler{materials: materials}
}

// CreateRequest godoc
// @Summary     Request material for an order
// @Tags        materials
// @Accept      json
// @Produce     json
// @Param       request body models.CreateMaterialRequest true "Material request"
// @Success     201 {object} models.MaterialRequest
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /materials [post]
func (h *MaterialsHandler) CreateRequest(c *gin.Context) {
	var req models.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		badRequest(c, "invalid order_id", err)
		return
	}

	m, err := h.materials.Create(c.Request.Context(), orderID, req.MaterialContent, req.QuantityRequested, req.AttachmentURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListRequests godoc
// @Summary     List material requests
// @Tags        materials
// @Produce     json
// @Param       order_id query string false "Order ID (UUID)"
// @Param       status query string false "PENDING, PARTIALLY_APPROVED, APPROVED or REJECTED"
// @Success     200 {array} models.MaterialRequest
// @Router      /materials [get]
func (h *MaterialsHandler) ListRequests(c *gin.Context) {
	var orderID *uuid.UUID
	if raw := c.Query("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid order_id", err)
			return
		}
		orderID = &id
	}
	status := models.MaterialStatus(strings.ToUpper(c.Query("status")))

	list, err := h.materials.List(c.Request.Context(), orderID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.MaterialRequest{}
	}
	c.JSON(http.StatusOK, list)
}

// Approve godoc
// @Summary     Approve material
// @Description Adds approve_qty to the approved total. The total never exceeds the requested quantity.
// @Description approve_qty 0 on an untouched request rejects it.
// @Tags        materials
// @Accept      json
// @Produce     json
// @Param       request_id path string true "Material request ID (UUID)"
// @Param       request body models.ApproveMaterialRequest true "Approval"
// @Success     200 {object} services.ApprovalResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /materials/{request_id}/approve [post]
func (h *MaterialsHandler) Approve(c *gin.Context) {
	id, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	var req models.ApproveMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	result, err := h.materials.Approve(c.Request.Context(), id, *req.ApproveQty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
