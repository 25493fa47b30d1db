package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
	"tintura-sst/internal/store"
)

// respondError writes the status and body for a service error.
func respondError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found", Message: err.Error()})
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "conflict", Message: err.Error()})
	case errors.Is(err, services.ErrPartialBatch):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "partial write", Message: err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:     "storage unavailable",
			Message:   err.Error(),
			Retryable: true,
		})
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := models.ErrorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// pathID parses a UUID path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
