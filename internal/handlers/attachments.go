package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"tintura-sst/internal/models"
)

const maxAttachmentSize = 10 << 20

// Uploader stores an attachment and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
}

type AttachmentsHandler struct {
	uploader Uploader
}

// NewAttachmentsHandler accepts a nil uploader; uploads then answer 503.
func NewAttachmentsHandler(uploader Uploader) *AttachmentsHandler {
	return &AttachmentsHandler{uploader: uploader}
}

// Upload godoc
// @Summary     Upload an attachment
// @Description Stores a tech pack or material sheet and returns its URL for use on orders and material requests.
// @Tags        attachments
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Attachment (max 10 MB)"
// @Param       folder formData string false "orders (default) or materials"
// @Success     201 {object} models.AttachmentResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /attachments [post]
func (h *AttachmentsHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "attachment storage not configured"})
		return
	}

	folder := c.DefaultPostForm("folder", "orders")
	if folder != "orders" && folder != "materials" {
		badRequest(c, "folder must be orders or materials", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required", err)
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		badRequest(c, "file exceeds 10 MB", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "failed to read file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize+1))
	if err != nil {
		badRequest(c, "failed to read file", err)
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), folder, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:     "failed to upload file",
			Message:   err.Error(),
			Retryable: true,
		})
		return
	}
	c.JSON(http.StatusCreated, models.AttachmentResponse{URL: url, Name: fileHeader.Filename})
}
