package models

import (
	"time"

	"github.com/google/uuid"
)

type MaterialStatus string

const (
	MaterialPending           MaterialStatus = "PENDING"
	MaterialPartiallyApproved MaterialStatus = "PARTIALLY_APPROVED"
	MaterialApproved          MaterialStatus = "APPROVED"
	MaterialRejected          MaterialStatus = "REJECTED"
)

func (s MaterialStatus) Valid() bool {
	switch s {
	case MaterialPending, MaterialPartiallyApproved, MaterialApproved, MaterialRejected:
		return true
	}
	return false
}

type MaterialRequest struct {
	ID                uuid.UUID      `json:"id"`
	OrderID           uuid.UUID      `json:"order_id"`
	MaterialContent   string         `json:"material_content"`
	QuantityRequested int            `json:"quantity_requested"`
	QuantityApproved  int            `json:"quantity_approved"`
	AttachmentURL     string         `json:"attachment_url,omitempty"`
	Status            MaterialStatus `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Remaining is the quantity still open for approval.
func (m MaterialRequest) Remaining() int {
	return m.QuantityRequested - m.QuantityApproved
}
