package models

type CreateOrderRequest struct {
	UnitID             int64     `json:"unit_id" binding:"required" example:"2"`
	StyleNumber        string    `json:"style_number" binding:"required" example:"ST-1001"`
	BoxCount           int       `json:"box_count" example:"6"`
	TargetDeliveryDate string    `json:"target_delivery_date,omitempty" example:"2024-01-15"`
	Description        string    `json:"description,omitempty"`
	AttachmentURL      string    `json:"attachment_url,omitempty"`
	AttachmentName     string    `json:"attachment_name,omitempty"`
	SizeBreakdown      []SizeRow `json:"size_breakdown" binding:"required"`
}

// UpdateOrderRequest edits the free-form fields. Omitted fields are left as they are.
type UpdateOrderRequest struct {
	Description    *string `json:"description,omitempty"`
	QCNotes        *string `json:"qc_notes,omitempty"`
	AttachmentURL  *string `json:"attachment_url,omitempty"`
	AttachmentName *string `json:"attachment_name,omitempty"`
}

func (r UpdateOrderRequest) Patch() OrderDetailsPatch {
	return OrderDetailsPatch{
		Description:    r.Description,
		QCNotes:        r.QCNotes,
		AttachmentURL:  r.AttachmentURL,
		AttachmentName: r.AttachmentName,
	}
}

type RejectOrderRequest struct {
	Note string `json:"note" binding:"required"`
}

type CompleteOrderRequest struct {
	CompletionBreakdown []SizeRow `json:"completion_breakdown" binding:"required"`
	ActualBoxCount      *int      `json:"actual_box_count" binding:"required"`
}

type AddNoteRequest struct {
	Message string `json:"message" binding:"required"`
}

type GenerateBarcodesRequest struct {
	Count       int    `json:"count" binding:"required" example:"10"`
	StyleNumber string `json:"style_number,omitempty" example:"ST-1001"`
	Size        string `json:"size" binding:"required" example:"M"`
}

type ScanRequest struct {
	BarcodeSerial string `json:"barcode_serial" binding:"required"`
}

type CreateMaterialRequest struct {
	OrderID           string `json:"order_id" binding:"required"`
	MaterialContent   string `json:"material_content" binding:"required"`
	QuantityRequested int    `json:"quantity_requested" binding:"required"`
	AttachmentURL     string `json:"attachment_url,omitempty"`
}

type ApproveMaterialRequest struct {
	// Quantity approved in this action, added to the running total. Zero on a
	// request with nothing approved yet rejects it, so the key must be sent.
	ApproveQty *int `json:"approve_qty" binding:"required" example:"40"`
}

type CheckoutRequest struct {
	CustomerName string   `json:"customer_name" binding:"required"`
	BarcodeIDs   []string `json:"barcode_ids" binding:"required"`
	InvoiceNo    string   `json:"invoice_no,omitempty"`
}
