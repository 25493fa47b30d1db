package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderAssigned   OrderStatus = "ASSIGNED"
	OrderStarted    OrderStatus = "STARTED"
	OrderQC         OrderStatus = "QC"
	OrderQCApproved OrderStatus = "QC_APPROVED"
	// OrderPacked has no producer in current flows but is still accepted from storage.
	OrderPacked    OrderStatus = "PACKED"
	OrderCompleted OrderStatus = "COMPLETED"
)

var OrderStatuses = []OrderStatus{
	OrderAssigned, OrderStarted, OrderQC, OrderQCApproved, OrderPacked, OrderCompleted,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// SizeRow is one color line of a size breakdown. Rows are keyed by color.
type SizeRow struct {
	Color string `json:"color"`
	S     int    `json:"s"`
	M     int    `json:"m"`
	L     int    `json:"l"`
	XL    int    `json:"xl"`
	XXL   int    `json:"xxl"`
	XXXL  int    `json:"xxxl"`
}

// Key is the join key used to align planned and completion rows.
func (r SizeRow) Key() string {
	return ColorKey(r.Color)
}

func ColorKey(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

// SizeField pairs a size label with its value in a row.
type SizeField struct {
	Size  string
	Value int
}

func (r SizeRow) Fields() []SizeField {
	return []SizeField{
		{"s", r.S}, {"m", r.M}, {"l", r.L},
		{"xl", r.XL}, {"xxl", r.XXL}, {"xxxl", r.XXXL},
	}
}

type Order struct {
	ID                  uuid.UUID   `json:"id"`
	OrderNo             string      `json:"order_no"`
	UnitID              int64       `json:"unit_id"`
	StyleNumber         string      `json:"style_number"`
	Quantity            int         `json:"quantity"`
	BoxCount            int         `json:"box_count"`
	ActualBoxCount      *int        `json:"actual_box_count,omitempty"`
	TargetDeliveryDate  string      `json:"target_delivery_date,omitempty"`
	Description         string      `json:"description,omitempty"`
	QCNotes             string      `json:"qc_notes,omitempty"`
	AttachmentURL       string      `json:"attachment_url,omitempty"`
	AttachmentName      string      `json:"attachment_name,omitempty"`
	SizeBreakdown       []SizeRow   `json:"size_breakdown"`
	CompletionBreakdown []SizeRow   `json:"completion_breakdown,omitempty"`
	LastBarcodeSerial   int         `json:"last_barcode_serial"`
	Status              OrderStatus `json:"status"`
	CreatedAt           time.Time   `json:"created_at"`
}

// OrderDetailsPatch holds the free-form fields that may change outside the lifecycle.
// Nil fields are left untouched.
type OrderDetailsPatch struct {
	Description    *string
	QCNotes        *string
	AttachmentURL  *string
	AttachmentName *string
}

func (p OrderDetailsPatch) Empty() bool {
	return p.Description == nil && p.QCNotes == nil && p.AttachmentURL == nil && p.AttachmentName == nil
}

type LogKind string

const (
	LogStatusChange LogKind = "STATUS_CHANGE"
	LogManualUpdate LogKind = "MANUAL_UPDATE"
)

// OrderLog is an append-only audit entry for an order.
type OrderLog struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Kind      LogKind   `json:"kind"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
