package models

import (
	"time"

	"github.com/google/uuid"
)

type BarcodeStatus string

const (
	BarcodeGenerated          BarcodeStatus = "GENERATED"
	BarcodeDetailsFilled      BarcodeStatus = "DETAILS_FILLED"
	BarcodePushedOutOfSubunit BarcodeStatus = "PUSHED_OUT_OF_SUBUNIT"
	BarcodeQCApproved         BarcodeStatus = "QC_APPROVED"
	BarcodeCommittedToStock   BarcodeStatus = "COMMITTED_TO_STOCK"
	BarcodeSold               BarcodeStatus = "SOLD"
)

var BarcodeStatuses = []BarcodeStatus{
	BarcodeGenerated, BarcodeDetailsFilled, BarcodePushedOutOfSubunit,
	BarcodeQCApproved, BarcodeCommittedToStock, BarcodeSold,
}

func (s BarcodeStatus) Valid() bool {
	for _, v := range BarcodeStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Barcode struct {
	ID            uuid.UUID     `json:"id"`
	BarcodeSerial string        `json:"barcode_serial"`
	OrderID       uuid.UUID     `json:"order_id"`
	StyleNumber   string        `json:"style_number"`
	Size          string        `json:"size"`
	Status        BarcodeStatus `json:"status"`
	InvoiceID     *uuid.UUID    `json:"invoice_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// StockCommit records one inventory commit batch. It is never mutated.
type StockCommit struct {
	ID         uuid.UUID `json:"id"`
	TotalItems int       `json:"total_items"`
	CreatedAt  time.Time `json:"created_at"`
}
