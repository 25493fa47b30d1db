package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID           uuid.UUID       `json:"id"`
	InvoiceNo    string          `json:"invoice_no"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	BarcodeIDs   []uuid.UUID     `json:"barcode_ids"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Unit is a production location. Units are static reference data.
type Unit struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	IsMain bool   `json:"is_main"`
}
