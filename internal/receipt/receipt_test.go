package receipt_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/models"
	"tintura-sst/internal/receipt"
)

func TestBarcodeBatch(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	order := models.Order{OrderNo: "ORD-7"}
	bcs := []models.Barcode{
		{BarcodeSerial: "ORD-7;X;M;00001", StyleNumber: "X", Size: "M"},
		{BarcodeSerial: "ORD-7;X;M;00002", StyleNumber: "X", Size: "M"},
	}
	r := receipt.BarcodeBatch(order, bcs, at)
	assert.Equal(t, "ORD-7", r.Reference)
	assert.Equal(t, 2, r.Total)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, 2, r.Lines[0].Quantity)
	assert.Contains(t, r.Lines[1].Description, "ORD-7;X;M;00001")
	assert.Contains(t, r.Lines[1].Description, "ORD-7;X;M;00002")
}

func TestMaterialApproval_RecordsDelta(t *testing.T) {
	req := models.MaterialRequest{ID: uuid.New(), MaterialContent: "Thread", QuantityRequested: 100, QuantityApproved: 70}
	r := receipt.MaterialApproval(req, &models.Order{OrderNo: "ORD-2"}, 30, time.Now())
	assert.Equal(t, "ORD-2", r.Reference)
	assert.Equal(t, 30, r.Total)
	assert.Equal(t, 30, r.Lines[0].Quantity)
}

func TestInvoice(t *testing.T) {
	inv := models.Invoice{
		InvoiceNo:    "INV-1",
		CustomerName: "Acme",
		TotalAmount:  decimal.NewFromInt(1500),
		BarcodeIDs:   []uuid.UUID{uuid.New(), uuid.New(), uuid.New()},
	}
	sold := []models.Barcode{
		{StyleNumber: "X", Size: "M"},
		{StyleNumber: "X", Size: "M"},
		{StyleNumber: "X", Size: "L"},
	}
	r := receipt.Invoice(inv, sold, decimal.NewFromInt(500))
	assert.Equal(t, 3, r.Total)
	require.NotNil(t, r.Amount)
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(1500)))
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "Style X / Size L", r.Lines[0].Description)
	assert.True(t, r.Lines[1].Amount.Equal(decimal.NewFromInt(1000)))
}
