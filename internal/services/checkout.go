package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"tintura-sst/internal/config"
	"tintura-sst/internal/lifecycle"
	"tintura-sst/internal/models"
	"tintura-sst/internal/receipt"
	"tintura-sst/internal/store"
)

type CheckoutService struct {
	store     store.Store
	logger    *logrus.Logger
	unitPrice decimal.Decimal
	now       func() time.Time
}

func NewCheckoutService(st store.Store, logger *logrus.Logger, unitPrice decimal.Decimal) *CheckoutService {
	return &CheckoutService{
		store:     st,
		logger:    logger,
		unitPrice: unitPrice,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CheckoutResult struct {
	Invoice models.Invoice  `json:"invoice"`
	Receipt receipt.Receipt `json:"receipt"`
}

func (s *CheckoutService) newInvoiceNo() string {
	b := make([]byte, 2)
	_, _ = rand.Read(b)
	return fmt.Sprintf("INV-%s-%s", s.now().Format("20060102150405"), strings.ToUpper(hex.EncodeToString(b)))
}

// Finalize sells the given barcodes to one customer. Either every barcode is
// sold and the invoice is stored, or nothing changes.
func (s *CheckoutService) Finalize(ctx context.Context, customerName string, barcodeIDs []uuid.UUID, invoiceNo string) (*CheckoutResult, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, invalid("customer_name is required")
	}
	if len(barcodeIDs) == 0 {
		return nil, invalid("at least one barcode is required")
	}
	seen := make(map[uuid.UUID]bool, len(barcodeIDs))
	for _, id := range barcodeIDs {
		if seen[id] {
			return nil, invalid("barcode %s is listed twice", id)
		}
		seen[id] = true
	}

	current, err := s.store.ListBarcodes(ctx, store.BarcodeFilter{IDs: barcodeIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to load barcodes: %w", err)
	}
	if len(current) != len(barcodeIDs) {
		return nil, fmt.Errorf("checkout references unknown barcodes: %w", store.ErrNotFound)
	}
	for _, b := range current {
		if !lifecycle.CanTransitionBarcode(b.Status, models.BarcodeSold, lifecycle.Checkout) {
			return nil, fmt.Errorf("barcode %s is %s and cannot be sold: %w", b.BarcodeSerial, b.Status, store.ErrConflict)
		}
	}

	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		invoiceNo = s.newInvoiceNo()
	}

	total := s.unitPrice.Mul(decimal.NewFromInt(int64(len(barcodeIDs))))
	inv, err := s.store.CreateInvoice(ctx, models.Invoice{
		InvoiceNo:    invoiceNo,
		CustomerName: customerName,
		TotalAmount:  total,
		BarcodeIDs:   barcodeIDs,
	})
	if err != nil {
		config.LogError(s.logger, "checkout", "Finalize", "invoice rejected", logrus.Fields{"invoice_no": invoiceNo, "items": len(barcodeIDs)}, err)
		return nil, fmt.Errorf("failed to finalize invoice: %w", err)
	}

	sold, err := s.store.ListBarcodes(ctx, store.BarcodeFilter{IDs: inv.BarcodeIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to load sold barcodes: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"invoice_no": inv.InvoiceNo,
		"items":      len(inv.BarcodeIDs),
		"total":      inv.TotalAmount.String(),
	}).Info("invoice finalized")

	return &CheckoutResult{Invoice: *inv, Receipt: receipt.Invoice(*inv, sold, s.unitPrice)}, nil
}

func (s *CheckoutService) Invoices(ctx context.Context) ([]models.Invoice, error) {
	return s.store.ListInvoices(ctx)
}

// Stock lists the barcodes available for sale.
func (s *CheckoutService) Stock(ctx context.Context) ([]models.Barcode, error) {
	return s.store.ListBarcodes(ctx, store.BarcodeFilter{Statuses: lifecycle.BarcodeSources(models.BarcodeSold, lifecycle.Checkout)})
}
