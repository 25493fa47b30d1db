package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tintura-sst/internal/barcode"
	"tintura-sst/internal/config"
	"tintura-sst/internal/lifecycle"
	"tintura-sst/internal/lock"
	"tintura-sst/internal/models"
	"tintura-sst/internal/receipt"
	"tintura-sst/internal/store"
)

type BarcodeService struct {
	store    store.Store
	locker   lock.Locker
	logger   *logrus.Logger
	maxBatch int
	now      func() time.Time
}

func NewBarcodeService(st store.Store, locker lock.Locker, logger *logrus.Logger, maxBatch int) *BarcodeService {
	return &BarcodeService{
		store:    st,
		locker:   locker,
		logger:   logger,
		maxBatch: maxBatch,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type GeneratedBatch struct {
	Barcodes []models.Barcode `json:"barcodes"`
	Receipt  receipt.Receipt  `json:"receipt"`
}

// Generate allocates count new serials on the order. Style defaults to the
// order's style number.
func (s *BarcodeService) Generate(ctx context.Context, orderID uuid.UUID, count int, style, size string) (*GeneratedBatch, error) {
	if count < 1 || count > s.maxBatch {
		return nil, invalid("count must be between 1 and %d", s.maxBatch)
	}
	size = strings.ToUpper(strings.TrimSpace(size))
	if !barcode.ValidSegment(size) {
		return nil, invalid("size is required and must not contain ';'")
	}

	release, err := s.locker.Acquire(ctx, lock.OrderKey(orderID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	defer release()

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	style = strings.TrimSpace(style)
	if style == "" {
		style = order.StyleNumber
	}
	if !barcode.ValidSegment(style) {
		return nil, invalid("style is required and must not contain ';'")
	}

	created, err := s.store.AllocateBarcodes(ctx, orderID, count, func(orderNo string, seq int) models.Barcode {
		return models.Barcode{
			BarcodeSerial: barcode.FormatSerial(orderNo, style, size, seq),
			StyleNumber:   style,
			Size:          size,
			Status:        models.BarcodeGenerated,
		}
	})
	if err != nil {
		config.LogError(s.logger, "barcodes", "Generate", "allocation failed", logrus.Fields{"order_no": order.OrderNo, "count": count}, err)
		return nil, fmt.Errorf("failed to generate barcodes: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"order_no": order.OrderNo,
		"count":    len(created),
		"first":    created[0].BarcodeSerial,
	}).Info("barcodes generated")

	return &GeneratedBatch{
		Barcodes: created,
		Receipt:  receipt.BarcodeBatch(*order, created, s.now()),
	}, nil
}

// ListFilter narrows a barcode listing. Empty fields match everything.
type ListFilter struct {
	OrderID *uuid.UUID
	Status  models.BarcodeStatus
	Serial  string
}

func (s *BarcodeService) List(ctx context.Context, f ListFilter) ([]models.Barcode, error) {
	bf := store.BarcodeFilter{OrderID: f.OrderID}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, invalid("unknown barcode status %q", f.Status)
		}
		bf.Statuses = []models.BarcodeStatus{f.Status}
	}
	if serial := strings.TrimSpace(f.Serial); serial != "" {
		bf.Serials = []string{serial}
	}
	return s.store.ListBarcodes(ctx, bf)
}

// Advance moves a barcode one step through production. Stock entry and sale
// have their own flows and are refused here.
func (s *BarcodeService) Advance(ctx context.Context, id uuid.UUID) (*models.Barcode, error) {
	found, err := s.store.ListBarcodes(ctx, store.BarcodeFilter{IDs: []uuid.UUID{id}})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("barcode %s: %w", id, store.ErrNotFound)
	}
	b := found[0]
	if !lifecycle.CanAdvanceBarcode(b.Status) {
		return nil, invalid("barcode %s is %s and cannot be advanced manually", b.BarcodeSerial, b.Status)
	}
	next, _ := lifecycle.NextBarcodeStatus(b.Status)
	return s.store.UpdateBarcodeStatus(ctx, id, b.Status, next)
}
