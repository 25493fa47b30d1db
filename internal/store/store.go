// Package store defines the persistence contract used by the services.
//
// Reads are plain filtered lists. Writes that touch more than one record, or
// that depend on the prior state of a record, are single methods so each
// implementation can make them atomic (a transaction, a conditional update, or
// a mutex for the in-memory store).
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"tintura-sst/internal/models"
)

var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means the record was not in the expected prior state.
	ErrConflict = errors.New("record changed concurrently or is in the wrong state")
	// ErrDuplicate means a unique key (serial, invoice number) is taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrPartialBatch means a multi-step write failed and could not be undone.
	ErrPartialBatch = errors.New("partial batch failure")
)

type OrderFilter struct {
	UnitID *int64
}

type BarcodeFilter struct {
	OrderID  *uuid.UUID
	IDs      []uuid.UUID
	Statuses []models.BarcodeStatus
	Serials  []string
}

type MaterialFilter struct {
	OrderID  *uuid.UUID
	Statuses []models.MaterialStatus
}

// OrderTransition moves an order from one status to another and records the
// matching log entry. Apply, when set, edits the order before it is saved.
type OrderTransition struct {
	OrderID uuid.UUID
	From    models.OrderStatus
	To      models.OrderStatus
	Apply   func(*models.Order)
	Log     models.OrderLog
}

// BarcodeBuilder produces the barcode for one reserved sequence number.
type BarcodeBuilder func(orderNo string, seq int) models.Barcode

// MaterialApproval is a compare-and-swap on the approved total.
type MaterialApproval struct {
	RequestID        uuid.UUID
	ExpectedApproved int
	NewApproved      int
	Status           models.MaterialStatus
}

type Store interface {
	Ping(ctx context.Context) error

	ListUnits(ctx context.Context) ([]models.Unit, error)
	GetUnit(ctx context.Context, id int64) (*models.Unit, error)

	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// CreateOrder assigns ID, OrderNo and CreatedAt and appends log in the
	// same operation. log.OrderID is filled in by the store.
	CreateOrder(ctx context.Context, o models.Order, log models.OrderLog) (*models.Order, error)
	UpdateOrderDetails(ctx context.Context, id uuid.UUID, patch models.OrderDetailsPatch) (*models.Order, error)
	TransitionOrder(ctx context.Context, t OrderTransition) (*models.Order, error)
	AppendOrderLog(ctx context.Context, log models.OrderLog) (*models.OrderLog, error)
	ListOrderLogs(ctx context.Context, orderID uuid.UUID) ([]models.OrderLog, error)

	ListBarcodes(ctx context.Context, f BarcodeFilter) ([]models.Barcode, error)
	// AllocateBarcodes reserves count sequence numbers on the order counter,
	// builds and inserts the barcodes, and saves the counter as one unit.
	AllocateBarcodes(ctx context.Context, orderID uuid.UUID, count int, build BarcodeBuilder) ([]models.Barcode, error)
	// UpdateBarcodeStatus fails with ErrConflict when the barcode is not in from.
	UpdateBarcodeStatus(ctx context.Context, id uuid.UUID, from, to models.BarcodeStatus) (*models.Barcode, error)
	// CommitToStock moves every listed barcode that is not yet in stock to
	// COMMITTED_TO_STOCK and records one StockCommit for the moved ones.
	// Barcodes already in stock are left alone and not returned. When nothing
	// moves, no StockCommit is created and the returned commit is nil.
	CommitToStock(ctx context.Context, ids []uuid.UUID) (*models.StockCommit, []uuid.UUID, error)
	ListStockCommits(ctx context.Context) ([]models.StockCommit, error)

	ListMaterialRequests(ctx context.Context, f MaterialFilter) ([]models.MaterialRequest, error)
	GetMaterialRequest(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error)
	CreateMaterialRequest(ctx context.Context, m models.MaterialRequest) (*models.MaterialRequest, error)
	UpdateMaterialApproval(ctx context.Context, a MaterialApproval) (*models.MaterialRequest, error)

	// CreateInvoice sells every barcode in inv.BarcodeIDs and stores the
	// invoice as one unit. Any barcode not COMMITTED_TO_STOCK fails the whole
	// call with ErrConflict.
	CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
}

// IsRetryable reports whether err is a storage failure the caller may retry,
// as opposed to a domain outcome such as a missing or conflicting record.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrConflict) &&
		!errors.Is(err, ErrDuplicate) &&
		!errors.Is(err, ErrPartialBatch) &&
		!errors.Is(err, context.Canceled)
}
