// Package memory is an in-process store.Store used for demos, degraded mode
// and tests. Every method holds the store mutex, which makes the multi-record
// writes atomic.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"tintura-sst/internal/lifecycle"
	"tintura-sst/internal/models"
	"tintura-sst/internal/store"
)

type Store struct {
	mu sync.RWMutex

	units []models.Unit

	orders      map[uuid.UUID]*models.Order
	orderIndex  []uuid.UUID
	nextOrderNo int
	logs        []models.OrderLog

	barcodes     map[uuid.UUID]*models.Barcode
	serials      map[string]uuid.UUID
	barcodeIndex []uuid.UUID
	commits      []models.StockCommit

	materials     map[uuid.UUID]*models.MaterialRequest
	materialOrder []uuid.UUID

	invoices   []models.Invoice
	invoiceNos map[string]bool

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		orders:      map[uuid.UUID]*models.Order{},
		nextOrderNo: 1,
		barcodes:    map[uuid.UUID]*models.Barcode{},
		serials:     map[string]uuid.UUID{},
		materials:   map[uuid.UUID]*models.MaterialRequest{},
		invoiceNos:  map[string]bool{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) ListUnits(ctx context.Context) ([]models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Unit, len(s.units))
	copy(out, s.units)
	return out, nil
}

func (s *Store) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.units {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("unit %d: %w", id, store.ErrNotFound)
}

// AddUnit registers a unit. Units are static, so this is only used for seeding.
func (s *Store) AddUnit(u models.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append(s.units, u)
}

func copyOrder(o *models.Order) models.Order {
	c := *o
	c.SizeBreakdown = append([]models.SizeRow(nil), o.SizeBreakdown...)
	if o.CompletionBreakdown != nil {
		c.CompletionBreakdown = append([]models.SizeRow(nil), o.CompletionBreakdown...)
	}
	if o.ActualBoxCount != nil {
		v := *o.ActualBoxCount
		c.ActualBoxCount = &v
	}
	return c
}

func (s *Store) putOrder(o *models.Order) {
	s.orders[o.ID] = o
	s.orderIndex = append(s.orderIndex, o.ID)
	if n, err := strconv.Atoi(strings.TrimPrefix(o.OrderNo, "ORD-")); err == nil && n >= s.nextOrderNo {
		s.nextOrderNo = n + 1
	}
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.orderIndex))
	// Newest first, as the dashboard lists them.
	for i := len(s.orderIndex) - 1; i >= 0; i-- {
		o := s.orders[s.orderIndex[i]]
		if f.UnitID != nil && o.UnitID != *f.UnitID {
			continue
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	c := copyOrder(o)
	return &c, nil
}

func (s *Store) CreateOrder(ctx context.Context, o models.Order, log models.OrderLog) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = uuid.New()
	o.OrderNo = fmt.Sprintf("ORD-%d", s.nextOrderNo)
	o.CreatedAt = s.now()
	stored := copyOrder(&o)
	s.putOrder(&stored)

	log.OrderID = o.ID
	s.appendLog(log)
	return &o, nil
}

func (s *Store) UpdateOrderDetails(ctx context.Context, id uuid.UUID, patch models.OrderDetailsPatch) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	if patch.Description != nil {
		o.Description = *patch.Description
	}
	if patch.QCNotes != nil {
		o.QCNotes = *patch.QCNotes
	}
	if patch.AttachmentURL != nil {
		o.AttachmentURL = *patch.AttachmentURL
	}
	if patch.AttachmentName != nil {
		o.AttachmentName = *patch.AttachmentName
	}
	c := copyOrder(o)
	return &c, nil
}

func (s *Store) TransitionOrder(ctx context.Context, t store.OrderTransition) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[t.OrderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", t.OrderID, store.ErrNotFound)
	}
	if o.Status != t.From {
		return nil, fmt.Errorf("order %s is %s, expected %s: %w", o.OrderNo, o.Status, t.From, store.ErrConflict)
	}
	next := copyOrder(o)
	if t.Apply != nil {
		t.Apply(&next)
	}
	next.Status = t.To
	s.orders[t.OrderID] = &next

	log := t.Log
	log.OrderID = t.OrderID
	s.appendLog(log)

	c := copyOrder(&next)
	return &c, nil
}

func (s *Store) appendLog(log models.OrderLog) models.OrderLog {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}
	s.logs = append(s.logs, log)
	return log
}

func (s *Store) AppendOrderLog(ctx context.Context, log models.OrderLog) (*models.OrderLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[log.OrderID]; !ok {
		return nil, fmt.Errorf("order %s: %w", log.OrderID, store.ErrNotFound)
	}
	stored := s.appendLog(log)
	return &stored, nil
}

func (s *Store) ListOrderLogs(ctx context.Context, orderID uuid.UUID) ([]models.OrderLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.OrderLog
	for _, l := range s.logs {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) putBarcode(b *models.Barcode) error {
	if _, taken := s.serials[b.BarcodeSerial]; taken {
		return fmt.Errorf("barcode %s: %w", b.BarcodeSerial, store.ErrDuplicate)
	}
	s.barcodes[b.ID] = b
	s.serials[b.BarcodeSerial] = b.ID
	s.barcodeIndex = append(s.barcodeIndex, b.ID)
	return nil
}

func matchBarcode(b *models.Barcode, f store.BarcodeFilter) bool {
	if f.OrderID != nil && b.OrderID != *f.OrderID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if b.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Store) ListBarcodes(ctx context.Context, f store.BarcodeFilter) ([]models.Barcode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []uuid.UUID
	switch {
	case len(f.Serials) > 0 || len(f.IDs) > 0:
		seen := map[uuid.UUID]bool{}
		for _, serial := range f.Serials {
			if id, ok := s.serials[serial]; ok && !seen[id] {
				seen[id] = true
				candidates = append(candidates, id)
			}
		}
		for _, id := range f.IDs {
			if _, ok := s.barcodes[id]; ok && !seen[id] {
				seen[id] = true
				candidates = append(candidates, id)
			}
		}
	default:
		candidates = s.barcodeIndex
	}

	out := make([]models.Barcode, 0, len(candidates))
	for _, id := range candidates {
		b := s.barcodes[id]
		if matchBarcode(b, f) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *Store) AllocateBarcodes(ctx context.Context, orderID uuid.UUID, count int, build store.BarcodeBuilder) ([]models.Barcode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
	}

	created := make([]models.Barcode, 0, count)
	batch := make(map[string]bool, count)
	counter := o.LastBarcodeSerial
	for i := 0; i < count; i++ {
		counter++
		b := build(o.OrderNo, counter)
		b.OrderID = orderID
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		b.CreatedAt = s.now()
		if _, taken := s.serials[b.BarcodeSerial]; taken || batch[b.BarcodeSerial] {
			return nil, fmt.Errorf("barcode %s: %w", b.BarcodeSerial, store.ErrDuplicate)
		}
		batch[b.BarcodeSerial] = true
		created = append(created, b)
	}
	for i := range created {
		b := created[i]
		if err := s.putBarcode(&b); err != nil {
			return nil, err
		}
	}
	o.LastBarcodeSerial = counter
	return created, nil
}

func (s *Store) UpdateBarcodeStatus(ctx context.Context, id uuid.UUID, from, to models.BarcodeStatus) (*models.Barcode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.barcodes[id]
	if !ok {
		return nil, fmt.Errorf("barcode %s: %w", id, store.ErrNotFound)
	}
	if b.Status != from {
		return nil, fmt.Errorf("barcode %s is %s, expected %s: %w", b.BarcodeSerial, b.Status, from, store.ErrConflict)
	}
	b.Status = to
	c := *b
	return &c, nil
}

func (s *Store) CommitToStock(ctx context.Context, ids []uuid.UUID) (*models.StockCommit, []uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var moved []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		b, ok := s.barcodes[id]
		if !ok || seen[id] || !lifecycle.CanTransitionBarcode(b.Status, models.BarcodeCommittedToStock, lifecycle.StockCommit) {
			continue
		}
		seen[id] = true
		moved = append(moved, id)
	}
	if len(moved) == 0 {
		return nil, nil, nil
	}
	for _, id := range moved {
		s.barcodes[id].Status = models.BarcodeCommittedToStock
	}
	commit := models.StockCommit{ID: uuid.New(), TotalItems: len(moved), CreatedAt: s.now()}
	s.commits = append(s.commits, commit)
	return &commit, moved, nil
}

func (s *Store) ListStockCommits(ctx context.Context) ([]models.StockCommit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StockCommit, 0, len(s.commits))
	for i := len(s.commits) - 1; i >= 0; i-- {
		out = append(out, s.commits[i])
	}
	return out, nil
}

func (s *Store) ListMaterialRequests(ctx context.Context, f store.MaterialFilter) ([]models.MaterialRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MaterialRequest, 0, len(s.materialOrder))
	for i := len(s.materialOrder) - 1; i >= 0; i-- {
		m := s.materials[s.materialOrder[i]]
		if f.OrderID != nil && m.OrderID != *f.OrderID {
			continue
		}
		if len(f.Statuses) > 0 {
			keep := false
			for _, st := range f.Statuses {
				if m.Status == st {
					keep = true
					break
				}
			}
			if !keep {
				continue
			}
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *Store) GetMaterialRequest(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[id]
	if !ok {
		return nil, fmt.Errorf("material request %s: %w", id, store.ErrNotFound)
	}
	c := *m
	return &c, nil
}

func (s *Store) CreateMaterialRequest(ctx context.Context, m models.MaterialRequest) (*models.MaterialRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[m.OrderID]; !ok {
		return nil, fmt.Errorf("order %s: %w", m.OrderID, store.ErrNotFound)
	}
	m.ID = uuid.New()
	m.CreatedAt = s.now()
	stored := m
	s.materials[m.ID] = &stored
	s.materialOrder = append(s.materialOrder, m.ID)
	return &m, nil
}

func (s *Store) UpdateMaterialApproval(ctx context.Context, a store.MaterialApproval) (*models.MaterialRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[a.RequestID]
	if !ok {
		return nil, fmt.Errorf("material request %s: %w", a.RequestID, store.ErrNotFound)
	}
	if m.QuantityApproved != a.ExpectedApproved {
		return nil, fmt.Errorf("material request %s approved total moved: %w", a.RequestID, store.ErrConflict)
	}
	m.QuantityApproved = a.NewApproved
	m.Status = a.Status
	c := *m
	return &c, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.invoiceNos[inv.InvoiceNo] {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceNo, store.ErrDuplicate)
	}
	for _, id := range inv.BarcodeIDs {
		b, ok := s.barcodes[id]
		if !ok {
			return nil, fmt.Errorf("barcode %s: %w", id, store.ErrNotFound)
		}
		if !lifecycle.CanTransitionBarcode(b.Status, models.BarcodeSold, lifecycle.Checkout) {
			return nil, fmt.Errorf("barcode %s is %s: %w", b.BarcodeSerial, b.Status, store.ErrConflict)
		}
	}

	inv.ID = uuid.New()
	inv.CreatedAt = s.now()
	inv.BarcodeIDs = append([]uuid.UUID(nil), inv.BarcodeIDs...)
	for _, id := range inv.BarcodeIDs {
		b := s.barcodes[id]
		b.Status = models.BarcodeSold
		invoiceID := inv.ID
		b.InvoiceID = &invoiceID
	}
	s.invoices = append(s.invoices, inv)
	s.invoiceNos[inv.InvoiceNo] = true
	return &inv, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, 0, len(s.invoices))
	for i := len(s.invoices) - 1; i >= 0; i-- {
		out = append(out, s.invoices[i])
	}
	return out, nil
}
