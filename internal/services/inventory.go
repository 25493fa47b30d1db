package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tintura-sst/internal/barcode"
	"tintura-sst/internal/config"
	"tintura-sst/internal/inventory"
	"tintura-sst/internal/models"
	"tintura-sst/internal/receipt"
	"tintura-sst/internal/store"
)

// ErrSessionNotFound is returned for unknown or expired staging sessions.
var ErrSessionNotFound = fmt.Errorf("staging session: %w", store.ErrNotFound)

type session struct {
	mu      sync.Mutex
	id      uuid.UUID
	staging inventory.Staging
	created time.Time
	// lastSeen is UnixNano. It is read without mu so that expiry never
	// waits on a scan or commit in progress.
	lastSeen atomic.Int64
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *session) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// SessionView is a snapshot of a staging list.
type SessionView struct {
	ID        uuid.UUID        `json:"session_id"`
	Items     []inventory.Item `json:"items"`
	Ready     int              `json:"ready"`
	CreatedAt time.Time        `json:"created_at"`
}

func (s *session) view() SessionView {
	items := s.staging.Items()
	ready, _, _ := s.staging.Partition()
	return SessionView{ID: s.id, Items: items, Ready: len(ready), CreatedAt: s.created}
}

type CommitReport struct {
	Commit  *models.StockCommit `json:"commit,omitempty"`
	Success []inventory.Item    `json:"success"`
	Skipped []inventory.Item    `json:"skipped"`
	Errors  []inventory.Item    `json:"errors"`
	Receipt *receipt.Receipt    `json:"receipt,omitempty"`
}

type InventoryService struct {
	store  store.Store
	logger *logrus.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func NewInventoryService(st store.Store, logger *logrus.Logger, ttl time.Duration) *InventoryService {
	return &InventoryService{
		store:    st,
		logger:   logger,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: map[uuid.UUID]*session{},
	}
}

// Open starts an empty staging session.
func (s *InventoryService) Open() SessionView {
	now := s.now()
	sess := &session{id: uuid.New(), created: now}
	sess.touch(now)

	s.mu.Lock()
	s.expireLocked(now)
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess.view()
}

func (s *InventoryService) expireLocked(now time.Time) {
	for id, sess := range s.sessions {
		if sess.idle(now) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// lookup returns the session locked. Callers must unlock it.
func (s *InventoryService) lookup(id uuid.UUID) (*session, error) {
	now := s.now()
	s.mu.Lock()
	s.expireLocked(now)
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(now)
	sess.mu.Lock()
	return sess, nil
}

func (s *InventoryService) Get(id uuid.UUID) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Discard drops a session without committing anything.
func (s *InventoryService) Discard(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Scan classifies one scanned serial and prepends it to the session list.
// A serial already in the list is recorded as a duplicate without a lookup,
// and input that does not parse as a serial is recorded as an error without one.
func (s *InventoryService) Scan(ctx context.Context, id uuid.UUID, raw string) (inventory.Item, error) {
	serial := inventory.NormalizeSerial(raw)
	if serial == "" {
		return inventory.Item{}, invalid("barcode_serial is required")
	}
	sess, err := s.lookup(id)
	if err != nil {
		return inventory.Item{}, err
	}
	defer sess.mu.Unlock()

	if sess.staging.Contains(serial) {
		return sess.staging.Add(inventory.Duplicate(serial, s.now())), nil
	}
	if _, err := barcode.ParseSerial(serial); err != nil {
		s.logger.WithField("serial", serial).Debug("malformed scan")
		return sess.staging.Add(inventory.Malformed(serial, s.now())), nil
	}

	found, err := s.store.ListBarcodes(ctx, store.BarcodeFilter{Serials: []string{serial}})
	if err != nil {
		return inventory.Item{}, fmt.Errorf("failed to look up barcode: %w", err)
	}
	var match *models.Barcode
	if len(found) > 0 {
		match = &found[0]
	}
	return sess.staging.Add(inventory.Classify(serial, match, s.now())), nil
}

// Remove drops one staged row by its item ID.
func (s *InventoryService) Remove(id, itemID uuid.UUID) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	defer sess.mu.Unlock()
	if _, ok := sess.staging.Remove(itemID); !ok {
		return SessionView{}, fmt.Errorf("item %s is not staged: %w", itemID, store.ErrNotFound)
	}
	return sess.view(), nil
}

// Commit moves every READY item into stock as one batch. The list is cleared
// whether or not anything was committed.
func (s *InventoryService) Commit(ctx context.Context, id uuid.UUID) (*CommitReport, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	ready, skipped, errs := sess.staging.Partition()
	report := &CommitReport{
		Success: []inventory.Item{},
		Skipped: skipped,
		Errors:  errs,
	}
	if report.Skipped == nil {
		report.Skipped = []inventory.Item{}
	}
	if report.Errors == nil {
		report.Errors = []inventory.Item{}
	}
	if len(ready) == 0 {
		sess.staging.Clear()
		return report, nil
	}

	ids := make([]uuid.UUID, 0, len(ready))
	for _, it := range ready {
		ids = append(ids, it.Barcode.ID)
	}
	commit, moved, err := s.store.CommitToStock(ctx, ids)
	if err != nil {
		config.LogError(s.logger, "inventory", "Commit", "stock commit failed", logrus.Fields{"items": len(ids)}, err)
		return nil, fmt.Errorf("failed to commit stock: %w", err)
	}
	sess.staging.Clear()

	movedSet := make(map[uuid.UUID]bool, len(moved))
	for _, m := range moved {
		movedSet[m] = true
	}
	var committed []models.Barcode
	for _, it := range ready {
		if movedSet[it.Barcode.ID] {
			b := *it.Barcode
			b.Status = models.BarcodeCommittedToStock
			it.Barcode = &b
			report.Success = append(report.Success, it)
			committed = append(committed, b)
			continue
		}
		it.Disposition, it.Message = inventory.Exists, inventory.MsgExists
		report.Skipped = append(report.Skipped, it)
	}

	if commit != nil {
		report.Commit = commit
		r := receipt.StockCommit(*commit, committed)
		report.Receipt = &r
		s.logger.WithFields(logrus.Fields{
			"commit_id":   commit.ID,
			"total_items": commit.TotalItems,
			"skipped":     len(report.Skipped),
		}).Info("stock committed")
	}
	return report, nil
}

func (s *InventoryService) History(ctx context.Context) ([]models.StockCommit, error) {
	return s.store.ListStockCommits(ctx)
}
