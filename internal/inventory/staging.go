// Package inventory holds the scan staging list used before committing
// barcodes to stock.
package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"tintura-sst/internal/lifecycle"
	"tintura-sst/internal/models"
)

type Disposition string

const (
	Ready         Disposition = "READY"
	DuplicateScan Disposition = "DUPLICATE_SCAN"
	Exists        Disposition = "EXISTS"
	Error         Disposition = "ERROR"
)

const (
	MsgReady     = "Ready to add"
	MsgDuplicate = "Already in list below"
	MsgExists    = "Already in inventory/Sold"
	MsgNotFound  = "Barcode not found in system"
	MsgMalformed = "Not a valid barcode serial"
)

// Item is one scanned row. ID tells apart repeated scans of the same serial.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	Serial      string          `json:"barcode_serial"`
	Disposition Disposition     `json:"disposition"`
	Message     string          `json:"message"`
	Barcode     *models.Barcode `json:"barcode,omitempty"`
	ScannedAt   time.Time       `json:"scanned_at"`
}

// NormalizeSerial trims scanner noise so that the same label always
// compares equal.
func NormalizeSerial(raw string) string {
	return strings.TrimSpace(raw)
}

// Classify decides the disposition of a scan that is not already staged.
// found is nil when the serial is unknown to storage.
func Classify(serial string, found *models.Barcode, now time.Time) Item {
	item := Item{Serial: serial, ScannedAt: now}
	switch {
	case found == nil:
		item.Disposition, item.Message = Error, MsgNotFound
	case lifecycle.CanTransitionBarcode(found.Status, models.BarcodeCommittedToStock, lifecycle.StockCommit):
		item.Disposition, item.Message = Ready, MsgReady
		item.Barcode = found
	default:
		item.Disposition, item.Message = Exists, MsgExists
		item.Barcode = found
	}
	return item
}

// Malformed builds the item recorded for input that is not a serial at all.
func Malformed(serial string, now time.Time) Item {
	return Item{Serial: serial, Disposition: Error, Message: MsgMalformed, ScannedAt: now}
}

// Staging is one operator's list of scanned serials, newest first.
// It is not safe for concurrent use; callers serialize access.
type Staging struct {
	items []Item
}

func (s *Staging) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Staging) Len() int { return len(s.items) }

func (s *Staging) Contains(serial string) bool {
	for _, it := range s.items {
		if it.Serial == serial {
			return true
		}
	}
	return false
}

// Duplicate builds the item recorded when serial is already staged.
func Duplicate(serial string, now time.Time) Item {
	return Item{Serial: serial, Disposition: DuplicateScan, Message: MsgDuplicate, ScannedAt: now}
}

// Add prepends an item, giving it an ID when it has none, and returns it.
func (s *Staging) Add(item Item) Item {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items = append([]Item{item}, s.items...)
	return item
}

// Remove drops the single row with the given ID. Other scans of the same
// serial stay staged.
func (s *Staging) Remove(id uuid.UUID) (Item, bool) {
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return it, true
		}
	}
	return Item{}, false
}

func (s *Staging) Clear() {
	s.items = nil
}

// Partition splits the list for a commit. A serial is only ever in ready once.
func (s *Staging) Partition() (ready, skipped, errs []Item) {
	seen := map[string]bool{}
	for _, it := range s.items {
		switch it.Disposition {
		case Ready:
			if seen[it.Serial] {
				skipped = append(skipped, it)
				continue
			}
			seen[it.Serial] = true
			ready = append(ready, it)
		case Exists, DuplicateScan:
			skipped = append(skipped, it)
		default:
			errs = append(errs, it)
		}
	}
	return ready, skipped, errs
}
