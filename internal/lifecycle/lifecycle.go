// Package lifecycle holds the status transition tables for orders and barcodes.
package lifecycle

import "tintura-sst/internal/models"

// Guard names the flow that is allowed to take a transition.
type Guard int

const (
	// Generic transitions may be taken by the plain "advance" action.
	Generic Guard = iota
	// CompletionFlow transitions need completion data (actual breakdown, box count).
	CompletionFlow
	// QCReject is the manual rejection edge out of QC. It needs a note.
	QCReject
	// StockCommit is taken only by the inventory commit engine.
	StockCommit
	// Checkout is taken only by invoice finalization.
	Checkout
)

func (g Guard) String() string {
	switch g {
	case Generic:
		return "generic"
	case CompletionFlow:
		return "completion"
	case QCReject:
		return "qc_reject"
	case StockCommit:
		return "stock_commit"
	case Checkout:
		return "checkout"
	}
	return "unknown"
}

type OrderTransition struct {
	To    models.OrderStatus
	Guard Guard
}

type BarcodeTransition struct {
	To    models.BarcodeStatus
	Guard Guard
}

// The first entry of each slice is the forward transition.
var orderTable = map[models.OrderStatus][]OrderTransition{
	models.OrderAssigned:   {{models.OrderStarted, Generic}},
	models.OrderStarted:    {{models.OrderQC, Generic}},
	models.OrderQC:         {{models.OrderQCApproved, Generic}, {models.OrderStarted, QCReject}},
	models.OrderQCApproved: {{models.OrderCompleted, CompletionFlow}},
	models.OrderPacked:     {{models.OrderCompleted, Generic}},
}

// The commit engine accepts any barcode that has not reached stock yet, so
// every pre-stock status carries a StockCommit edge.
var barcodeTable = map[models.BarcodeStatus][]BarcodeTransition{
	models.BarcodeGenerated:          {{models.BarcodeDetailsFilled, Generic}, {models.BarcodeCommittedToStock, StockCommit}},
	models.BarcodeDetailsFilled:      {{models.BarcodePushedOutOfSubunit, Generic}, {models.BarcodeCommittedToStock, StockCommit}},
	models.BarcodePushedOutOfSubunit: {{models.BarcodeQCApproved, Generic}, {models.BarcodeCommittedToStock, StockCommit}},
	models.BarcodeQCApproved:         {{models.BarcodeCommittedToStock, StockCommit}},
	models.BarcodeCommittedToStock:   {{models.BarcodeSold, Checkout}},
}

// NextOrderStatus returns the forward successor of s. COMPLETED and unknown
// statuses have none.
func NextOrderStatus(s models.OrderStatus) (models.OrderStatus, bool) {
	edges := orderTable[s]
	if len(edges) == 0 {
		return "", false
	}
	return edges[0].To, true
}

// CanAdvance reports whether the plain advance action may move an order out of s.
func CanAdvance(s models.OrderStatus) bool {
	edges := orderTable[s]
	return len(edges) > 0 && edges[0].Guard == Generic
}

// CanTransitionOrder checks from→to against the table for the given flow.
func CanTransitionOrder(from, to models.OrderStatus, guard Guard) bool {
	for _, e := range orderTable[from] {
		if e.To == to && e.Guard == guard {
			return true
		}
	}
	return false
}

// CompletableFrom lists the statuses the completion flow accepts.
func CompletableFrom(s models.OrderStatus) bool {
	for _, e := range orderTable[s] {
		if e.To == models.OrderCompleted {
			return true
		}
	}
	return false
}

func NextBarcodeStatus(s models.BarcodeStatus) (models.BarcodeStatus, bool) {
	edges := barcodeTable[s]
	if len(edges) == 0 {
		return "", false
	}
	return edges[0].To, true
}

func CanAdvanceBarcode(s models.BarcodeStatus) bool {
	edges := barcodeTable[s]
	return len(edges) > 0 && edges[0].Guard == Generic
}

func CanTransitionBarcode(from, to models.BarcodeStatus, guard Guard) bool {
	for _, e := range barcodeTable[from] {
		if e.To == to && e.Guard == guard {
			return true
		}
	}
	return false
}

// BarcodeSources lists, in lifecycle order, the statuses that may move to
// `to` under guard. Stores use it to build their conditional updates.
func BarcodeSources(to models.BarcodeStatus, guard Guard) []models.BarcodeStatus {
	var out []models.BarcodeStatus
	for _, s := range models.BarcodeStatuses {
		if CanTransitionBarcode(s, to, guard) {
			out = append(out, s)
		}
	}
	return out
}
