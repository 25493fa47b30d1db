// Package receipt builds the structured payloads handed to the printing
// collaborator. No markup is produced here.
package receipt

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"tintura-sst/internal/models"
)

type Line struct {
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

type Receipt struct {
	Title     string           `json:"title"`
	Reference string           `json:"reference"`
	Timestamp time.Time        `json:"timestamp"`
	Lines     []Line           `json:"lines"`
	Total     int              `json:"total"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

func total(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// BarcodeBatch lists a freshly generated batch grouped by style and size.
func BarcodeBatch(order models.Order, barcodes []models.Barcode, at time.Time) Receipt {
	type key struct{ style, size string }
	counts := map[key]int{}
	var keys []key
	for _, b := range barcodes {
		k := key{b.StyleNumber, b.Size}
		if counts[k] == 0 {
			keys = append(keys, k)
		}
		counts[k]++
	}
	lines := make([]Line, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, Line{Description: fmt.Sprintf("Style %s / Size %s", k.style, k.size), Quantity: counts[k]})
	}
	if len(barcodes) > 0 {
		lines = append(lines, Line{
			Description: fmt.Sprintf("Serials %s to %s", barcodes[0].BarcodeSerial, barcodes[len(barcodes)-1].BarcodeSerial),
		})
	}
	return Receipt{
		Title:     "Barcode Batch",
		Reference: order.OrderNo,
		Timestamp: at,
		Lines:     lines,
		Total:     len(barcodes),
	}
}

// StockCommit summarizes a commit by style and size of the committed barcodes.
func StockCommit(commit models.StockCommit, committed []models.Barcode) Receipt {
	counts := map[string]int{}
	for _, b := range committed {
		counts[fmt.Sprintf("Style %s / Size %s", b.StyleNumber, b.Size)]++
	}
	descs := make([]string, 0, len(counts))
	for d := range counts {
		descs = append(descs, d)
	}
	sort.Strings(descs)
	lines := make([]Line, 0, len(descs))
	for _, d := range descs {
		lines = append(lines, Line{Description: d, Quantity: counts[d]})
	}
	return Receipt{
		Title:     "Stock Commit",
		Reference: commit.ID.String(),
		Timestamp: commit.CreatedAt,
		Lines:     lines,
		Total:     commit.TotalItems,
	}
}

// MaterialApproval records the quantity approved in one action, not the
// running total.
func MaterialApproval(req models.MaterialRequest, order *models.Order, delta int, at time.Time) Receipt {
	ref := req.ID.String()
	if order != nil {
		ref = order.OrderNo
	}
	lines := []Line{{Description: req.MaterialContent, Quantity: delta}}
	return Receipt{
		Title:     "Material Approval",
		Reference: ref,
		Timestamp: at,
		Lines:     lines,
		Total:     total(lines),
	}
}

func Invoice(inv models.Invoice, sold []models.Barcode, unitPrice decimal.Decimal) Receipt {
	counts := map[string]int{}
	for _, b := range sold {
		counts[fmt.Sprintf("Style %s / Size %s", b.StyleNumber, b.Size)]++
	}
	descs := make([]string, 0, len(counts))
	for d := range counts {
		descs = append(descs, d)
	}
	sort.Strings(descs)
	lines := make([]Line, 0, len(descs))
	for _, d := range descs {
		amount := unitPrice.Mul(decimal.NewFromInt(int64(counts[d])))
		lines = append(lines, Line{Description: d, Quantity: counts[d], Amount: &amount})
	}
	amount := inv.TotalAmount
	return Receipt{
		Title:     "Invoice " + inv.InvoiceNo + " / " + inv.CustomerName,
		Reference: inv.InvoiceNo,
		Timestamp: inv.CreatedAt,
		Lines:     lines,
		Total:     len(inv.BarcodeIDs),
		Amount:    &amount,
	}
}
