// Package quantity reconciles planned, approved and actual production numbers.
package quantity

import "tintura-sst/internal/models"

func RowTotal(row models.SizeRow) int {
	return row.S + row.M + row.L + row.XL + row.XXL + row.XXXL
}

func OrderTotal(rows []models.SizeRow) int {
	total := 0
	for _, r := range rows {
		total += RowTotal(r)
	}
	return total
}

// Cell is one planned value with the recorded actual, when there is one.
type Cell struct {
	Planned  int  `json:"planned"`
	Actual   *int `json:"actual,omitempty"`
	Mismatch bool `json:"mismatch"`
}

func newCell(planned int, actual *int) Cell {
	c := Cell{Planned: planned}
	if actual != nil {
		v := *actual
		c.Actual = &v
		c.Mismatch = v != planned
	}
	return c
}

// Primary is the value a viewer should see first: actual when recorded.
func (c Cell) Primary() int {
	if c.Actual != nil {
		return *c.Actual
	}
	return c.Planned
}

type RowComparison struct {
	Color       string          `json:"color"`
	Sizes       map[string]Cell `json:"sizes"`
	Total       Cell            `json:"total"`
	HasActual   bool            `json:"has_actual"`
	HasMismatch bool            `json:"has_mismatch"`
}

type Comparison struct {
	Rows        []RowComparison `json:"rows"`
	Total       Cell            `json:"total"`
	HasMismatch bool            `json:"has_mismatch"`
}

// Reconcile lines the completion breakdown up against the planned one by color.
// Actual values appear only for completed orders.
func Reconcile(order models.Order) Comparison {
	actualByColor := map[string]models.SizeRow{}
	if order.Status == models.OrderCompleted {
		for _, r := range order.CompletionBreakdown {
			actualByColor[r.Key()] = r
		}
	}

	out := Comparison{Rows: make([]RowComparison, 0, len(order.SizeBreakdown))}
	plannedSum, actualSum, anyActual := 0, 0, false

	for _, planned := range order.SizeBreakdown {
		rc := RowComparison{Color: planned.Color, Sizes: map[string]Cell{}}
		actualRow, found := actualByColor[planned.Key()]

		var actualFields []models.SizeField
		if found {
			actualFields = actualRow.Fields()
		}
		for i, f := range planned.Fields() {
			var actual *int
			if found {
				actual = &actualFields[i].Value
			}
			cell := newCell(f.Value, actual)
			rc.Sizes[f.Size] = cell
			if cell.Mismatch {
				rc.HasMismatch = true
			}
		}

		var rowActual *int
		if found {
			t := RowTotal(actualRow)
			rowActual = &t
			actualSum += t
			anyActual = true
		}
		rc.Total = newCell(RowTotal(planned), rowActual)
		rc.HasActual = found
		if rc.Total.Mismatch {
			rc.HasMismatch = true
		}
		if rc.HasMismatch {
			out.HasMismatch = true
		}
		plannedSum += rc.Total.Planned
		out.Rows = append(out.Rows, rc)
	}

	if anyActual {
		out.Total = newCell(plannedSum, &actualSum)
	} else {
		out.Total = newCell(plannedSum, nil)
	}
	return out
}

// ApprovalStatus derives a material request status from its quantities.
// explicitRejection marks a deliberate zero-quantity decision.
func ApprovalStatus(requested, approved int, explicitRejection bool) models.MaterialStatus {
	switch {
	case approved >= requested && requested > 0:
		return models.MaterialApproved
	case approved > 0:
		return models.MaterialPartiallyApproved
	case explicitRejection:
		return models.MaterialRejected
	default:
		return models.MaterialPending
	}
}
