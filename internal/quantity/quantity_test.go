package quantity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/models"
	"tintura-sst/internal/quantity"
)

func TestRowAndOrderTotal(t *testing.T) {
	rows := []models.SizeRow{
		{Color: "Red", S: 10, M: 20},
		{Color: "Blue", L: 5, XL: 1, XXL: 2, XXXL: 3},
	}
	assert.Equal(t, 30, quantity.RowTotal(rows[0]))
	assert.Equal(t, 11, quantity.RowTotal(rows[1]))
	assert.Equal(t, 41, quantity.OrderTotal(rows))
	assert.Equal(t, 0, quantity.OrderTotal(nil))
}

func TestReconcile_PlannedOnlyUntilCompleted(t *testing.T) {
	order := models.Order{
		Status:              models.OrderQCApproved,
		SizeBreakdown:       []models.SizeRow{{Color: "Red", S: 10, M: 20}},
		CompletionBreakdown: []models.SizeRow{{Color: "Red", S: 9, M: 20}},
	}
	cmp := quantity.Reconcile(order)
	require.Len(t, cmp.Rows, 1)
	assert.Nil(t, cmp.Rows[0].Sizes["s"].Actual)
	assert.False(t, cmp.HasMismatch)
	assert.Equal(t, 30, cmp.Total.Primary())
}

func TestReconcile_FlagsMismatchByColor(t *testing.T) {
	order := models.Order{
		Status: models.OrderCompleted,
		SizeBreakdown: []models.SizeRow{
			{Color: "Red", S: 10, M: 20},
			{Color: "Blue", M: 5},
		},
		// Reversed order and different case: rows are joined by color, not position.
		CompletionBreakdown: []models.SizeRow{
			{Color: "blue ", M: 5},
			{Color: "RED", S: 9, M: 20},
		},
	}
	cmp := quantity.Reconcile(order)
	require.Len(t, cmp.Rows, 2)

	red := cmp.Rows[0]
	assert.Equal(t, "Red", red.Color)
	assert.True(t, red.HasActual)
	assert.True(t, red.Sizes["s"].Mismatch)
	assert.Equal(t, 9, red.Sizes["s"].Primary())
	assert.Equal(t, 10, red.Sizes["s"].Planned)
	assert.False(t, red.Sizes["m"].Mismatch)
	assert.True(t, red.Total.Mismatch)
	assert.Equal(t, 29, red.Total.Primary())

	blue := cmp.Rows[1]
	assert.False(t, blue.HasMismatch)
	assert.Equal(t, 5, blue.Total.Primary())

	assert.True(t, cmp.HasMismatch)
	assert.Equal(t, 35, cmp.Total.Planned)
	assert.Equal(t, 34, cmp.Total.Primary())
}

func TestReconcile_MissingCompletionRow(t *testing.T) {
	order := models.Order{
		Status:              models.OrderCompleted,
		SizeBreakdown:       []models.SizeRow{{Color: "Red", S: 1}, {Color: "Green", S: 2}},
		CompletionBreakdown: []models.SizeRow{{Color: "Red", S: 1}},
	}
	cmp := quantity.Reconcile(order)
	assert.True(t, cmp.Rows[0].HasActual)
	assert.False(t, cmp.Rows[1].HasActual)
	assert.Nil(t, cmp.Rows[1].Total.Actual)
}

func TestApprovalStatus(t *testing.T) {
	assert.Equal(t, models.MaterialApproved, quantity.ApprovalStatus(100, 100, false))
	assert.Equal(t, models.MaterialPartiallyApproved, quantity.ApprovalStatus(100, 40, false))
	assert.Equal(t, models.MaterialRejected, quantity.ApprovalStatus(100, 0, true))
	assert.Equal(t, models.MaterialPending, quantity.ApprovalStatus(100, 0, false))
}

func sampleUnits() []models.Unit {
	return []models.Unit{
		{ID: 1, Name: "Main Factory", IsMain: true},
		{ID: 2, Name: "Sub Unit A"},
		{ID: 3, Name: "Sub Unit B"},
	}
}

func sampleOrders() []models.Order {
	return []models.Order{
		{OrderNo: "ORD-1", UnitID: 2, Quantity: 150, Status: models.OrderCompleted, TargetDeliveryDate: "2023-11-20"},
		{OrderNo: "ORD-2", UnitID: 2, Quantity: 100, Status: models.OrderStarted, TargetDeliveryDate: "2024-01-15"},
		{OrderNo: "ORD-3", UnitID: 3, Quantity: 80, Status: models.OrderQC, TargetDeliveryDate: "2023-12-05"},
	}
}

func TestFilterOrders_UnitAndRange(t *testing.T) {
	unit := int64(2)
	got := quantity.FilterOrders(sampleOrders(), quantity.ReportFilter{UnitID: &unit, Start: "2023-11-01", End: "2023-12-31"})
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-1", got[0].OrderNo)

	stats := quantity.Summarize(got, sampleUnits())
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 100.0, stats.CompletionRate)
}

func TestFilterOrders_CreatedAtWinsOverDeliveryDate(t *testing.T) {
	o := models.Order{
		UnitID:             1,
		CreatedAt:          time.Date(2023, 10, 31, 12, 0, 0, 0, time.UTC),
		TargetDeliveryDate: "2023-11-15",
	}
	f := quantity.ReportFilter{Start: "2023-11-01", End: "2023-11-30"}
	assert.False(t, f.Match(o))

	f = quantity.ReportFilter{Start: "2023-10-31", End: "2023-10-31"}
	assert.True(t, f.Match(o))

	// Without a creation date the target delivery date is used.
	o.CreatedAt = time.Time{}
	assert.Equal(t, "2023-11-15", quantity.OrderDate(o))
	f = quantity.ReportFilter{Start: "2023-11-01", End: "2023-11-30"}
	assert.True(t, f.Match(o))
}

func TestSummarize(t *testing.T) {
	stats := quantity.Summarize(sampleOrders(), sampleUnits())

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 33.3, stats.CompletionRate)
	assert.Equal(t, map[models.OrderStatus]int{
		models.OrderCompleted: 1,
		models.OrderStarted:   1,
		models.OrderQC:        1,
	}, stats.StatusDistribution)

	require.Len(t, stats.UnitPerformance, 3)
	assert.Equal(t, int64(2), stats.UnitPerformance[0].UnitID)
	assert.Equal(t, 250, stats.UnitPerformance[0].TotalQty)
	assert.Equal(t, 150, stats.UnitPerformance[0].CompletedQty)
	assert.Equal(t, int64(3), stats.UnitPerformance[1].UnitID)
	assert.Equal(t, 80, stats.UnitPerformance[1].TotalQty)
	assert.Equal(t, int64(1), stats.UnitPerformance[2].UnitID)
	assert.Equal(t, 0, stats.UnitPerformance[2].TotalQty)
}

func TestCompletionRate_Empty(t *testing.T) {
	assert.Equal(t, 0.0, quantity.CompletionRate(0, 0))
	stats := quantity.Summarize(nil, sampleUnits())
	assert.Equal(t, 0.0, stats.CompletionRate)
	assert.Empty(t, stats.StatusDistribution)
}
