package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"tintura-sst/internal/models"
	"tintura-sst/internal/quantity"
	"tintura-sst/internal/store"
)

type ReportService struct {
	store store.Store
}

func NewReportService(st store.Store) *ReportService {
	return &ReportService{store: st}
}

type Report struct {
	Filter quantity.ReportFilter `json:"-"`
	quantity.ReportStats
	Orders []models.Order `json:"orders"`
}

func validDate(v string) bool {
	if v == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

func (s *ReportService) Build(ctx context.Context, f quantity.ReportFilter) (*Report, error) {
	if !validDate(f.Start) || !validDate(f.End) {
		return nil, invalid("start and end must be YYYY-MM-DD")
	}
	if f.Start != "" && f.End != "" && f.Start > f.End {
		return nil, invalid("start must not be after end")
	}
	orders, err := s.store.ListOrders(ctx, store.OrderFilter{UnitID: f.UnitID})
	if err != nil {
		return nil, err
	}
	units, err := s.store.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	filtered := quantity.FilterOrders(orders, f)
	return &Report{
		Filter:      f,
		ReportStats: quantity.Summarize(filtered, units),
		Orders:      filtered,
	}, nil
}

// WriteXLSX renders the report as a workbook with a summary, a per-unit and
// a per-order sheet.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	summary := [][]any{
		{"Total orders", r.TotalOrders},
		{"Completed orders", r.CompletedOrders},
		{"Completion rate (%)", r.CompletionRate},
		{"Start", r.Filter.Start},
		{"End", r.Filter.End},
	}
	for _, st := range models.OrderStatuses {
		summary = append(summary, []any{"Status " + string(st), r.StatusDistribution[st]})
	}
	if err := writeSheet(f, "Summary", headerStyle, []string{"Metric", "Value"}, summary); err != nil {
		return err
	}

	unitRows := make([][]any, 0, len(r.UnitPerformance))
	for _, u := range r.UnitPerformance {
		unitRows = append(unitRows, []any{u.UnitID, u.UnitName, u.TotalQty, u.CompletedQty})
	}
	if err := writeSheet(f, "Units", headerStyle, []string{"Unit ID", "Unit", "Total Qty", "Completed Qty"}, unitRows); err != nil {
		return err
	}

	orderRows := make([][]any, 0, len(r.Orders))
	for _, o := range r.Orders {
		// Completed orders report what was made, the rest what was planned.
		actual := quantity.Reconcile(o).Total.Primary()
		orderRows = append(orderRows, []any{o.OrderNo, o.UnitID, o.StyleNumber, o.Quantity, actual, string(o.Status), quantity.OrderDate(o), o.TargetDeliveryDate})
	}
	if err := writeSheet(f, "Orders", headerStyle, []string{"Order No", "Unit ID", "Style", "Quantity", "Actual Qty", "Status", "Date", "Target Delivery"}, orderRows); err != nil {
		return err
	}

	if idx, err := f.GetSheetIndex("Summary"); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, headerStyle int, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
		}
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(name, "A", last, 18)
}
