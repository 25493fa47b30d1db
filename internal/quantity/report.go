package quantity

import (
	"math"
	"sort"

	"tintura-sst/internal/models"
)

const isoDate = "2006-01-02"

// ReportFilter selects orders for a report. Zero values mean "no bound".
// Start and End are ISO dates (YYYY-MM-DD) and both ends are inclusive.
type ReportFilter struct {
	UnitID *int64
	Start  string
	End    string
}

// OrderDate is the date used for range filtering: creation date, or the
// target delivery date when the creation date is unknown.
func OrderDate(o models.Order) string {
	if !o.CreatedAt.IsZero() {
		return o.CreatedAt.Format(isoDate)
	}
	return o.TargetDeliveryDate
}

func (f ReportFilter) Match(o models.Order) bool {
	if f.UnitID != nil && o.UnitID != *f.UnitID {
		return false
	}
	if f.Start == "" && f.End == "" {
		return true
	}
	d := OrderDate(o)
	if d == "" {
		return false
	}
	if f.Start != "" && d < f.Start {
		return false
	}
	if f.End != "" && d > f.End {
		return false
	}
	return true
}

func FilterOrders(orders []models.Order, f ReportFilter) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

type UnitPerformance struct {
	UnitID       int64  `json:"unit_id"`
	UnitName     string `json:"unit_name"`
	TotalQty     int    `json:"total_qty"`
	CompletedQty int    `json:"completed_qty"`
}

type ReportStats struct {
	TotalOrders        int                        `json:"total_orders"`
	CompletedOrders    int                        `json:"completed_orders"`
	CompletionRate     float64                    `json:"completion_rate"`
	StatusDistribution map[models.OrderStatus]int `json:"status_distribution"`
	UnitPerformance    []UnitPerformance          `json:"unit_performance"`
}

// Summarize computes report statistics over an already filtered order set.
func Summarize(orders []models.Order, units []models.Unit) ReportStats {
	stats := ReportStats{
		TotalOrders:        len(orders),
		StatusDistribution: map[models.OrderStatus]int{},
		UnitPerformance:    make([]UnitPerformance, 0, len(units)),
	}

	byUnit := make(map[int64]*UnitPerformance, len(units))
	for _, u := range units {
		stats.UnitPerformance = append(stats.UnitPerformance, UnitPerformance{UnitID: u.ID, UnitName: u.Name})
	}
	for i := range stats.UnitPerformance {
		byUnit[stats.UnitPerformance[i].UnitID] = &stats.UnitPerformance[i]
	}

	for _, o := range orders {
		stats.StatusDistribution[o.Status]++
		completed := o.Status == models.OrderCompleted
		if completed {
			stats.CompletedOrders++
		}
		if p, ok := byUnit[o.UnitID]; ok {
			p.TotalQty += o.Quantity
			if completed {
				p.CompletedQty += o.Quantity
			}
		}
	}

	stats.CompletionRate = CompletionRate(stats.CompletedOrders, stats.TotalOrders)

	sort.SliceStable(stats.UnitPerformance, func(i, j int) bool {
		a, b := stats.UnitPerformance[i], stats.UnitPerformance[j]
		if a.TotalQty != b.TotalQty {
			return a.TotalQty > b.TotalQty
		}
		return a.UnitID < b.UnitID
	})
	return stats
}

// CompletionRate is completed/total as a percentage rounded to one decimal.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}
