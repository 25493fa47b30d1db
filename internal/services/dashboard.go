package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"tintura-sst/internal/models"
	"tintura-sst/internal/store"
)

type DashboardService struct {
	store store.Store
}

func NewDashboardService(st store.Store) *DashboardService {
	return &DashboardService{store: st}
}

type Dashboard struct {
	Orders           []models.Order           `json:"orders"`
	Units            []models.Unit            `json:"units"`
	StockCount       int                      `json:"stock_count"`
	PendingMaterials []models.MaterialRequest `json:"pending_materials"`
}

// Load reads the four dashboard sources concurrently. The first failure
// fails the whole load.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		orders, err := s.store.ListOrders(ctx, store.OrderFilter{})
		if err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}
		d.Orders = orders
		return nil
	})
	g.Go(func() error {
		units, err := s.store.ListUnits(ctx)
		if err != nil {
			return fmt.Errorf("failed to load units: %w", err)
		}
		d.Units = units
		return nil
	})
	g.Go(func() error {
		stock, err := s.store.ListBarcodes(ctx, store.BarcodeFilter{Statuses: []models.BarcodeStatus{models.BarcodeCommittedToStock}})
		if err != nil {
			return fmt.Errorf("failed to load stock: %w", err)
		}
		d.StockCount = len(stock)
		return nil
	})
	g.Go(func() error {
		pending, err := s.store.ListMaterialRequests(ctx, store.MaterialFilter{
			Statuses: []models.MaterialStatus{models.MaterialPending, models.MaterialPartiallyApproved},
		})
		if err != nil {
			return fmt.Errorf("failed to load material requests: %w", err)
		}
		d.PendingMaterials = pending
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
