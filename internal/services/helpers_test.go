package services_test

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/lock"
	"tintura-sst/internal/services"
	"tintura-sst/internal/store/memory"
)

var (
	ord1 = uuid.MustParse("5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9e0001")
	ord2 = uuid.MustParse("5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9e0002")
	ord3 = uuid.MustParse("5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9e0003")
)

type fixture struct {
	store     *memory.Store
	orders    *services.OrderService
	barcodes  *services.BarcodeService
	inventory *services.InventoryService
	materials *services.MaterialService
	checkout  *services.CheckoutService
	reports   *services.ReportService
	dashboard *services.DashboardService
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := memory.NewSeeded()
	require.NoError(t, err)
	locker := lock.NewLocalLocker()
	logger := quietLogger()
	return &fixture{
		store:     st,
		orders:    services.NewOrderService(st, locker, logger),
		barcodes:  services.NewBarcodeService(st, locker, logger, 500),
		inventory: services.NewInventoryService(st, logger, time.Hour),
		materials: services.NewMaterialService(st, locker, logger),
		checkout:  services.NewCheckoutService(st, logger, decimal.NewFromInt(500)),
		reports:   services.NewReportService(st),
		dashboard: services.NewDashboardService(st),
	}
}
