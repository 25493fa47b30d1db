package supabase_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/database"
	"tintura-sst/internal/models"
	"tintura-sst/internal/store"
	"tintura-sst/internal/supabase"
)

func newDatabaseClient(t *testing.T) *supabase.DatabaseClient {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := database.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, database.NewMigrator(db, logger).Run(ctx))
	return supabase.NewDatabaseClient(db)
}

func TestDatabaseClient_OrderToInvoice(t *testing.T) {
	db := newDatabaseClient(t)
	ctx := context.Background()

	order, err := db.CreateOrder(ctx, models.Order{
		UnitID:        2,
		StyleNumber:   "ST-" + uuid.NewString()[:8],
		Quantity:      2,
		BoxCount:      1,
		SizeBreakdown: []models.SizeRow{{Color: "Navy", M: 2}},
		Status:        models.OrderAssigned,
	}, models.OrderLog{Kind: models.LogStatusChange, Message: "Order created"})
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-\d+$`, order.OrderNo)

	_, err = db.TransitionOrder(ctx, store.OrderTransition{
		OrderID: order.ID, From: models.OrderStarted, To: models.OrderQC,
		Log: models.OrderLog{Kind: models.LogStatusChange, Message: "wrong"},
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	started, err := db.TransitionOrder(ctx, store.OrderTransition{
		OrderID: order.ID, From: models.OrderAssigned, To: models.OrderStarted,
		Log: models.OrderLog{Kind: models.LogStatusChange, Message: "Status changed to STARTED"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStarted, started.Status)

	logs, err := db.ListOrderLogs(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	build := func(orderNo string, seq int) models.Barcode {
		return models.Barcode{
			BarcodeSerial: fmt.Sprintf("%s-%s-M-%05d", orderNo, order.StyleNumber, seq),
			StyleNumber:   order.StyleNumber,
			Size:          "M",
			Status:        models.BarcodeGenerated,
		}
	}
	barcodes, err := db.AllocateBarcodes(ctx, order.ID, 2, build)
	require.NoError(t, err)
	require.Len(t, barcodes, 2)
	assert.Contains(t, barcodes[1].BarcodeSerial, "-00002")

	ids := []uuid.UUID{barcodes[0].ID, barcodes[1].ID}
	commit, moved, err := db.CommitToStock(ctx, ids)
	require.NoError(t, err)
	require.NotNil(t, commit)
	assert.Equal(t, 2, commit.TotalItems)
	assert.Len(t, moved, 2)

	again, _, err := db.CommitToStock(ctx, ids)
	require.NoError(t, err)
	assert.Nil(t, again)

	inv, err := db.CreateInvoice(ctx, models.Invoice{
		InvoiceNo:    "INV-TEST-" + uuid.NewString()[:8],
		CustomerName: "Walk-in",
		TotalAmount:  decimal.NewFromInt(1000),
		BarcodeIDs:   ids,
	})
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000)))

	_, err = db.CreateInvoice(ctx, models.Invoice{
		InvoiceNo:  "INV-TEST-" + uuid.NewString()[:8],
		BarcodeIDs: ids,
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}
