package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/config"
	"tintura-sst/internal/handlers"
	"tintura-sst/internal/inventory"
	"tintura-sst/internal/lock"
	"tintura-sst/internal/models"
	"tintura-sst/internal/services"
	"tintura-sst/internal/store"
	"tintura-sst/internal/store/memory"
)

const (
	ord1 = "5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9e0001"
	ord2 = "5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9e0002"
	ord3 = "5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9e0003"
)

type fakeUploader struct {
	folder, name string
	size         int
	err          error
}

func (f *fakeUploader) Upload(_ context.Context, folder, filename, _ string, data []byte) (string, error) {
	f.folder, f.name, f.size = folder, filename, len(data)
	if f.err != nil {
		return "", f.err
	}
	return "https://files.example/" + folder + "/" + filename, nil
}

func newRouter(t *testing.T, st store.Store, uploader handlers.Uploader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	locker := lock.NewLocalLocker()

	orders := services.NewOrderService(st, locker, logger)
	barcodes := services.NewBarcodeService(st, locker, logger, 50)
	inventory := services.NewInventoryService(st, logger, time.Hour)
	materials := services.NewMaterialService(st, locker, logger)
	checkout := services.NewCheckoutService(st, logger, decimal.NewFromInt(500))

	return handlers.NewRouter(&config.Config{}, handlers.Handlers{
		Health:      handlers.NewHealthHandler(st, config.StoreMemory, ""),
		Orders:      handlers.NewOrdersHandler(orders),
		Barcodes:    handlers.NewBarcodesHandler(barcodes),
		Inventory:   handlers.NewInventoryHandler(inventory, checkout),
		Materials:   handlers.NewMaterialsHandler(materials),
		Checkout:    handlers.NewCheckoutHandler(checkout),
		Reports:     handlers.NewReportsHandler(services.NewReportService(st), services.NewDashboardService(st), st),
		Attachments: handlers.NewAttachmentsHandler(uploader),
	})
}

func seededRouter(t *testing.T) *gin.Engine {
	st, err := memory.NewSeeded()
	require.NoError(t, err)
	return newRouter(t, st, nil)
}

func do(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	w := do(seededRouter(t), "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	health := decode[models.HealthResponse](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "memory", health.StoreDriver)
	assert.False(t, health.Degraded)
}

func TestOrders_CreateAndGet(t *testing.T) {
	router := seededRouter(t)
	w := do(router, "POST", "/api/v1/orders", models.CreateOrderRequest{
		UnitID:        2,
		StyleNumber:   "ST-2001",
		BoxCount:      2,
		SizeBreakdown: []models.SizeRow{{Color: "Olive", S: 10, M: 20}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Order](t, w)
	assert.Equal(t, "ORD-4", created.OrderNo)
	assert.Equal(t, 30, created.Quantity)
	assert.Equal(t, models.OrderAssigned, created.Status)

	w = do(router, "GET", "/api/v1/orders/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reconciliation"`)

	w = do(router, "GET", "/api/v1/orders/"+created.ID.String()+"/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.OrderLog](t, w), 1)

	w = do(router, "GET", "/api/v1/orders?unit_id=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Order](t, w), 3)
}

func TestOrders_Errors(t *testing.T) {
	router := seededRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(router, "GET", "/api/v1/orders/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(router, "GET", "/api/v1/orders/5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9effff", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, "GET", "/api/v1/orders?unit_id=two", nil).Code)

	// Missing size breakdown fails binding.
	w := do(router, "POST", "/api/v1/orders", map[string]any{"unit_id": 2, "style_number": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// ORD-1 is COMPLETED.
	w = do(router, "POST", "/api/v1/orders/"+ord1+"/advance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[models.ErrorResponse](t, w).Message, "ORD-1")
}

func TestOrders_QCRejectAndComplete(t *testing.T) {
	router := seededRouter(t)

	w := do(router, "POST", "/api/v1/orders/"+ord3+"/reject", models.RejectOrderRequest{Note: "loose stitching"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rejected := decode[models.Order](t, w)
	assert.Equal(t, models.OrderStarted, rejected.Status)
	assert.Equal(t, "loose stitching", rejected.QCNotes)

	for _, want := range []models.OrderStatus{models.OrderQC, models.OrderQCApproved} {
		w = do(router, "POST", "/api/v1/orders/"+ord3+"/advance", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, want, decode[models.Order](t, w).Status)
	}

	// Without actual_box_count the order must not complete with zero boxes.
	w = do(router, "POST", "/api/v1/orders/"+ord3+"/complete", map[string]any{
		"completion_breakdown": []models.SizeRow{{Color: "white", S: 20, M: 20, L: 19, XL: 20}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(router, "GET", "/api/v1/orders/"+ord3, nil)
	assert.Equal(t, models.OrderQCApproved, decode[models.Order](t, w).Status)

	w = do(router, "POST", "/api/v1/orders/"+ord3+"/complete", models.CompleteOrderRequest{
		CompletionBreakdown: []models.SizeRow{{Color: "white", S: 20, M: 20, L: 19, XL: 20}},
		ActualBoxCount:      ptr(3),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.OrderCompleted, decode[models.Order](t, w).Status)

	w = do(router, "GET", "/api/v1/orders/"+ord3+"/logs", nil)
	assert.Len(t, decode[[]models.OrderLog](t, w), 4)
}

func TestOrders_UpdateAndNote(t *testing.T) {
	router := seededRouter(t)
	desc := "Brushed fleece hoodies"
	w := do(router, "PATCH", "/api/v1/orders/"+ord2, models.UpdateOrderRequest{Description: &desc})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, desc, decode[models.Order](t, w).Description)

	assert.Equal(t, http.StatusBadRequest, do(router, "PATCH", "/api/v1/orders/"+ord2, map[string]any{}).Code)

	req, _ := http.NewRequest("POST", "/api/v1/orders/"+ord2+"/logs", bytes.NewBufferString(`{"message":"fabric delayed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Role", "sub_unit")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	entry := decode[models.OrderLog](t, rec)
	assert.Equal(t, models.LogManualUpdate, entry.Kind)
	assert.Equal(t, "sub_unit", entry.Actor)
}

func TestBarcodes_GenerateListAdvance(t *testing.T) {
	router := seededRouter(t)

	w := do(router, "POST", "/api/v1/orders/"+ord1+"/barcodes", models.GenerateBarcodesRequest{Count: 2, Size: "xl"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	batch := decode[services.GeneratedBatch](t, w)
	require.Len(t, batch.Barcodes, 2)
	assert.Equal(t, "ORD-1;ST-1001;XL;00005", batch.Barcodes[0].BarcodeSerial)
	assert.Equal(t, 2, batch.Receipt.Total)

	w = do(router, "POST", "/api/v1/orders/"+ord1+"/barcodes", models.GenerateBarcodesRequest{Count: 51, Size: "M"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "GET", "/api/v1/orders/"+ord1+"/barcodes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Barcode](t, w), 6)

	w = do(router, "GET", "/api/v1/barcodes?status=generated", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Barcode](t, w), 3)

	assert.Equal(t, http.StatusBadRequest, do(router, "GET", "/api/v1/barcodes?status=LOST", nil).Code)

	w = do(router, "POST", "/api/v1/barcodes/"+batch.Barcodes[0].ID.String()+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BarcodeDetailsFilled, decode[models.Barcode](t, w).Status)
}

func TestInventoryAndCheckoutFlow(t *testing.T) {
	router := seededRouter(t)

	w := do(router, "POST", "/api/v1/inventory/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	session := decode[services.SessionView](t, w)
	base := "/api/v1/inventory/sessions/" + session.ID.String()

	for _, serial := range []string{" ORD-1;ST-1001;L;00003 ", "ORD-1;ST-1001;M;00001", "ORD-1;ST-1001;L;00004", "NOPE"} {
		w = do(router, "POST", base+"/scan", models.ScanRequest{BarcodeSerial: serial})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = do(router, "POST", base+"/scan", models.ScanRequest{BarcodeSerial: "ORD-1;ST-1001;L;00003"})
	require.Equal(t, http.StatusOK, w.Code)
	dup := decode[inventory.Item](t, w)
	assert.Equal(t, inventory.DuplicateScan, dup.Disposition)

	w = do(router, "GET", base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[services.SessionView](t, w)
	assert.Len(t, view.Items, 5)
	assert.Equal(t, 2, view.Ready)
	assert.Equal(t, inventory.MsgMalformed, view.Items[1].Message)

	// Dropping the duplicate row leaves the first scan of that serial staged.
	w = do(router, "DELETE", base+"/items/"+dup.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[services.SessionView](t, w)
	assert.Len(t, view.Items, 4)
	assert.Equal(t, 2, view.Ready)

	assert.Equal(t, http.StatusNotFound, do(router, "DELETE", base+"/items/"+dup.ID.String(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, "DELETE", base+"/items/NOPE", nil).Code)

	w = do(router, "POST", base+"/commit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[services.CommitReport](t, w)
	require.NotNil(t, report.Commit)
	assert.Equal(t, 2, report.Commit.TotalItems)
	assert.Len(t, report.Success, 2)
	assert.Len(t, report.Skipped, 1)
	assert.Len(t, report.Errors, 1)

	w = do(router, "GET", "/api/v1/inventory/commits", nil)
	assert.Len(t, decode[[]models.StockCommit](t, w), 1)

	w = do(router, "GET", "/api/v1/inventory/stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stock := decode[[]models.Barcode](t, w)
	require.Len(t, stock, 4)

	ids := []string{stock[0].ID.String(), stock[1].ID.String()}
	w = do(router, "POST", "/api/v1/checkout", models.CheckoutRequest{CustomerName: "Kandy Traders", BarcodeIDs: ids})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[services.CheckoutResult](t, w)
	assert.True(t, result.Invoice.TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.Regexp(t, `^INV-\d{14}-[0-9A-F]{4}$`, result.Invoice.InvoiceNo)

	w = do(router, "POST", "/api/v1/checkout", models.CheckoutRequest{CustomerName: "Kandy Traders", BarcodeIDs: ids})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, "POST", "/api/v1/checkout", models.CheckoutRequest{CustomerName: "X", BarcodeIDs: []string{"bad"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "GET", "/api/v1/invoices", nil)
	assert.Len(t, decode[[]models.Invoice](t, w), 1)

	assert.Equal(t, http.StatusNoContent, do(router, "DELETE", base, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(router, "GET", base, nil).Code)
}

func TestMaterials_CreateListApprove(t *testing.T) {
	router := seededRouter(t)

	w := do(router, "POST", "/api/v1/materials", models.CreateMaterialRequest{
		OrderID: ord2, MaterialContent: "Zippers", QuantityRequested: 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := decode[models.MaterialRequest](t, w)

	w = do(router, "POST", "/api/v1/materials/"+req.ID.String()+"/approve", models.ApproveMaterialRequest{ApproveQty: ptr(40)})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[services.ApprovalResult](t, w)
	assert.Equal(t, models.MaterialPartiallyApproved, result.Request.Status)
	assert.Equal(t, 40, result.Receipt.Total)

	w = do(router, "POST", "/api/v1/materials/"+req.ID.String()+"/approve", models.ApproveMaterialRequest{ApproveQty: ptr(61)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "GET", "/api/v1/materials?order_id="+ord2+"&status=partially_approved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.MaterialRequest](t, w), 1)

	w = do(router, "POST", "/api/v1/materials", models.CreateMaterialRequest{
		OrderID: "5b0c1f7e-0c8a-4d5e-9f43-2d1a7c9effff", MaterialContent: "Buttons", QuantityRequested: 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaterials_ApproveRequiresQuantity(t *testing.T) {
	router := seededRouter(t)

	w := do(router, "GET", "/api/v1/materials?order_id="+ord2+"&status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode[[]models.MaterialRequest](t, w)
	require.Len(t, pending, 1)
	path := "/api/v1/materials/" + pending[0].ID.String() + "/approve"

	for _, body := range []map[string]any{{}, {"approveQty": 5}} {
		w = do(router, "POST", path, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w = do(router, "GET", "/api/v1/materials?order_id="+ord2+"&status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.MaterialRequest](t, w), 1)

	// An explicit zero is still a rejection.
	w = do(router, "POST", path, map[string]any{"approve_qty": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.MaterialRejected, decode[services.ApprovalResult](t, w).Request.Status)
}

func ptr[T any](v T) *T { return &v }

func TestReportsAndDashboard(t *testing.T) {
	router := seededRouter(t)

	w := do(router, "GET", "/api/v1/reports?unit_id=2&start=2023-11-01&end=2023-12-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total_orders":1`)

	assert.Equal(t, http.StatusBadRequest, do(router, "GET", "/api/v1/reports?start=2024-02-01&end=2024-01-01", nil).Code)

	w = do(router, "GET", "/api/v1/reports/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())

	w = do(router, "GET", "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[services.Dashboard](t, w)
	assert.Equal(t, 2, d.StockCount)

	w = do(router, "GET", "/api/v1/units", nil)
	assert.Len(t, decode[[]models.Unit](t, w), 3)
}

// brokenStore fails every read with a transport error.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) ListOrders(context.Context, store.OrderFilter) ([]models.Order, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestStoreFailureIsRetryable503(t *testing.T) {
	st, err := memory.NewSeeded()
	require.NoError(t, err)
	router := newRouter(t, brokenStore{st}, nil)

	w := do(router, "GET", "/api/v1/orders", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.True(t, resp.Retryable)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, _ = part.Write(content)
	require.NoError(t, mw.WriteField("folder", "materials"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/api/v1/attachments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAttachments(t *testing.T) {
	st, err := memory.NewSeeded()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	seededRouter(t).ServeHTTP(w, multipartUpload(t, "file", "sheet.pdf", []byte("pdf")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	uploader := &fakeUploader{}
	router := newRouter(t, st, uploader)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "file", "sheet.pdf", []byte("pdf")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[models.AttachmentResponse](t, w)
	assert.Equal(t, "https://files.example/materials/sheet.pdf", resp.URL)
	assert.Equal(t, "sheet.pdf", resp.Name)
	assert.Equal(t, 3, uploader.size)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "other", "sheet.pdf", []byte("pdf")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	router := seededRouter(t)
	req, _ := http.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://floor.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	gin.SetMode(gin.TestMode)
	st, err := memory.NewSeeded()
	require.NoError(t, err)
	restricted := handlers.NewRouter(&config.Config{Environment: "production", CORSAllowedOrigins: []string{"https://office.example"}}, handlers.Handlers{
		Health: handlers.NewHealthHandler(st, config.StoreMemory, ""),
	})
	req, _ = http.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://office.example")
	w = httptest.NewRecorder()
	restricted.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://office.example", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://elsewhere.example")
	w = httptest.NewRecorder()
	restricted.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
