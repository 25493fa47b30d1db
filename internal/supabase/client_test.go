package supabase_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/config"
	"tintura-sst/internal/models"
	"tintura-sst/internal/store"
	"tintura-sst/internal/supabase"
)

// fakeRest answers PostgREST calls from a table of canned responses keyed by
// "METHOD /table" and records every request it sees.
type fakeRest struct {
	mu        sync.Mutex
	responses map[string][]cannedResponse
	calls     []string
}

type cannedResponse struct {
	status int
	body   string
}

func (f *fakeRest) on(method, table string, status int, body string) {
	key := method + " /rest/v1/" + table
	f.responses[key] = append(f.responses[key], cannedResponse{status, body})
}

func (f *fakeRest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = io.Copy(io.Discard, r.Body)

	key := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, key+"?"+r.URL.RawQuery)
	queue := f.responses[key]
	if len(queue) == 0 {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"PGRST205","message":"no canned response"}`)
		return
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (f *fakeRest) callsTo(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func newRestClient(t *testing.T) (*supabase.RestClient, *fakeRest) {
	t.Helper()
	fake := &fakeRest{responses: map[string][]cannedResponse{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client, err := supabase.NewRestClient(&config.Config{
		SupabaseURL:        srv.URL,
		SupabaseServiceKey: "service-key",
	}, logger)
	require.NoError(t, err)
	return client, fake
}

func TestNewRestClient_RequiresKey(t *testing.T) {
	_, err := supabase.NewRestClient(&config.Config{SupabaseURL: "http://localhost"}, logrus.New())
	assert.Error(t, err)
}

func TestRestClient_GetOrderNotFound(t *testing.T) {
	client, fake := newRestClient(t)
	fake.on(http.MethodGet, "orders", http.StatusOK, `[]`)

	_, err := client.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRestClient_CanceledContextSkipsRequest(t *testing.T) {
	client, fake := newRestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Ping(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.callsTo("GET"))
}

func TestRestClient_UpdateBarcodeStatusConflict(t *testing.T) {
	client, fake := newRestClient(t)
	id := uuid.New()
	fake.on(http.MethodPatch, "barcodes", http.StatusOK, `[]`)
	fake.on(http.MethodGet, "barcodes", http.StatusOK,
		fmt.Sprintf(`[{"id":"%s","barcode_serial":"ORD-1;ST-1001;M;00001","status":"SOLD"}]`, id))

	_, err := client.UpdateBarcodeStatus(context.Background(), id, models.BarcodeQCApproved, models.BarcodeCommittedToStock)
	assert.ErrorIs(t, err, store.ErrConflict)

	patches := fake.callsTo("PATCH /rest/v1/barcodes")
	require.Len(t, patches, 1)
	assert.Contains(t, patches[0], "status=eq.QC_APPROVED")
}

func TestRestClient_CreateInvoiceDuplicateNumber(t *testing.T) {
	client, fake := newRestClient(t)
	id := uuid.New()
	fake.on(http.MethodGet, "barcodes", http.StatusOK,
		fmt.Sprintf(`[{"id":"%s","barcode_serial":"ORD-1;ST-1001;M;00001","status":"COMMITTED_TO_STOCK"}]`, id))
	fake.on(http.MethodPost, "invoices", http.StatusConflict,
		`{"code":"23505","message":"duplicate key value violates unique constraint"}`)

	_, err := client.CreateInvoice(context.Background(), models.Invoice{
		InvoiceNo:    "INV-1",
		CustomerName: "Walk-in",
		BarcodeIDs:   []uuid.UUID{id},
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Empty(t, fake.callsTo("PATCH /rest/v1/barcodes"))
}

func TestRestClient_CreateInvoiceLostRaceIsUndone(t *testing.T) {
	client, fake := newRestClient(t)
	a, b := uuid.New(), uuid.New()
	invoiceID := uuid.New()
	fake.on(http.MethodGet, "barcodes", http.StatusOK, fmt.Sprintf(
		`[{"id":"%s","status":"COMMITTED_TO_STOCK"},{"id":"%s","status":"COMMITTED_TO_STOCK"}]`, a, b))
	fake.on(http.MethodPost, "invoices", http.StatusCreated,
		fmt.Sprintf(`[{"id":"%s","invoice_no":"INV-2","total_amount":"1000"}]`, invoiceID))
	// Only one of the two barcodes is still in stock when we mark them sold.
	fake.on(http.MethodPatch, "barcodes", http.StatusOK, fmt.Sprintf(`[{"id":"%s","status":"SOLD"}]`, a))
	fake.on(http.MethodPatch, "barcodes", http.StatusNoContent, ``)
	fake.on(http.MethodDelete, "invoices", http.StatusNoContent, ``)

	_, err := client.CreateInvoice(context.Background(), models.Invoice{
		InvoiceNo:  "INV-2",
		BarcodeIDs: []uuid.UUID{a, b},
	})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NotErrorIs(t, err, store.ErrPartialBatch)

	patches := fake.callsTo("PATCH /rest/v1/barcodes")
	require.Len(t, patches, 2)
	assert.Contains(t, unescape(t, patches[0]), "status=in.(COMMITTED_TO_STOCK)")
	assert.Contains(t, patches[1], "invoice_id=eq."+invoiceID.String())
	assert.Len(t, fake.callsTo("DELETE /rest/v1/invoices"), 1)
}

func TestRestClient_AllocateRestoresCounterOnInsertFailure(t *testing.T) {
	client, fake := newRestClient(t)
	orderID := uuid.New()
	order := fmt.Sprintf(`[{"id":"%s","order_no":"ORD-7","last_barcode_serial":3,"status":"STARTED"}]`, orderID)
	fake.on(http.MethodGet, "orders", http.StatusOK, order)
	fake.on(http.MethodPatch, "orders", http.StatusOK, order)
	fake.on(http.MethodPatch, "orders", http.StatusNoContent, ``)
	fake.on(http.MethodPost, "barcodes", http.StatusInternalServerError, `{"code":"XX000","message":"internal error"}`)

	build := func(orderNo string, seq int) models.Barcode {
		return models.Barcode{BarcodeSerial: fmt.Sprintf("%s;ST-1001;M;%05d", orderNo, seq), Size: "M", Status: models.BarcodeGenerated}
	}
	_, err := client.AllocateBarcodes(context.Background(), orderID, 2, build)
	require.Error(t, err)
	assert.True(t, store.IsRetryable(err))

	patches := fake.callsTo("PATCH /rest/v1/orders")
	require.Len(t, patches, 2)
	assert.Contains(t, patches[0], "last_barcode_serial=eq.3")
	assert.Contains(t, patches[1], "last_barcode_serial=eq.5")
}

func TestRestClient_CommitToStockNothingMoved(t *testing.T) {
	client, fake := newRestClient(t)
	id := uuid.New()
	fake.on(http.MethodGet, "barcodes", http.StatusOK, fmt.Sprintf(`[{"id":"%s","status":"COMMITTED_TO_STOCK"}]`, id))
	fake.on(http.MethodPatch, "barcodes", http.StatusOK, `[]`)

	commit, moved, err := client.CommitToStock(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	assert.Nil(t, commit)
	assert.Empty(t, moved)
	assert.Empty(t, fake.callsTo("POST /rest/v1/stock_commits"))

	patches := fake.callsTo("PATCH /rest/v1/barcodes")
	require.Len(t, patches, 1)
	assert.Contains(t, unescape(t, patches[0]), "status=in.(GENERATED,DETAILS_FILLED,PUSHED_OUT_OF_SUBUNIT,QC_APPROVED)")
}

func TestRestClient_CreateInvoiceRejectsUnsellableBarcode(t *testing.T) {
	client, fake := newRestClient(t)
	id := uuid.New()
	fake.on(http.MethodGet, "barcodes", http.StatusOK,
		fmt.Sprintf(`[{"id":"%s","barcode_serial":"ORD-1;ST-1001;L;00003","status":"QC_APPROVED"}]`, id))

	_, err := client.CreateInvoice(context.Background(), models.Invoice{InvoiceNo: "INV-3", BarcodeIDs: []uuid.UUID{id}})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Empty(t, fake.callsTo("POST /rest/v1/invoices"))
}

func unescape(t *testing.T, call string) string {
	t.Helper()
	out, err := url.QueryUnescape(call)
	require.NoError(t, err)
	return out
}
