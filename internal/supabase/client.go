package supabase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"tintura-sst/internal/config"
	"tintura-sst/internal/lifecycle"
	"tintura-sst/internal/models"
	"tintura-sst/internal/store"
)

var counterBackoffs = []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 80 * time.Millisecond}

// RestClient is the store backed by the Supabase REST API. PostgREST has no
// multi-statement transactions, so multi-record writes are made of
// conditional updates and undo their earlier steps when a later one fails.
type RestClient struct {
	Supabase *supabase.Client
	logger   *logrus.Logger
}

var _ store.Store = (*RestClient)(nil)

func NewRestClient(cfg *config.Config, logger *logrus.Logger) (*RestClient, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, err
	}

	return &RestClient{
		Supabase: client,
		logger:   logger,
	}, nil
}

func (c *RestClient) from(ctx context.Context, table string) (*postgrest.QueryBuilder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Supabase.From(table), nil
}

// restError maps PostgREST error codes onto the store's sentinel errors.
func restError(err error, what string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "(23505)"):
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	case strings.HasPrefix(msg, "(23503)"), strings.HasPrefix(msg, "(PGRST116)"):
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}

func partial(step error, undo error) error {
	return fmt.Errorf("%w: %v (undo failed: %v)", store.ErrPartialBatch, step, undo)
}

func asc() *postgrest.OrderOpts  { return &postgrest.OrderOpts{Ascending: true} }
func desc() *postgrest.OrderOpts { return &postgrest.OrderOpts{Ascending: false} }

func (c *RestClient) Ping(ctx context.Context) error {
	q, err := c.from(ctx, "units")
	if err != nil {
		return err
	}
	_, _, err = q.Select("id", "", false).Limit(1, "").Execute()
	return restError(err, "units")
}

func (c *RestClient) ListUnits(ctx context.Context) ([]models.Unit, error) {
	q, err := c.from(ctx, "units")
	if err != nil {
		return nil, err
	}
	var units []models.Unit
	if _, err := q.Select("*", "", false).Order("id", asc()).ExecuteTo(&units); err != nil {
		return nil, restError(err, "units")
	}
	return units, nil
}

func (c *RestClient) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	q, err := c.from(ctx, "units")
	if err != nil {
		return nil, err
	}
	var units []models.Unit
	if _, err := q.Select("*", "", false).Eq("id", strconv.FormatInt(id, 10)).ExecuteTo(&units); err != nil {
		return nil, restError(err, "units")
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("unit %d: %w", id, store.ErrNotFound)
	}
	return &units[0], nil
}

func (c *RestClient) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	q, err := c.from(ctx, "orders")
	if err != nil {
		return nil, err
	}
	fb := q.Select("*", "", false)
	if f.UnitID != nil {
		fb = fb.Eq("unit_id", strconv.FormatInt(*f.UnitID, 10))
	}
	var orders []models.Order
	if _, err := fb.Order("created_at", desc()).ExecuteTo(&orders); err != nil {
		return nil, restError(err, "orders")
	}
	return orders, nil
}

func (c *RestClient) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	q, err := c.from(ctx, "orders")
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if _, err := q.Select("*", "", false).Eq("id", id.String()).ExecuteTo(&orders); err != nil {
		return nil, restError(err, "orders")
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	return &orders[0], nil
}

func logRow(log models.OrderLog) map[string]any {
	row := map[string]any{
		"order_id": log.OrderID,
		"kind":     log.Kind,
		"message":  log.Message,
		"actor":    log.Actor,
	}
	if !log.CreatedAt.IsZero() {
		row["created_at"] = log.CreatedAt
	}
	return row
}

func (c *RestClient) insertLog(ctx context.Context, log models.OrderLog) (*models.OrderLog, error) {
	q, err := c.from(ctx, "order_logs")
	if err != nil {
		return nil, err
	}
	var rows []models.OrderLog
	if _, err := q.Insert(logRow(log), false, "", "representation", "").ExecuteTo(&rows); err != nil {
		return nil, restError(err, "order log")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("order log insert returned no row")
	}
	return &rows[0], nil
}

func (c *RestClient) deleteRow(table string, id uuid.UUID) error {
	_, _, err := c.Supabase.From(table).Delete("minimal", "").Eq("id", id.String()).Execute()
	return err
}

func (c *RestClient) CreateOrder(ctx context.Context, o models.Order, log models.OrderLog) (*models.Order, error) {
	q, err := c.from(ctx, "orders")
	if err != nil {
		return nil, err
	}
	row := map[string]any{
		"unit_id":         o.UnitID,
		"style_number":    o.StyleNumber,
		"quantity":        o.Quantity,
		"box_count":       o.BoxCount,
		"description":     o.Description,
		"attachment_url":  o.AttachmentURL,
		"attachment_name": o.AttachmentName,
		"size_breakdown":  o.SizeBreakdown,
		"status":          o.Status,
	}
	if o.TargetDeliveryDate != "" {
		row["target_delivery_date"] = o.TargetDeliveryDate
	}

	var created []models.Order
	if _, err := q.Insert(row, false, "", "representation", "").ExecuteTo(&created); err != nil {
		return nil, restError(err, "order")
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("order insert returned no row")
	}

	log.OrderID = created[0].ID
	if _, err := c.insertLog(ctx, log); err != nil {
		if undoErr := c.deleteRow("orders", created[0].ID); undoErr != nil {
			return nil, partial(err, undoErr)
		}
		return nil, err
	}
	return &created[0], nil
}

func (c *RestClient) UpdateOrderDetails(ctx context.Context, id uuid.UUID, patch models.OrderDetailsPatch) (*models.Order, error) {
	q, err := c.from(ctx, "orders")
	if err != nil {
		return nil, err
	}
	row := map[string]any{}
	if patch.Description != nil {
		row["description"] = *patch.Description
	}
	if patch.QCNotes != nil {
		row["qc_notes"] = *patch.QCNotes
	}
	if patch.AttachmentURL != nil {
		row["attachment_url"] = *patch.AttachmentURL
	}
	if patch.AttachmentName != nil {
		row["attachment_name"] = *patch.AttachmentName
	}
	var updated []models.Order
	if _, err := q.Update(row, "representation", "").Eq("id", id.String()).ExecuteTo(&updated); err != nil {
		return nil, restError(err, "order")
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	return &updated[0], nil
}

func transitionRow(o *models.Order) map[string]any {
	return map[string]any{
		"status":               o.Status,
		"qc_notes":             o.QCNotes,
		"completion_breakdown": o.CompletionBreakdown,
		"actual_box_count":     o.ActualBoxCount,
	}
}

// setOrderState writes the lifecycle fields of o, but only while the stored
// status is still expect. It reports whether a row matched.
func (c *RestClient) setOrderState(ctx context.Context, o *models.Order, expect models.OrderStatus) (*models.Order, error) {
	q, err := c.from(ctx, "orders")
	if err != nil {
		return nil, err
	}
	var updated []models.Order
	_, err = q.Update(transitionRow(o), "representation", "").
		Eq("id", o.ID.String()).
		Eq("status", string(expect)).
		ExecuteTo(&updated)
	if err != nil {
		return nil, restError(err, "order")
	}
	if len(updated) == 0 {
		return nil, nil
	}
	return &updated[0], nil
}

func (c *RestClient) TransitionOrder(ctx context.Context, t store.OrderTransition) (*models.Order, error) {
	prior, err := c.GetOrder(ctx, t.OrderID)
	if err != nil {
		return nil, err
	}
	if prior.Status != t.From {
		return nil, fmt.Errorf("order %s is %s, expected %s: %w", prior.OrderNo, prior.Status, t.From, store.ErrConflict)
	}

	next := *prior
	if t.Apply != nil {
		t.Apply(&next)
	}
	next.Status = t.To

	updated, err := c.setOrderState(ctx, &next, t.From)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("order %s changed concurrently: %w", prior.OrderNo, store.ErrConflict)
	}

	log := t.Log
	log.OrderID = t.OrderID
	if _, err := c.insertLog(ctx, log); err != nil {
		if _, undoErr := c.setOrderState(context.Background(), prior, t.To); undoErr != nil {
			return nil, partial(err, undoErr)
		}
		return nil, err
	}
	return updated, nil
}

func (c *RestClient) AppendOrderLog(ctx context.Context, log models.OrderLog) (*models.OrderLog, error) {
	if _, err := c.GetOrder(ctx, log.OrderID); err != nil {
		return nil, err
	}
	return c.insertLog(ctx, log)
}

func (c *RestClient) ListOrderLogs(ctx context.Context, orderID uuid.UUID) ([]models.OrderLog, error) {
	q, err := c.from(ctx, "order_logs")
	if err != nil {
		return nil, err
	}
	var logs []models.OrderLog
	_, err = q.Select("*", "", false).
		Eq("order_id", orderID.String()).
		Order("created_at", asc()).
		ExecuteTo(&logs)
	if err != nil {
		return nil, restError(err, "order logs")
	}
	return logs, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func statusStrings(statuses []models.BarcodeStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (c *RestClient) ListBarcodes(ctx context.Context, f store.BarcodeFilter) ([]models.Barcode, error) {
	q, err := c.from(ctx, "barcodes")
	if err != nil {
		return nil, err
	}
	fb := q.Select("*", "", false)
	if f.OrderID != nil {
		fb = fb.Eq("order_id", f.OrderID.String())
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		fb = fb.In("status", statuses)
	}
	switch {
	case len(f.IDs) > 0 && len(f.Serials) > 0:
		quoted := make([]string, len(f.Serials))
		for i, s := range f.Serials {
			quoted[i] = strconv.Quote(s)
		}
		fb = fb.Or(fmt.Sprintf("id.in.(%s),barcode_serial.in.(%s)", strings.Join(idStrings(f.IDs), ","), strings.Join(quoted, ",")), "")
	case len(f.IDs) > 0:
		fb = fb.In("id", idStrings(f.IDs))
	case len(f.Serials) > 0:
		fb = fb.In("barcode_serial", f.Serials)
	}

	var out []models.Barcode
	if _, err := fb.Order("created_at", asc()).Order("barcode_serial", asc()).ExecuteTo(&out); err != nil {
		return nil, restError(err, "barcodes")
	}
	return out, nil
}

// reserveSerials advances the order counter by count with a compare-and-swap
// and returns the order as it was before the reservation.
func (c *RestClient) reserveSerials(ctx context.Context, orderID uuid.UUID, count int) (*models.Order, error) {
	for attempt := 0; attempt <= len(counterBackoffs); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(counterBackoffs[attempt-1]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		o, err := c.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		q, err := c.from(ctx, "orders")
		if err != nil {
			return nil, err
		}
		var updated []models.Order
		_, err = q.Update(map[string]any{"last_barcode_serial": o.LastBarcodeSerial + count}, "representation", "").
			Eq("id", orderID.String()).
			Eq("last_barcode_serial", strconv.Itoa(o.LastBarcodeSerial)).
			ExecuteTo(&updated)
		if err != nil {
			return nil, restError(err, "order counter")
		}
		if len(updated) == 1 {
			return o, nil
		}
		c.logger.WithFields(logrus.Fields{"order_no": o.OrderNo, "attempt": attempt + 1}).Warn("barcode counter moved, retrying")
	}
	return nil, fmt.Errorf("barcode counter kept moving: %w", store.ErrConflict)
}

func (c *RestClient) AllocateBarcodes(ctx context.Context, orderID uuid.UUID, count int, build store.BarcodeBuilder) ([]models.Barcode, error) {
	o, err := c.reserveSerials(ctx, orderID, count)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, count)
	for i := 1; i <= count; i++ {
		b := build(o.OrderNo, o.LastBarcodeSerial+i)
		rows = append(rows, map[string]any{
			"barcode_serial": b.BarcodeSerial,
			"order_id":       orderID,
			"style_number":   b.StyleNumber,
			"size":           b.Size,
			"status":         b.Status,
		})
	}

	var created []models.Barcode
	q, err := c.from(ctx, "barcodes")
	if err == nil {
		_, err = q.Insert(rows, false, "", "representation", "").ExecuteTo(&created)
		err = restError(err, "barcodes")
	}
	if err != nil {
		// Give the reserved range back unless another batch already moved past it.
		_, _, undoErr := c.Supabase.From("orders").
			Update(map[string]any{"last_barcode_serial": o.LastBarcodeSerial}, "minimal", "").
			Eq("id", orderID.String()).
			Eq("last_barcode_serial", strconv.Itoa(o.LastBarcodeSerial+count)).
			Execute()
		if undoErr != nil {
			return nil, partial(err, undoErr)
		}
		return nil, err
	}
	return created, nil
}

func (c *RestClient) UpdateBarcodeStatus(ctx context.Context, id uuid.UUID, from, to models.BarcodeStatus) (*models.Barcode, error) {
	q, err := c.from(ctx, "barcodes")
	if err != nil {
		return nil, err
	}
	var updated []models.Barcode
	_, err = q.Update(map[string]any{"status": to}, "representation", "").
		Eq("id", id.String()).
		Eq("status", string(from)).
		ExecuteTo(&updated)
	if err != nil {
		return nil, restError(err, "barcode")
	}
	if len(updated) == 1 {
		return &updated[0], nil
	}
	existing, err := c.ListBarcodes(ctx, store.BarcodeFilter{IDs: []uuid.UUID{id}})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("barcode %s: %w", id, store.ErrNotFound)
	}
	return nil, fmt.Errorf("barcode %s is %s, expected %s: %w", existing[0].BarcodeSerial, existing[0].Status, from, store.ErrConflict)
}

func (c *RestClient) CommitToStock(ctx context.Context, ids []uuid.UUID) (*models.StockCommit, []uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	before, err := c.ListBarcodes(ctx, store.BarcodeFilter{IDs: ids})
	if err != nil {
		return nil, nil, err
	}
	priorStatus := make(map[uuid.UUID]models.BarcodeStatus, len(before))
	for _, b := range before {
		priorStatus[b.ID] = b.Status
	}

	q, err := c.from(ctx, "barcodes")
	if err != nil {
		return nil, nil, err
	}
	var moved []models.Barcode
	_, err = q.Update(map[string]any{"status": models.BarcodeCommittedToStock}, "representation", "").
		In("id", idStrings(ids)).
		In("status", statusStrings(lifecycle.BarcodeSources(models.BarcodeCommittedToStock, lifecycle.StockCommit))).
		ExecuteTo(&moved)
	if err != nil {
		return nil, nil, restError(err, "barcodes")
	}
	if len(moved) == 0 {
		return nil, nil, nil
	}
	movedIDs := make([]uuid.UUID, len(moved))
	for i, b := range moved {
		movedIDs[i] = b.ID
	}

	var commits []models.StockCommit
	cq, err := c.from(ctx, "stock_commits")
	if err == nil {
		_, err = cq.Insert(map[string]any{"total_items": len(moved)}, false, "", "representation", "").ExecuteTo(&commits)
		err = restError(err, "stock commit")
	}
	if err == nil && len(commits) == 0 {
		err = fmt.Errorf("stock commit insert returned no row")
	}
	if err != nil {
		if undoErr := c.revertStatuses(movedIDs, priorStatus, models.BarcodeCommittedToStock); undoErr != nil {
			return nil, nil, partial(err, undoErr)
		}
		return nil, nil, err
	}
	return &commits[0], movedIDs, nil
}

// revertStatuses puts barcodes back to their earlier status, but only those
// still in current.
func (c *RestClient) revertStatuses(ids []uuid.UUID, prior map[uuid.UUID]models.BarcodeStatus, current models.BarcodeStatus) error {
	groups := map[models.BarcodeStatus][]string{}
	for _, id := range ids {
		groups[prior[id]] = append(groups[prior[id]], id.String())
	}
	var errs []error
	for status, group := range groups {
		_, _, err := c.Supabase.From("barcodes").
			Update(map[string]any{"status": status}, "minimal", "").
			In("id", group).
			Eq("status", string(current)).
			Execute()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *RestClient) ListStockCommits(ctx context.Context) ([]models.StockCommit, error) {
	q, err := c.from(ctx, "stock_commits")
	if err != nil {
		return nil, err
	}
	var out []models.StockCommit
	if _, err := q.Select("*", "", false).Order("created_at", desc()).ExecuteTo(&out); err != nil {
		return nil, restError(err, "stock commits")
	}
	return out, nil
}

func (c *RestClient) ListMaterialRequests(ctx context.Context, f store.MaterialFilter) ([]models.MaterialRequest, error) {
	q, err := c.from(ctx, "material_requests")
	if err != nil {
		return nil, err
	}
	fb := q.Select("*", "", false)
	if f.OrderID != nil {
		fb = fb.Eq("order_id", f.OrderID.String())
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		fb = fb.In("status", statuses)
	}
	var out []models.MaterialRequest
	if _, err := fb.Order("created_at", desc()).ExecuteTo(&out); err != nil {
		return nil, restError(err, "material requests")
	}
	return out, nil
}

func (c *RestClient) GetMaterialRequest(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	q, err := c.from(ctx, "material_requests")
	if err != nil {
		return nil, err
	}
	var out []models.MaterialRequest
	if _, err := q.Select("*", "", false).Eq("id", id.String()).ExecuteTo(&out); err != nil {
		return nil, restError(err, "material requests")
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("material request %s: %w", id, store.ErrNotFound)
	}
	return &out[0], nil
}

func (c *RestClient) CreateMaterialRequest(ctx context.Context, m models.MaterialRequest) (*models.MaterialRequest, error) {
	q, err := c.from(ctx, "material_requests")
	if err != nil {
		return nil, err
	}
	row := map[string]any{
		"order_id":           m.OrderID,
		"material_content":   m.MaterialContent,
		"quantity_requested": m.QuantityRequested,
		"quantity_approved":  m.QuantityApproved,
		"attachment_url":     m.AttachmentURL,
		"status":             m.Status,
	}
	var out []models.MaterialRequest
	if _, err := q.Insert(row, false, "", "representation", "").ExecuteTo(&out); err != nil {
		return nil, restError(err, "order "+m.OrderID.String())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("material request insert returned no row")
	}
	return &out[0], nil
}

func (c *RestClient) UpdateMaterialApproval(ctx context.Context, a store.MaterialApproval) (*models.MaterialRequest, error) {
	q, err := c.from(ctx, "material_requests")
	if err != nil {
		return nil, err
	}
	var out []models.MaterialRequest
	_, err = q.Update(map[string]any{"quantity_approved": a.NewApproved, "status": a.Status}, "representation", "").
		Eq("id", a.RequestID.String()).
		Eq("quantity_approved", strconv.Itoa(a.ExpectedApproved)).
		ExecuteTo(&out)
	if err != nil {
		return nil, restError(err, "material request")
	}
	if len(out) == 1 {
		return &out[0], nil
	}
	if _, err := c.GetMaterialRequest(ctx, a.RequestID); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("material request %s approved total moved: %w", a.RequestID, store.ErrConflict)
}

func (c *RestClient) CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	current, err := c.ListBarcodes(ctx, store.BarcodeFilter{IDs: inv.BarcodeIDs})
	if err != nil {
		return nil, err
	}
	if len(current) != len(inv.BarcodeIDs) {
		return nil, fmt.Errorf("invoice references unknown barcodes: %w", store.ErrNotFound)
	}
	for _, b := range current {
		if !lifecycle.CanTransitionBarcode(b.Status, models.BarcodeSold, lifecycle.Checkout) {
			return nil, fmt.Errorf("barcode %s is %s: %w", b.BarcodeSerial, b.Status, store.ErrConflict)
		}
	}

	q, err := c.from(ctx, "invoices")
	if err != nil {
		return nil, err
	}
	var created []models.Invoice
	_, err = q.Insert(map[string]any{
		"invoice_no":    inv.InvoiceNo,
		"customer_name": inv.CustomerName,
		"total_amount":  inv.TotalAmount,
		"barcode_ids":   inv.BarcodeIDs,
	}, false, "", "representation", "").ExecuteTo(&created)
	if err != nil {
		return nil, restError(err, "invoice "+inv.InvoiceNo)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("invoice insert returned no row")
	}
	saved := created[0]

	var sold []models.Barcode
	_, err = c.Supabase.From("barcodes").
		Update(map[string]any{"status": models.BarcodeSold, "invoice_id": saved.ID}, "representation", "").
		In("id", idStrings(inv.BarcodeIDs)).
		In("status", statusStrings(lifecycle.BarcodeSources(models.BarcodeSold, lifecycle.Checkout))).
		ExecuteTo(&sold)
	if err == nil && len(sold) == len(inv.BarcodeIDs) {
		return &saved, nil
	}

	// Another checkout took some of the barcodes first. Undo ours.
	cause := fmt.Errorf("barcodes were sold concurrently: %w", store.ErrConflict)
	if err != nil {
		cause = restError(err, "barcodes")
	}
	var undoErrs []error
	if len(sold) > 0 {
		ids := make([]string, len(sold))
		for i, b := range sold {
			ids[i] = b.ID.String()
		}
		_, _, undoErr := c.Supabase.From("barcodes").
			Update(map[string]any{"status": models.BarcodeCommittedToStock, "invoice_id": nil}, "minimal", "").
			In("id", ids).
			Eq("invoice_id", saved.ID.String()).
			Execute()
		if undoErr != nil {
			undoErrs = append(undoErrs, undoErr)
		}
	}
	if len(undoErrs) == 0 {
		if undoErr := c.deleteRow("invoices", saved.ID); undoErr != nil {
			undoErrs = append(undoErrs, undoErr)
		}
	}
	if len(undoErrs) > 0 {
		return nil, partial(cause, errors.Join(undoErrs...))
	}
	return nil, cause
}

func (c *RestClient) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	q, err := c.from(ctx, "invoices")
	if err != nil {
		return nil, err
	}
	var out []models.Invoice
	if _, err := q.Select("*", "", false).Order("created_at", desc()).ExecuteTo(&out); err != nil {
		return nil, restError(err, "invoices")
	}
	return out, nil
}
