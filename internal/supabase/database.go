package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"tintura-sst/internal/lifecycle"
	"tintura-sst/internal/models"
	"tintura-sst/internal/store"
)

// DatabaseClient is the store backed by a direct Postgres connection. Every
// multi-record write runs in one transaction.
type DatabaseClient struct {
	db *sql.DB
}

var _ store.Store = (*DatabaseClient)(nil)

func NewDatabaseClient(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

const orderColumns = `id, order_no, unit_id, style_number, quantity, box_count, actual_box_count,
	COALESCE(to_char(target_delivery_date, 'YYYY-MM-DD'), ''), description, qc_notes,
	attachment_url, attachment_name, size_breakdown, completion_breakdown,
	last_barcode_serial, status, created_at`

const barcodeColumns = `id, barcode_serial, order_id, style_number, size, status, invoice_id, created_at`

const materialColumns = `id, order_id, material_content, quantity_requested, quantity_approved,
	attachment_url, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o          models.Order
		actualBox  sql.NullInt64
		planned    []byte
		completion []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNo, &o.UnitID, &o.StyleNumber, &o.Quantity, &o.BoxCount, &actualBox,
		&o.TargetDeliveryDate, &o.Description, &o.QCNotes,
		&o.AttachmentURL, &o.AttachmentName, &planned, &completion,
		&o.LastBarcodeSerial, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if actualBox.Valid {
		v := int(actualBox.Int64)
		o.ActualBoxCount = &v
	}
	if err := json.Unmarshal(planned, &o.SizeBreakdown); err != nil {
		return nil, fmt.Errorf("failed to decode size breakdown of %s: %w", o.OrderNo, err)
	}
	if len(completion) > 0 {
		if err := json.Unmarshal(completion, &o.CompletionBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode completion breakdown of %s: %w", o.OrderNo, err)
		}
	}
	return &o, nil
}

func scanBarcode(row rowScanner) (*models.Barcode, error) {
	var (
		b         models.Barcode
		invoiceID uuid.NullUUID
	)
	if err := row.Scan(&b.ID, &b.BarcodeSerial, &b.OrderID, &b.StyleNumber, &b.Size, &b.Status, &invoiceID, &b.CreatedAt); err != nil {
		return nil, err
	}
	if invoiceID.Valid {
		id := invoiceID.UUID
		b.InvoiceID = &id
	}
	return &b, nil
}

func scanMaterial(row rowScanner) (*models.MaterialRequest, error) {
	var m models.MaterialRequest
	err := row.Scan(&m.ID, &m.OrderID, &m.MaterialContent, &m.QuantityRequested, &m.QuantityApproved,
		&m.AttachmentURL, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// mapError turns driver errors into the store's sentinel errors.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
		case "23503":
			return fmt.Errorf("%s: %w", what, store.ErrNotFound)
		}
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullDate(d string) any {
	if d == "" {
		return nil
	}
	return d
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) ListUnits(ctx context.Context) ([]models.Unit, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, name, is_main FROM units ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.IsMain); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (d *DatabaseClient) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	var u models.Unit
	err := d.db.QueryRowContext(ctx, `SELECT id, name, is_main FROM units WHERE id = $1`, id).Scan(&u.ID, &u.Name, &u.IsMain)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("unit %d", id))
	}
	return &u, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if f.UnitID != nil {
		query += ` WHERE unit_id = $1`
		args = append(args, *f.UnitID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (d *DatabaseClient) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := scanOrder(d.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "order "+id.String())
	}
	return o, nil
}

func insertLog(ctx context.Context, tx *sql.Tx, log models.OrderLog) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_logs (order_id, kind, message, actor, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
	`, log.OrderID, log.Kind, log.Message, log.Actor, nullTime(log.CreatedAt))
	return err
}

func (d *DatabaseClient) CreateOrder(ctx context.Context, o models.Order, log models.OrderLog) (*models.Order, error) {
	planned, err := json.Marshal(o.SizeBreakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to encode size breakdown: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := scanOrder(tx.QueryRowContext(ctx, `
		INSERT INTO orders (unit_id, style_number, quantity, box_count, target_delivery_date,
			description, attachment_url, attachment_name, size_breakdown, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		o.UnitID, o.StyleNumber, o.Quantity, o.BoxCount, nullDate(o.TargetDeliveryDate),
		o.Description, o.AttachmentURL, o.AttachmentName, string(planned), o.Status,
	))
	if err != nil {
		return nil, mapError(err, "order")
	}

	log.OrderID = created.ID
	if err := insertLog(ctx, tx, log); err != nil {
		return nil, fmt.Errorf("failed to write order log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) UpdateOrderDetails(ctx context.Context, id uuid.UUID, patch models.OrderDetailsPatch) (*models.Order, error) {
	o, err := scanOrder(d.db.QueryRowContext(ctx, `
		UPDATE orders SET
			description = COALESCE($2, description),
			qc_notes = COALESCE($3, qc_notes),
			attachment_url = COALESCE($4, attachment_url),
			attachment_name = COALESCE($5, attachment_name)
		WHERE id = $1
		RETURNING `+orderColumns,
		id, patch.Description, patch.QCNotes, patch.AttachmentURL, patch.AttachmentName,
	))
	if err != nil {
		return nil, mapError(err, "order "+id.String())
	}
	return o, nil
}

func (d *DatabaseClient) TransitionOrder(ctx context.Context, t store.OrderTransition) (*models.Order, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	o, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, t.OrderID))
	if err != nil {
		return nil, mapError(err, "order "+t.OrderID.String())
	}
	if o.Status != t.From {
		return nil, fmt.Errorf("order %s is %s, expected %s: %w", o.OrderNo, o.Status, t.From, store.ErrConflict)
	}
	if t.Apply != nil {
		t.Apply(o)
	}
	o.Status = t.To

	var completion any
	if o.CompletionBreakdown != nil {
		b, err := json.Marshal(o.CompletionBreakdown)
		if err != nil {
			return nil, fmt.Errorf("failed to encode completion breakdown: %w", err)
		}
		completion = string(b)
	}
	var actualBox any
	if o.ActualBoxCount != nil {
		actualBox = *o.ActualBoxCount
	}

	updated, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders SET status = $2, qc_notes = $3, completion_breakdown = $4, actual_box_count = $5
		WHERE id = $1
		RETURNING `+orderColumns,
		t.OrderID, o.Status, o.QCNotes, completion, actualBox,
	))
	if err != nil {
		return nil, mapError(err, "order "+t.OrderID.String())
	}

	log := t.Log
	log.OrderID = t.OrderID
	if err := insertLog(ctx, tx, log); err != nil {
		return nil, fmt.Errorf("failed to write order log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}
	return updated, nil
}

func (d *DatabaseClient) AppendOrderLog(ctx context.Context, log models.OrderLog) (*models.OrderLog, error) {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO order_logs (order_id, kind, message, actor, created_at)
		SELECT $1, $2, $3, $4, COALESCE($5, NOW())
		WHERE EXISTS (SELECT 1 FROM orders WHERE id = $1)
		RETURNING id, created_at
	`, log.OrderID, log.Kind, log.Message, log.Actor, nullTime(log.CreatedAt)).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return nil, mapError(err, "order "+log.OrderID.String())
	}
	return &log, nil
}

func (d *DatabaseClient) ListOrderLogs(ctx context.Context, orderID uuid.UUID) ([]models.OrderLog, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, order_id, kind, message, actor, created_at
		FROM order_logs
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order logs: %w", err)
	}
	defer rows.Close()

	var logs []models.OrderLog
	for rows.Next() {
		var l models.OrderLog
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Kind, &l.Message, &l.Actor, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (d *DatabaseClient) ListBarcodes(ctx context.Context, f store.BarcodeFilter) ([]models.Barcode, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.OrderID != nil {
		where = append(where, "order_id = "+arg(*f.OrderID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "status = ANY("+arg(pq.Array(statuses))+")")
	}
	switch {
	case len(f.IDs) > 0 && len(f.Serials) > 0:
		where = append(where, "(id = ANY("+arg(pq.Array(uuidStrings(f.IDs)))+"::uuid[]) OR barcode_serial = ANY("+arg(pq.Array(f.Serials))+"))")
	case len(f.IDs) > 0:
		where = append(where, "id = ANY("+arg(pq.Array(uuidStrings(f.IDs)))+"::uuid[])")
	case len(f.Serials) > 0:
		where = append(where, "barcode_serial = ANY("+arg(pq.Array(f.Serials))+")")
	}

	query := `SELECT ` + barcodeColumns + ` FROM barcodes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, barcode_serial`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list barcodes: %w", err)
	}
	defer rows.Close()

	var out []models.Barcode
	for rows.Next() {
		b, err := scanBarcode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan barcode: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (d *DatabaseClient) AllocateBarcodes(ctx context.Context, orderID uuid.UUID, count int, build store.BarcodeBuilder) ([]models.Barcode, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		orderNo string
		counter int
	)
	err = tx.QueryRowContext(ctx, `SELECT order_no, last_barcode_serial FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&orderNo, &counter)
	if err != nil {
		return nil, mapError(err, "order "+orderID.String())
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO barcodes (barcode_serial, order_id, style_number, size, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+barcodeColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare barcode insert: %w", err)
	}
	defer stmt.Close()

	created := make([]models.Barcode, 0, count)
	for i := 0; i < count; i++ {
		counter++
		b := build(orderNo, counter)
		inserted, err := scanBarcode(stmt.QueryRowContext(ctx, b.BarcodeSerial, orderID, b.StyleNumber, b.Size, b.Status))
		if err != nil {
			return nil, mapError(err, "barcode "+b.BarcodeSerial)
		}
		created = append(created, *inserted)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET last_barcode_serial = $2 WHERE id = $1`, orderID, counter); err != nil {
		return nil, fmt.Errorf("failed to save barcode counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit barcode batch: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) barcodeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM barcodes WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (d *DatabaseClient) UpdateBarcodeStatus(ctx context.Context, id uuid.UUID, from, to models.BarcodeStatus) (*models.Barcode, error) {
	b, err := scanBarcode(d.db.QueryRowContext(ctx, `
		UPDATE barcodes SET status = $3 WHERE id = $1 AND status = $2
		RETURNING `+barcodeColumns, id, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		exists, existsErr := d.barcodeExists(ctx, id)
		if existsErr != nil {
			return nil, fmt.Errorf("failed to check barcode: %w", existsErr)
		}
		if exists {
			return nil, fmt.Errorf("barcode %s is not %s: %w", id, from, store.ErrConflict)
		}
	}
	if err != nil {
		return nil, mapError(err, "barcode "+id.String())
	}
	return b, nil
}

func (d *DatabaseClient) CommitToStock(ctx context.Context, ids []uuid.UUID) (*models.StockCommit, []uuid.UUID, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		UPDATE barcodes SET status = 'COMMITTED_TO_STOCK'
		WHERE id = ANY($1::uuid[]) AND status = ANY($2::text[])
		RETURNING id
	`, pq.Array(uuidStrings(ids)), pq.Array(statusStrings(lifecycle.BarcodeSources(models.BarcodeCommittedToStock, lifecycle.StockCommit))))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to move barcodes to stock: %w", err)
	}
	var moved []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan moved barcode: %w", err)
		}
		moved = append(moved, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to move barcodes to stock: %w", err)
	}
	if len(moved) == 0 {
		return nil, nil, nil
	}

	commit := models.StockCommit{TotalItems: len(moved)}
	err = tx.QueryRowContext(ctx, `INSERT INTO stock_commits (total_items) VALUES ($1) RETURNING id, created_at`, commit.TotalItems).
		Scan(&commit.ID, &commit.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record stock commit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit stock: %w", err)
	}
	return &commit, moved, nil
}

func (d *DatabaseClient) ListStockCommits(ctx context.Context) ([]models.StockCommit, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, total_items, created_at FROM stock_commits ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock commits: %w", err)
	}
	defer rows.Close()

	var out []models.StockCommit
	for rows.Next() {
		var c models.StockCommit
		if err := rows.Scan(&c.ID, &c.TotalItems, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock commit: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DatabaseClient) ListMaterialRequests(ctx context.Context, f store.MaterialFilter) ([]models.MaterialRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.OrderID != nil {
		args = append(args, *f.OrderID)
		where = append(where, fmt.Sprintf("order_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	query := `SELECT ` + materialColumns + ` FROM material_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list material requests: %w", err)
	}
	defer rows.Close()

	var out []models.MaterialRequest
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material request: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (d *DatabaseClient) GetMaterialRequest(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	m, err := scanMaterial(d.db.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM material_requests WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "material request "+id.String())
	}
	return m, nil
}

func (d *DatabaseClient) CreateMaterialRequest(ctx context.Context, m models.MaterialRequest) (*models.MaterialRequest, error) {
	created, err := scanMaterial(d.db.QueryRowContext(ctx, `
		INSERT INTO material_requests (order_id, material_content, quantity_requested, quantity_approved, attachment_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+materialColumns,
		m.OrderID, m.MaterialContent, m.QuantityRequested, m.QuantityApproved, m.AttachmentURL, m.Status,
	))
	if err != nil {
		return nil, mapError(err, "order "+m.OrderID.String())
	}
	return created, nil
}

func (d *DatabaseClient) UpdateMaterialApproval(ctx context.Context, a store.MaterialApproval) (*models.MaterialRequest, error) {
	m, err := scanMaterial(d.db.QueryRowContext(ctx, `
		UPDATE material_requests SET quantity_approved = $3, status = $4
		WHERE id = $1 AND quantity_approved = $2
		RETURNING `+materialColumns,
		a.RequestID, a.ExpectedApproved, a.NewApproved, a.Status,
	))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := d.GetMaterialRequest(ctx, a.RequestID); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("material request %s approved total moved: %w", a.RequestID, store.ErrConflict)
	}
	if err != nil {
		return nil, mapError(err, "material request "+a.RequestID.String())
	}
	return m, nil
}

func (d *DatabaseClient) CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := pq.Array(uuidStrings(inv.BarcodeIDs))
	rows, err := tx.QueryContext(ctx, `SELECT id, barcode_serial, status FROM barcodes WHERE id = ANY($1::uuid[]) FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock barcodes: %w", err)
	}
	found := 0
	var conflict error
	for rows.Next() {
		var (
			id     uuid.UUID
			serial string
			status models.BarcodeStatus
		)
		if err := rows.Scan(&id, &serial, &status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan barcode: %w", err)
		}
		found++
		if conflict == nil && !lifecycle.CanTransitionBarcode(status, models.BarcodeSold, lifecycle.Checkout) {
			conflict = fmt.Errorf("barcode %s is %s: %w", serial, status, store.ErrConflict)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to lock barcodes: %w", err)
	}
	if found != len(inv.BarcodeIDs) {
		return nil, fmt.Errorf("invoice references unknown barcodes: %w", store.ErrNotFound)
	}
	if conflict != nil {
		return nil, conflict
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO invoices (invoice_no, customer_name, total_amount, barcode_ids)
		VALUES ($1, $2, $3, $4::uuid[])
		RETURNING id, created_at
	`, inv.InvoiceNo, inv.CustomerName, inv.TotalAmount, ids).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return nil, mapError(err, "invoice "+inv.InvoiceNo)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE barcodes SET status = 'SOLD', invoice_id = $1 WHERE id = ANY($2::uuid[])
	`, inv.ID, ids); err != nil {
		return nil, fmt.Errorf("failed to mark barcodes sold: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invoice: %w", err)
	}
	return &inv, nil
}

func (d *DatabaseClient) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, invoice_no, customer_name, total_amount, barcode_ids, created_at
		FROM invoices ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		var (
			inv models.Invoice
			ids []string
		)
		if err := rows.Scan(&inv.ID, &inv.InvoiceNo, &inv.CustomerName, &inv.TotalAmount, pq.Array(&ids), &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		for _, s := range ids {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("invoice %s has malformed barcode id: %w", inv.InvoiceNo, err)
			}
			inv.BarcodeIDs = append(inv.BarcodeIDs, id)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
