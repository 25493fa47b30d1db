package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tintura-sst/internal/config"
	"tintura-sst/internal/lifecycle"
	"tintura-sst/internal/lock"
	"tintura-sst/internal/models"
	"tintura-sst/internal/quantity"
	"tintura-sst/internal/store"
)

type OrderService struct {
	store  store.Store
	locker lock.Locker
	logger *logrus.Logger
	now    func() time.Time
}

func NewOrderService(st store.Store, locker lock.Locker, logger *logrus.Logger) *OrderService {
	return &OrderService{
		store:  st,
		locker: locker,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OrderDetail is an order together with its planned-versus-actual view.
type OrderDetail struct {
	models.Order
	Reconciliation quantity.Comparison `json:"reconciliation"`
}

func validateBreakdown(rows []models.SizeRow) error {
	seen := map[string]bool{}
	for _, r := range rows {
		key := r.Key()
		if key == "" {
			return invalid("every size breakdown row needs a color")
		}
		if seen[key] {
			return invalid("color %q appears more than once", r.Color)
		}
		for _, f := range r.Fields() {
			if f.Value < 0 {
				return invalid("size %s of %s must not be negative", f.Size, r.Color)
			}
		}
		seen[key] = true
	}
	return nil
}

func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest, actor string) (*models.Order, error) {
	if strings.TrimSpace(req.StyleNumber) == "" {
		return nil, invalid("style_number is required")
	}
	if req.BoxCount < 0 {
		return nil, invalid("box_count must not be negative")
	}
	if req.TargetDeliveryDate != "" {
		if _, err := time.Parse("2006-01-02", req.TargetDeliveryDate); err != nil {
			return nil, invalid("target_delivery_date must be YYYY-MM-DD")
		}
	}
	if err := validateBreakdown(req.SizeBreakdown); err != nil {
		return nil, err
	}
	total := quantity.OrderTotal(req.SizeBreakdown)
	if total <= 0 {
		return nil, invalid("order quantity must be greater than zero")
	}
	if _, err := s.store.GetUnit(ctx, req.UnitID); err != nil {
		return nil, err
	}

	order := models.Order{
		UnitID:             req.UnitID,
		StyleNumber:        strings.TrimSpace(req.StyleNumber),
		Quantity:           total,
		BoxCount:           req.BoxCount,
		TargetDeliveryDate: req.TargetDeliveryDate,
		Description:        req.Description,
		AttachmentURL:      req.AttachmentURL,
		AttachmentName:     req.AttachmentName,
		SizeBreakdown:      req.SizeBreakdown,
		Status:             models.OrderAssigned,
	}
	created, err := s.store.CreateOrder(ctx, order, models.OrderLog{
		Kind:    models.LogStatusChange,
		Message: "Order created",
		Actor:   actor,
	})
	if err != nil {
		config.LogError(s.logger, "orders", "Create", "failed to create order", req.StyleNumber, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"order_no": created.OrderNo, "quantity": created.Quantity}).Info("order created")
	return created, nil
}

func (s *OrderService) List(ctx context.Context, unitID *int64) ([]models.Order, error) {
	return s.store.ListOrders(ctx, store.OrderFilter{UnitID: unitID})
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *o, Reconciliation: quantity.Reconcile(*o)}, nil
}

func (s *OrderService) Logs(ctx context.Context, id uuid.UUID) ([]models.OrderLog, error) {
	if _, err := s.store.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListOrderLogs(ctx, id)
}

func statusLog(from, to models.OrderStatus, actor string) models.OrderLog {
	return models.OrderLog{
		Kind:    models.LogStatusChange,
		Message: fmt.Sprintf("Status changed from %s to %s", from, to),
		Actor:   actor,
	}
}

// transition runs one status change under the order lock.
func (s *OrderService) transition(ctx context.Context, id uuid.UUID, plan func(o *models.Order) (store.OrderTransition, error)) (*models.Order, error) {
	release, err := s.locker.Acquire(ctx, lock.OrderKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	defer release()

	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := plan(o)
	if err != nil {
		return nil, err
	}
	t.OrderID = id
	t.From = o.Status

	updated, err := s.store.TransitionOrder(ctx, t)
	if err != nil {
		config.LogError(s.logger, "orders", "transition", "status change failed", logrus.Fields{"order_no": o.OrderNo, "to": t.To}, err)
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"order_no": updated.OrderNo,
		"from":     o.Status,
		"to":       updated.Status,
	}).Info("order status changed")
	return updated, nil
}

// Advance moves the order one step along the generic path. The completion
// step is refused here and must go through Complete.
func (s *OrderService) Advance(ctx context.Context, id uuid.UUID, actor string) (*models.Order, error) {
	return s.transition(ctx, id, func(o *models.Order) (store.OrderTransition, error) {
		next, ok := lifecycle.NextOrderStatus(o.Status)
		if !ok {
			return store.OrderTransition{}, invalid("order %s is %s and cannot advance", o.OrderNo, o.Status)
		}
		if !lifecycle.CanAdvance(o.Status) {
			return store.OrderTransition{}, invalid("order %s must be completed with a completion breakdown", o.OrderNo)
		}
		return store.OrderTransition{To: next, Log: statusLog(o.Status, next, actor)}, nil
	})
}

// RejectQC sends an order in QC back to production with a note.
func (s *OrderService) RejectQC(ctx context.Context, id uuid.UUID, note, actor string) (*models.Order, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, invalid("a rejection note is required")
	}
	return s.transition(ctx, id, func(o *models.Order) (store.OrderTransition, error) {
		if !lifecycle.CanTransitionOrder(o.Status, models.OrderStarted, lifecycle.QCReject) {
			return store.OrderTransition{}, invalid("order %s is %s, only orders in QC can be rejected", o.OrderNo, o.Status)
		}
		log := statusLog(o.Status, models.OrderStarted, actor)
		log.Message += ": " + note
		return store.OrderTransition{
			To:    models.OrderStarted,
			Apply: func(o *models.Order) { o.QCNotes = note },
			Log:   log,
		}, nil
	})
}

// Complete records the actual size breakdown and box count and closes the order.
func (s *OrderService) Complete(ctx context.Context, id uuid.UUID, completion []models.SizeRow, actualBoxCount int, actor string) (*models.Order, error) {
	if actualBoxCount < 0 {
		return nil, invalid("actual_box_count must not be negative")
	}
	if err := validateBreakdown(completion); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, func(o *models.Order) (store.OrderTransition, error) {
		if !lifecycle.CompletableFrom(o.Status) {
			return store.OrderTransition{}, invalid("order %s is %s and cannot be completed", o.OrderNo, o.Status)
		}
		planned := map[string]bool{}
		for _, r := range o.SizeBreakdown {
			planned[r.Key()] = true
		}
		for _, r := range completion {
			if !planned[r.Key()] {
				return store.OrderTransition{}, invalid("color %q is not part of order %s", r.Color, o.OrderNo)
			}
		}
		if len(completion) != len(planned) {
			return store.OrderTransition{}, invalid("every planned color needs a completion row")
		}
		rows := append([]models.SizeRow(nil), completion...)
		boxes := actualBoxCount
		return store.OrderTransition{
			To: models.OrderCompleted,
			Apply: func(o *models.Order) {
				o.CompletionBreakdown = rows
				o.ActualBoxCount = &boxes
			},
			Log: statusLog(o.Status, models.OrderCompleted, actor),
		}, nil
	})
}

func (s *OrderService) AddNote(ctx context.Context, id uuid.UUID, message, actor string) (*models.OrderLog, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("message is required")
	}
	return s.store.AppendOrderLog(ctx, models.OrderLog{
		OrderID:   id,
		Kind:      models.LogManualUpdate,
		Message:   message,
		Actor:     actor,
		CreatedAt: s.now(),
	})
}

func (s *OrderService) UpdateDetails(ctx context.Context, id uuid.UUID, patch models.OrderDetailsPatch) (*models.Order, error) {
	if patch.Empty() {
		return nil, invalid("nothing to update")
	}
	return s.store.UpdateOrderDetails(ctx, id, patch)
}
