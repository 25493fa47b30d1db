package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tintura-sst/internal/config"
	"tintura-sst/internal/lock"
	"tintura-sst/internal/models"
	"tintura-sst/internal/quantity"
	"tintura-sst/internal/receipt"
	"tintura-sst/internal/store"
)

type MaterialService struct {
	store  store.Store
	locker lock.Locker
	logger *logrus.Logger
	now    func() time.Time
}

func NewMaterialService(st store.Store, locker lock.Locker, logger *logrus.Logger) *MaterialService {
	return &MaterialService{
		store:  st,
		locker: locker,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type ApprovalResult struct {
	Request models.MaterialRequest `json:"request"`
	Receipt receipt.Receipt        `json:"receipt"`
}

func (s *MaterialService) Create(ctx context.Context, orderID uuid.UUID, content string, requested int, attachmentURL string) (*models.MaterialRequest, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("material_content is required")
	}
	if requested <= 0 {
		return nil, invalid("quantity_requested must be greater than zero")
	}
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	m, err := s.store.CreateMaterialRequest(ctx, models.MaterialRequest{
		OrderID:           orderID,
		MaterialContent:   content,
		QuantityRequested: requested,
		AttachmentURL:     attachmentURL,
		Status:            models.MaterialPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create material request: %w", err)
	}
	return m, nil
}

func (s *MaterialService) List(ctx context.Context, orderID *uuid.UUID, status models.MaterialStatus) ([]models.MaterialRequest, error) {
	f := store.MaterialFilter{OrderID: orderID}
	if status != "" {
		if !status.Valid() {
			return nil, invalid("unknown material status %q", status)
		}
		f.Statuses = []models.MaterialStatus{status}
	}
	return s.store.ListMaterialRequests(ctx, f)
}

// Approve adds qty to the approved total. Approving zero on a request with
// nothing approved yet is an explicit rejection.
func (s *MaterialService) Approve(ctx context.Context, id uuid.UUID, qty int) (*ApprovalResult, error) {
	if qty < 0 {
		return nil, invalid("approval quantity must not be negative")
	}

	release, err := s.locker.Acquire(ctx, lock.MaterialKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock material request: %w", err)
	}
	defer release()

	req, err := s.store.GetMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	newTotal := req.QuantityApproved + qty
	if newTotal > req.QuantityRequested {
		return nil, invalid("approval exceeds remaining balance of %d", req.Remaining())
	}
	if qty == 0 && (req.Status == models.MaterialRejected || req.QuantityApproved > 0) {
		return nil, invalid("request is already %s, nothing to approve", req.Status)
	}
	status := quantity.ApprovalStatus(req.QuantityRequested, newTotal, qty == 0 && req.QuantityApproved == 0)

	updated, err := s.store.UpdateMaterialApproval(ctx, store.MaterialApproval{
		RequestID:        id,
		ExpectedApproved: req.QuantityApproved,
		NewApproved:      newTotal,
		Status:           status,
	})
	if err != nil {
		if !errors.Is(err, store.ErrConflict) {
			config.LogError(s.logger, "materials", "Approve", "approval write failed", logrus.Fields{"request_id": id}, err)
		}
		return nil, err
	}

	var order *models.Order
	if o, err := s.store.GetOrder(ctx, req.OrderID); err == nil {
		order = o
	}
	s.logger.WithFields(logrus.Fields{
		"request_id": id,
		"delta":      qty,
		"approved":   updated.QuantityApproved,
		"status":     updated.Status,
	}).Info("material approval recorded")

	return &ApprovalResult{
		Request: *updated,
		Receipt: receipt.MaterialApproval(*updated, order, qty, s.now()),
	}, nil
}
