package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/events"
	"github.com/flightdesk/booking-backend/internal/models"
)

// RefundService opens refunds for cancellations and tracks their status
type RefundService struct {
	refundRepo       *database.RefundRepository
	cancellationRepo *database.CancellationRepository
	publisher        events.Publisher
	logger           *logrus.Logger
}

// NewRefundService creates a new refund service
func NewRefundService(
	refundRepo *database.RefundRepository,
	cancellationRepo *database.CancellationRepository,
	publisher events.Publisher,
	logger *logrus.Logger,
) *RefundService {
	return &RefundService{
		refundRepo:       refundRepo,
		cancellationRepo: cancellationRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

// CreateRefund opens a refund in the Initiated state for an existing cancellation
func (s *RefundService) CreateRefund(ctx context.Context, req *models.CreateRefundRequest) (*models.Refund, error) {
	if _, err := s.cancellationRepo.Get(ctx, req.CancellationID); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("cancellation %d", req.CancellationID))
	}

	refund := &models.Refund{
		CancellationID: req.CancellationID,
		RefundStatus:   models.RefundStatusInitiated,
	}
	if err := s.refundRepo.Add(ctx, refund); err != nil {
		return nil, fromRepository(err, "refund")
	}

	s.logger.WithFields(logrus.Fields{
		"refund_id":       refund.ID,
		"cancellation_id": refund.CancellationID,
	}).Info("Refund initiated")

	publish(ctx, s.publisher, s.logger, events.Event{
		Type:           events.RefundInitiated,
		CancellationID: refund.CancellationID,
		RefundID:       refund.ID,
		Status:         string(refund.RefundStatus),
	})
	return refund, nil
}

// UpdateRefund sets a refund's status. Any known status may follow any other.
// A missing refund is NotFound whatever status was asked for.
func (s *RefundService) UpdateRefund(ctx context.Context, id int64, status models.RefundStatus) (*models.Refund, error) {
	if _, err := s.refundRepo.Get(ctx, id); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("refund %d", id))
	}
	if !status.IsValid() {
		return nil, validation("invalid refund_status %q", status)
	}

	refund := &models.Refund{ID: id, RefundStatus: status}
	if err := s.refundRepo.Update(ctx, refund); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("refund %d", id))
	}

	publish(ctx, s.publisher, s.logger, events.Event{
		Type:           events.RefundStatusChanged,
		CancellationID: refund.CancellationID,
		RefundID:       refund.ID,
		Status:         string(refund.RefundStatus),
	})
	return refund, nil
}

// GetRefund returns a refund by ID
func (s *RefundService) GetRefund(ctx context.Context, id int64) (*models.Refund, error) {
	refund, err := s.refundRepo.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("refund %d", id))
	}
	return refund, nil
}

// ListRefunds lists every refund. No refunds is NotFound.
func (s *RefundService) ListRefunds(ctx context.Context) ([]models.Refund, error) {
	refunds, err := s.refundRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "refunds")
	}
	return refunds, nil
}
