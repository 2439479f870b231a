package database

import (
	"context"

	"github.com/flightdesk/booking-backend/internal/models"
)

const refundColumns = `id, cancellation_id, refund_status, refund_date, updated_at`

// RefundRepository handles refund database operations
type RefundRepository struct {
	db DB
}

// NewRefundRepository creates a new refund repository
func NewRefundRepository(db DB) *RefundRepository {
	return &RefundRepository{db: db}
}

// Add inserts a refund with the given status
func (r *RefundRepository) Add(ctx context.Context, refund *models.Refund) error {
	query := `
		INSERT INTO refunds (cancellation_id, refund_status)
		VALUES ($1, $2)
		RETURNING ` + refundColumns

	if err := r.db.GetContext(ctx, refund, query, refund.CancellationID, refund.RefundStatus); err != nil {
		return wrap("create refund", err)
	}
	return nil
}

// Get retrieves a refund by ID
func (r *RefundRepository) Get(ctx context.Context, id int64) (*models.Refund, error) {
	var refund models.Refund
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`

	if err := r.db.GetContext(ctx, &refund, query, id); err != nil {
		return nil, wrap("get refund", err)
	}
	return &refund, nil
}

// GetAll lists every refund. An empty table yields ErrNotFound.
func (r *RefundRepository) GetAll(ctx context.Context) ([]models.Refund, error) {
	var refunds []models.Refund
	query := `SELECT ` + refundColumns + ` FROM refunds ORDER BY id`

	if err := r.db.SelectContext(ctx, &refunds, query); err != nil {
		return nil, wrap("list refunds", err)
	}
	if len(refunds) == 0 {
		return nil, ErrNotFound
	}
	return refunds, nil
}

// Update overwrites a refund's status
func (r *RefundRepository) Update(ctx context.Context, refund *models.Refund) error {
	query := `
		UPDATE refunds
		SET refund_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + refundColumns

	if err := r.db.GetContext(ctx, refund, query, refund.ID, refund.RefundStatus); err != nil {
		return wrap("update refund", err)
	}
	return nil
}

// Delete removes a refund and returns the deleted row
func (r *RefundRepository) Delete(ctx context.Context, id int64) (*models.Refund, error) {
	var refund models.Refund
	query := `DELETE FROM refunds WHERE id = $1 RETURNING ` + refundColumns

	if err := r.db.GetContext(ctx, &refund, query, id); err != nil {
		return nil, wrap("delete refund", err)
	}
	return &refund, nil
}
