package database

import (
	"context"

	"github.com/flightdesk/booking-backend/internal/models"
)

const cancellationColumns = `id, booking_id, payment_id, reason, cancellation_date`

// CancellationRepository handles cancellation database operations
type CancellationRepository struct {
	db DB
}

// NewCancellationRepository creates a new cancellation repository
func NewCancellationRepository(db DB) *CancellationRepository {
	return &CancellationRepository{db: db}
}

// Add inserts a cancellation outside any transaction
func (r *CancellationRepository) Add(ctx context.Context, c *models.Cancellation) error {
	return r.AddWith(ctx, r.db, c)
}

// AddWith inserts a cancellation through q
func (r *CancellationRepository) AddWith(ctx context.Context, q Queryer, c *models.Cancellation) error {
	query := `
		INSERT INTO cancellations (booking_id, payment_id, reason)
		VALUES ($1, $2, $3)
		RETURNING ` + cancellationColumns

	if err := q.GetContext(ctx, c, query, c.BookingID, c.PaymentID, c.Reason); err != nil {
		return wrap("create cancellation", err)
	}
	return nil
}

// Get retrieves a cancellation by ID
func (r *CancellationRepository) Get(ctx context.Context, id int64) (*models.Cancellation, error) {
	var c models.Cancellation
	query := `SELECT ` + cancellationColumns + ` FROM cancellations WHERE id = $1`

	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, wrap("get cancellation", err)
	}
	return &c, nil
}

// ExistsForBooking reports whether a booking has already been cancelled
func (r *CancellationRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM cancellations WHERE booking_id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, bookingID); err != nil {
		return false, wrap("check cancellation", err)
	}
	return exists, nil
}

// GetAll lists every cancellation. An empty table yields ErrNotFound.
func (r *CancellationRepository) GetAll(ctx context.Context) ([]models.Cancellation, error) {
	var cs []models.Cancellation
	query := `SELECT ` + cancellationColumns + ` FROM cancellations ORDER BY id`

	if err := r.db.SelectContext(ctx, &cs, query); err != nil {
		return nil, wrap("list cancellations", err)
	}
	if len(cs) == 0 {
		return nil, ErrNotFound
	}
	return cs, nil
}

// Update overwrites a cancellation's reason
func (r *CancellationRepository) Update(ctx context.Context, c *models.Cancellation) error {
	query := `
		UPDATE cancellations
		SET reason = $2
		WHERE id = $1
		RETURNING ` + cancellationColumns

	if err := r.db.GetContext(ctx, c, query, c.ID, c.Reason); err != nil {
		return wrap("update cancellation", err)
	}
	return nil
}

// Delete removes a cancellation and returns the deleted row
func (r *CancellationRepository) Delete(ctx context.Context, id int64) (*models.Cancellation, error) {
	var c models.Cancellation
	query := `DELETE FROM cancellations WHERE id = $1 RETURNING ` + cancellationColumns

	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, wrap("delete cancellation", err)
	}
	return &c, nil
}
