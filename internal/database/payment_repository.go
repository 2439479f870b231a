package database

import (
	"context"

	"github.com/flightdesk/booking-backend/internal/models"
)

const paymentColumns = `id, booking_id, amount, payment_method, payment_date`

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Add inserts a payment outside any transaction
func (r *PaymentRepository) Add(ctx context.Context, payment *models.Payment) error {
	return r.AddWith(ctx, r.db, payment)
}

// AddWith inserts a payment through q. Payment confirmation passes the transaction
// that also adjusts the route's seats.
func (r *PaymentRepository) AddWith(ctx context.Context, q Queryer, payment *models.Payment) error {
	query := `
		INSERT INTO payments (booking_id, amount, payment_method)
		VALUES ($1, $2, $3)
		RETURNING ` + paymentColumns

	if err := q.GetContext(ctx, payment, query, payment.BookingID, payment.Amount, payment.PaymentMethod); err != nil {
		return wrap("create payment", err)
	}
	return nil
}

// Get retrieves a payment by ID
func (r *PaymentRepository) Get(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, wrap("get payment", err)
	}
	return &payment, nil
}

// GetByBookingID retrieves the payment recorded for a booking
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`

	if err := r.db.GetContext(ctx, &payment, query, bookingID); err != nil {
		return nil, wrap("get payment by booking", err)
	}
	return &payment, nil
}

// ExistsForBooking reports whether a booking has already been paid
func (r *PaymentRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM payments WHERE booking_id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, bookingID); err != nil {
		return false, wrap("check payment", err)
	}
	return exists, nil
}

// GetAll lists every payment. An empty table yields ErrNotFound.
func (r *PaymentRepository) GetAll(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY id`

	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, wrap("list payments", err)
	}
	if len(payments) == 0 {
		return nil, ErrNotFound
	}
	return payments, nil
}

// Update overwrites a payment's amount and method
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET amount = $2, payment_method = $3
		WHERE id = $1
		RETURNING ` + paymentColumns

	if err := r.db.GetContext(ctx, payment, query, payment.ID, payment.Amount, payment.PaymentMethod); err != nil {
		return wrap("update payment", err)
	}
	return nil
}

// Delete removes a payment and returns the deleted row. The seat ledger is not reconciled.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	query := `DELETE FROM payments WHERE id = $1 RETURNING ` + paymentColumns

	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, wrap("delete payment", err)
	}
	return &payment, nil
}
