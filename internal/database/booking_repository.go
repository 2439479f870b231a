package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/flightdesk/booking-backend/internal/models"
)

const bookingColumns = `id, flight_id, route_id, user_id, no_of_persons, total_amount, booking_date`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Add inserts a booking. Seats are not touched here; they are consumed on payment.
func (r *BookingRepository) Add(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (flight_id, route_id, user_id, no_of_persons, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + bookingColumns

	err := r.db.GetContext(ctx, booking, query,
		booking.FlightID, booking.RouteID, booking.UserID, booking.NoOfPersons, booking.TotalAmount,
	)
	if err != nil {
		return wrap("create booking", err)
	}
	return nil
}

// Get retrieves a booking by ID
func (r *BookingRepository) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return r.GetWith(ctx, r.db, id)
}

// GetWith retrieves a booking through q, typically a transaction
func (r *BookingRepository) GetWith(ctx context.Context, q Queryer, id int64) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	if err := q.GetContext(ctx, &booking, query, id); err != nil {
		return nil, wrap("get booking", err)
	}
	return &booking, nil
}

// GetAll lists every booking. An empty table yields ErrNotFound.
func (r *BookingRepository) GetAll(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY id`

	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, wrap("list bookings", err)
	}
	if len(bookings) == 0 {
		return nil, ErrNotFound
	}
	return bookings, nil
}

// ListByUser lists a user's bookings, newest first
func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY booking_date DESC, id DESC`

	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, wrap("list bookings by user", err)
	}
	return bookings, nil
}

// Update overwrites a booking's party size and total
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET no_of_persons = $2, total_amount = $3
		WHERE id = $1
		RETURNING ` + bookingColumns

	if err := r.db.GetContext(ctx, booking, query, booking.ID, booking.NoOfPersons, booking.TotalAmount); err != nil {
		return wrap("update booking", err)
	}
	return nil
}

// Delete removes a booking and returns the deleted row. The seat ledger is not reconciled.
func (r *BookingRepository) Delete(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	query := `DELETE FROM bookings WHERE id = $1 RETURNING ` + bookingColumns

	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, wrap("delete booking", err)
	}
	return &booking, nil
}
