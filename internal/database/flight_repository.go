package database

import (
	"context"

	"github.com/flightdesk/booking-backend/internal/models"
)

const flightColumns = `id, flight_name, seat_capacity, created_at, updated_at`

// FlightRepository handles flight database operations
type FlightRepository struct {
	db DB
}

// NewFlightRepository creates a new flight repository
func NewFlightRepository(db DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// Add inserts a flight and fills in its generated fields
func (r *FlightRepository) Add(ctx context.Context, flight *models.Flight) error {
	query := `
		INSERT INTO flights (flight_name, seat_capacity)
		VALUES ($1, $2)
		RETURNING ` + flightColumns

	if err := r.db.GetContext(ctx, flight, query, flight.FlightName, flight.SeatCapacity); err != nil {
		return wrap("create flight", err)
	}
	return nil
}

// Get retrieves a flight by ID
func (r *FlightRepository) Get(ctx context.Context, id int64) (*models.Flight, error) {
	var flight models.Flight
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`

	if err := r.db.GetContext(ctx, &flight, query, id); err != nil {
		return nil, wrap("get flight", err)
	}
	return &flight, nil
}

// GetAll lists every flight. An empty table yields ErrNotFound.
func (r *FlightRepository) GetAll(ctx context.Context) ([]models.Flight, error) {
	var flights []models.Flight
	query := `SELECT ` + flightColumns + ` FROM flights ORDER BY id`

	if err := r.db.SelectContext(ctx, &flights, query); err != nil {
		return nil, wrap("list flights", err)
	}
	if len(flights) == 0 {
		return nil, ErrNotFound
	}
	return flights, nil
}

// Update overwrites a flight's name and capacity. The row is left alone, and ErrNotFound
// returned, when the new capacity is below seats_available on any of the flight's routes.
func (r *FlightRepository) Update(ctx context.Context, flight *models.Flight) error {
	query := `
		UPDATE flights
		SET flight_name = $2, seat_capacity = $3, updated_at = NOW()
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM flight_routes
			WHERE flight_id = $1 AND seats_available > $3
		  )
		RETURNING ` + flightColumns

	if err := r.db.GetContext(ctx, flight, query, flight.ID, flight.FlightName, flight.SeatCapacity); err != nil {
		return wrap("update flight", err)
	}
	return nil
}

// Delete removes a flight and returns the deleted row
func (r *FlightRepository) Delete(ctx context.Context, id int64) (*models.Flight, error) {
	var flight models.Flight
	query := `DELETE FROM flights WHERE id = $1 RETURNING ` + flightColumns

	if err := r.db.GetContext(ctx, &flight, query, id); err != nil {
		return nil, wrap("delete flight", err)
	}
	return &flight, nil
}
