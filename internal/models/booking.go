package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Booking reserves NoOfPersons seats on a route. It is priced at creation but
// consumes no seats until a payment is recorded against it.
type Booking struct {
	ID          int64      `json:"id" db:"id"`
	FlightID    int64      `json:"flight_id" db:"flight_id"`
	RouteID     int64      `json:"route_id" db:"route_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	NoOfPersons int        `json:"no_of_persons" db:"no_of_persons"`
	TotalAmount float64    `json:"total_amount" db:"total_amount"`
	BookingDate time.Time  `json:"booking_date" db:"booking_date"`
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	FlightID    int64      `json:"flight_id" binding:"required"`
	RouteID     int64      `json:"route_id" binding:"required"`
	NoOfPersons int        `json:"no_of_persons"`
	UserID      *uuid.UUID `json:"-"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.NoOfPersons < 1 {
		return errors.New("no_of_persons must be at least 1")
	}
	return nil
}

// TotalFor prices a booking of persons seats on the route
func (r *Route) TotalFor(persons int) float64 {
	return r.PricePerPerson * float64(persons)
}
