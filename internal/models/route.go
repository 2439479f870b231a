package models

import (
	"errors"
	"strings"
	"time"
)

// Route is a scheduled leg of a flight. SeatsAvailable is the seat ledger counter.
type Route struct {
	ID                int64     `json:"id" db:"id"`
	FlightID          int64     `json:"flight_id" db:"flight_id"`
	DepartureLocation string    `json:"departure_location" db:"departure_location"`
	DepartureTime     time.Time `json:"departure_time" db:"departure_time"`
	ArrivalLocation   string    `json:"arrival_location" db:"arrival_location"`
	ArrivalTime       time.Time `json:"arrival_time" db:"arrival_time"`
	SeatsAvailable    int       `json:"seats_available" db:"seats_available"`
	PricePerPerson    float64   `json:"price_per_person" db:"price_per_person"`
	NoOfStops         int       `json:"no_of_stops" db:"no_of_stops"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// RouteRequest represents the request to create or update a route.
// SeatsAvailable defaults to the flight's seat capacity when omitted on create.
type RouteRequest struct {
	FlightID          int64     `json:"flight_id" binding:"required"`
	DepartureLocation string    `json:"departure_location" binding:"required"`
	DepartureTime     time.Time `json:"departure_time" binding:"required"`
	ArrivalLocation   string    `json:"arrival_location" binding:"required"`
	ArrivalTime       time.Time `json:"arrival_time" binding:"required"`
	SeatsAvailable    *int      `json:"seats_available,omitempty"`
	PricePerPerson    float64   `json:"price_per_person" binding:"required"`
	NoOfStops         int       `json:"no_of_stops"`
}

// Validate validates the route request
func (r *RouteRequest) Validate() error {
	if err := validateLeg(r.DepartureLocation, r.ArrivalLocation, r.DepartureTime, r.ArrivalTime); err != nil {
		return err
	}
	if r.PricePerPerson <= 0 {
		return errors.New("price_per_person must be greater than zero")
	}
	if r.NoOfStops < 0 {
		return errors.New("no_of_stops cannot be negative")
	}
	if r.SeatsAvailable != nil && *r.SeatsAvailable < 0 {
		return errors.New("seats_available cannot be negative")
	}
	return nil
}

// SubRoute is a descriptive intermediate stop of a route. It carries no seat accounting.
type SubRoute struct {
	ID                int64     `json:"id" db:"id"`
	RouteID           int64     `json:"route_id" db:"route_id"`
	FlightID          int64     `json:"flight_id" db:"flight_id"`
	DepartureLocation string    `json:"departure_location" db:"departure_location"`
	DepartureTime     time.Time `json:"departure_time" db:"departure_time"`
	ArrivalLocation   string    `json:"arrival_location" db:"arrival_location"`
	ArrivalTime       time.Time `json:"arrival_time" db:"arrival_time"`
}

// SubRouteRequest represents the request to create or update a sub-route
type SubRouteRequest struct {
	RouteID           int64     `json:"route_id" binding:"required"`
	FlightID          int64     `json:"flight_id" binding:"required"`
	DepartureLocation string    `json:"departure_location" binding:"required"`
	DepartureTime     time.Time `json:"departure_time" binding:"required"`
	ArrivalLocation   string    `json:"arrival_location" binding:"required"`
	ArrivalTime       time.Time `json:"arrival_time" binding:"required"`
}

// Validate validates the sub-route request
func (r *SubRouteRequest) Validate() error {
	return validateLeg(r.DepartureLocation, r.ArrivalLocation, r.DepartureTime, r.ArrivalTime)
}

func validateLeg(from, to string, departs, arrives time.Time) error {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return errors.New("departure_location and arrival_location are required")
	}
	if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return errors.New("departure and arrival locations must differ")
	}
	if !arrives.After(departs) {
		return errors.New("arrival_time must be after departure_time")
	}
	return nil
}
