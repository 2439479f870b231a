package models

import (
	"errors"
	"strings"
	"time"
)

// Flight represents an aircraft service with a fixed seat capacity
type Flight struct {
	ID           int64     `json:"id" db:"id"`
	FlightName   string    `json:"flight_name" db:"flight_name"`
	SeatCapacity int       `json:"seat_capacity" db:"seat_capacity"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// FlightRequest is used for both creating and updating a flight
type FlightRequest struct {
	FlightName   string `json:"flight_name" binding:"required"`
	SeatCapacity int    `json:"seat_capacity" binding:"required"`
}

// Validate validates the flight request
func (r *FlightRequest) Validate() error {
	if strings.TrimSpace(r.FlightName) == "" {
		return errors.New("flight_name is required")
	}
	if r.SeatCapacity <= 0 {
		return errors.New("seat_capacity must be at least 1")
	}
	return nil
}
