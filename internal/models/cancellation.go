package models

import (
	"time"
)

// Cancellation reverses a paid booking and returns its seats to the route
type Cancellation struct {
	ID               int64     `json:"id" db:"id"`
	BookingID        int64     `json:"booking_id" db:"booking_id"`
	PaymentID        int64     `json:"payment_id" db:"payment_id"`
	Reason           string    `json:"reason" db:"reason"`
	CancellationDate time.Time `json:"cancellation_date" db:"cancellation_date"`
}

// CreateCancellationRequest represents the request to cancel a booking
type CreateCancellationRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	PaymentID int64  `json:"payment_id" binding:"required"`
	Reason    string `json:"reason"`
}
