package models

import (
	"errors"
	"strings"
	"time"
)

// Payment confirms a booking. Recording it commits the booking's seats against the route.
type Payment struct {
	ID            int64     `json:"id" db:"id"`
	BookingID     int64     `json:"booking_id" db:"booking_id"`
	Amount        float64   `json:"amount" db:"amount"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	PaymentDate   time.Time `json:"payment_date" db:"payment_date"`
}

// CreatePaymentRequest represents the request to pay for a booking.
// The amount always comes from the booking.
type CreatePaymentRequest struct {
	BookingID     int64  `json:"booking_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// Validate validates the create payment request
func (r *CreatePaymentRequest) Validate() error {
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return errors.New("payment_method is required")
	}
	return nil
}
