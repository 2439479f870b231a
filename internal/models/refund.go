package models

import (
	"time"
)

// RefundStatus represents the processing state of a refund
type RefundStatus string

const (
	RefundStatusInitiated RefundStatus = "Initiated"
	RefundStatusApproved  RefundStatus = "Approved"
	RefundStatusRejected  RefundStatus = "Rejected"
	RefundStatusCompleted RefundStatus = "Completed"
)

// IsValid reports whether s is one of the known refund statuses
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusInitiated, RefundStatusApproved, RefundStatusRejected, RefundStatusCompleted:
		return true
	}
	return false
}

// Refund tracks money owed back for a cancellation
type Refund struct {
	ID             int64        `json:"id" db:"id"`
	CancellationID int64        `json:"cancellation_id" db:"cancellation_id"`
	RefundStatus   RefundStatus `json:"refund_status" db:"refund_status"`
	RefundDate     time.Time    `json:"refund_date" db:"refund_date"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// CreateRefundRequest represents the request to open a refund
type CreateRefundRequest struct {
	CancellationID int64 `json:"cancellation_id" binding:"required"`
}

// UpdateRefundRequest represents the request to change a refund's status
type UpdateRefundRequest struct {
	RefundStatus RefundStatus `json:"refund_status" binding:"required"`
}
