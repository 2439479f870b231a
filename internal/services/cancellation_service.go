package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/events"
	"github.com/flightdesk/booking-backend/internal/models"
)

// CancellationService cancels paid bookings and returns their seats to the route
type CancellationService struct {
	db               database.DB
	cancellationRepo *database.CancellationRepository
	bookingRepo      *database.BookingRepository
	paymentRepo      *database.PaymentRepository
	routeRepo        *database.RouteRepository
	publisher        events.Publisher
	logger           *logrus.Logger
}

// NewCancellationService creates a new cancellation service
func NewCancellationService(
	db database.DB,
	cancellationRepo *database.CancellationRepository,
	bookingRepo *database.BookingRepository,
	paymentRepo *database.PaymentRepository,
	routeRepo *database.RouteRepository,
	publisher events.Publisher,
	logger *logrus.Logger,
) *CancellationService {
	return &CancellationService{
		db:               db,
		cancellationRepo: cancellationRepo,
		bookingRepo:      bookingRepo,
		paymentRepo:      paymentRepo,
		routeRepo:        routeRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

// CreateCancellation restores the booking's seats and records the cancellation in one
// transaction. The payment must belong to the booking and a booking is cancelled once.
func (s *CancellationService) CreateCancellation(ctx context.Context, req *models.CreateCancellationRequest) (*models.Cancellation, error) {
	booking, err := s.bookingRepo.Get(ctx, req.BookingID)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("booking %d", req.BookingID))
	}

	payment, err := s.paymentRepo.Get(ctx, req.PaymentID)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("payment %d", req.PaymentID))
	}
	if payment.BookingID != booking.ID {
		return nil, validation("payment %d does not belong to booking %d", payment.ID, booking.ID)
	}

	cancelled, err := s.cancellationRepo.ExistsForBooking(ctx, booking.ID)
	if err != nil {
		return nil, fromRepository(err, "cancellation")
	}
	if cancelled {
		return nil, conflict("booking %d has already been cancelled", booking.ID)
	}

	cancellation := &models.Cancellation{
		BookingID: booking.ID,
		PaymentID: payment.ID,
		Reason:    req.Reason,
	}

	var route *models.Route
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		adjusted, err := s.routeRepo.AdjustSeats(ctx, tx, booking.RouteID, booking.NoOfPersons, false)
		if err != nil {
			return err
		}
		route = adjusted
		return s.cancellationRepo.AddWith(ctx, tx, cancellation)
	})
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("cancellation for booking %d", booking.ID))
	}

	s.logger.WithFields(logrus.Fields{
		"cancellation_id": cancellation.ID,
		"booking_id":      booking.ID,
		"route_id":        route.ID,
		"seats_available": route.SeatsAvailable,
	}).Info("Booking cancelled")

	publish(ctx, s.publisher, s.logger, events.Event{
		Type:           events.BookingCancelled,
		BookingID:      booking.ID,
		RouteID:        route.ID,
		PaymentID:      payment.ID,
		CancellationID: cancellation.ID,
		Seats:          booking.NoOfPersons,
		SeatsAvailable: &route.SeatsAvailable,
	})
	return cancellation, nil
}

// GetCancellation returns a cancellation by ID
func (s *CancellationService) GetCancellation(ctx context.Context, id int64) (*models.Cancellation, error) {
	c, err := s.cancellationRepo.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("cancellation %d", id))
	}
	return c, nil
}

// ListCancellations lists every cancellation. No cancellations is NotFound.
func (s *CancellationService) ListCancellations(ctx context.Context) ([]models.Cancellation, error) {
	cs, err := s.cancellationRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "cancellations")
	}
	return cs, nil
}
