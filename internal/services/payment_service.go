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

// PaymentService confirms bookings. Recording a payment is the only point at which
// seats are taken from a route.
type PaymentService struct {
	db               database.DB
	paymentRepo      *database.PaymentRepository
	bookingRepo      *database.BookingRepository
	routeRepo        *database.RouteRepository
	enforceSeatFloor bool
	publisher        events.Publisher
	logger           *logrus.Logger
}

// NewPaymentService creates a new payment service. With enforceSeatFloor unset a
// payment may drive seats_available negative.
func NewPaymentService(
	db database.DB,
	paymentRepo *database.PaymentRepository,
	bookingRepo *database.BookingRepository,
	routeRepo *database.RouteRepository,
	enforceSeatFloor bool,
	publisher events.Publisher,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		db:               db,
		paymentRepo:      paymentRepo,
		bookingRepo:      bookingRepo,
		routeRepo:        routeRepo,
		enforceSeatFloor: enforceSeatFloor,
		publisher:        publisher,
		logger:           logger,
	}
}

// CreatePayment records a payment for the booking's total and decrements the route's
// seats by the booking's party size in the same transaction
func (s *PaymentService) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, validation("%s", err.Error())
	}

	booking, err := s.bookingRepo.Get(ctx, req.BookingID)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("booking %d", req.BookingID))
	}

	paid, err := s.paymentRepo.ExistsForBooking(ctx, booking.ID)
	if err != nil {
		return nil, fromRepository(err, "payment")
	}
	if paid {
		return nil, conflict("booking %d has already been paid", booking.ID)
	}

	payment := &models.Payment{
		BookingID:     booking.ID,
		Amount:        booking.TotalAmount,
		PaymentMethod: req.PaymentMethod,
	}

	var route *models.Route
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.paymentRepo.AddWith(ctx, tx, payment); err != nil {
			return err
		}
		adjusted, err := s.routeRepo.AdjustSeats(ctx, tx, booking.RouteID, -booking.NoOfPersons, s.enforceSeatFloor)
		if err != nil {
			return err
		}
		route = adjusted
		return nil
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"route_id":   booking.RouteID,
			"error":      err.Error(),
		}).Warn("Payment rejected")
		return nil, fromRepository(err, fmt.Sprintf("payment for booking %d", booking.ID))
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":      payment.ID,
		"booking_id":      booking.ID,
		"route_id":        route.ID,
		"seats_available": route.SeatsAvailable,
	}).Info("Payment confirmed")

	publish(ctx, s.publisher, s.logger, events.Event{
		Type:           events.BookingPaymentConfirmed,
		BookingID:      booking.ID,
		RouteID:        route.ID,
		PaymentID:      payment.ID,
		Seats:          booking.NoOfPersons,
		SeatsAvailable: &route.SeatsAvailable,
	})
	return payment, nil
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("payment %d", id))
	}
	return payment, nil
}

// ListPayments lists every payment. No payments is NotFound.
func (s *PaymentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "payments")
	}
	return payments, nil
}

// DeletePayment removes a payment. The seats it consumed are not returned.
func (s *PaymentService) DeletePayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.Delete(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("payment %d", id))
	}
	return payment, nil
}
