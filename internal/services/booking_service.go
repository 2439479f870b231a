package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/events"
	"github.com/flightdesk/booking-backend/internal/models"
)

// BookingService prices and records bookings. Creating a booking never touches the
// seat ledger; seats are consumed when the booking is paid, so two unpaid bookings
// may together exceed a route's remaining seats.
type BookingService struct {
	bookingRepo *database.BookingRepository
	flightRepo  *database.FlightRepository
	routeRepo   *database.RouteRepository
	publisher   events.Publisher
	logger      *logrus.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo *database.BookingRepository,
	flightRepo *database.FlightRepository,
	routeRepo *database.RouteRepository,
	publisher events.Publisher,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		flightRepo:  flightRepo,
		routeRepo:   routeRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateBooking validates the flight and route, prices the booking and stores it
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, validation("%s", err.Error())
	}

	if _, err := s.flightRepo.Get(ctx, req.FlightID); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("flight %d", req.FlightID))
	}

	route, err := s.routeRepo.Get(ctx, req.RouteID)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("route %d", req.RouteID))
	}
	if route.FlightID != req.FlightID {
		return nil, validation("route %d does not belong to flight %d", req.RouteID, req.FlightID)
	}

	booking := &models.Booking{
		FlightID:    req.FlightID,
		RouteID:     req.RouteID,
		UserID:      req.UserID,
		NoOfPersons: req.NoOfPersons,
		TotalAmount: route.TotalFor(req.NoOfPersons),
	}
	if err := s.bookingRepo.Add(ctx, booking); err != nil {
		return nil, fromRepository(err, "booking")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":    booking.ID,
		"route_id":      booking.RouteID,
		"no_of_persons": booking.NoOfPersons,
		"total_amount":  booking.TotalAmount,
	}).Info("Booking created")

	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.BookingCreated,
		BookingID: booking.ID,
		RouteID:   booking.RouteID,
		Seats:     booking.NoOfPersons,
	})
	return booking, nil
}

// GetBooking returns a booking by ID
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("booking %d", id))
	}
	return booking, nil
}

// ListBookings lists every booking. No bookings is NotFound.
func (s *BookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "bookings")
	}
	return bookings, nil
}

// ListBookingsByUser lists the bookings owned by a user
func (s *BookingService) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fromRepository(err, "bookings")
	}
	return bookings, nil
}

// DeleteBooking removes a booking. Seats consumed by a payment are not returned.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.Delete(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("booking %d", id))
	}
	return booking, nil
}

// publish sends a lifecycle event after a commit. Failures are logged, never returned.
func publish(ctx context.Context, publisher events.Publisher, logger *logrus.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WithError(err).WithField("event", event.Type).Warn("Failed to publish lifecycle event")
	}
}
