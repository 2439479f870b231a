package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/config"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/events"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
)

// Runs one booking through book, pay, cancel and refund against a live database
// and prints the seat ledger after each step. Creates its own flight and route.
func main() {
	fmt.Println("Booking lifecycle smoke test")
	fmt.Println("==================================================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	publisher := events.NoopPublisher{}

	flightRepo := database.NewFlightRepository(db)
	routeRepo := database.NewRouteRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	cancellationRepo := database.NewCancellationRepository(db)
	refundRepo := database.NewRefundRepository(db)

	flightService := services.NewFlightService(flightRepo, routeRepo, database.NewSubRouteRepository(db), nil, logger)
	bookingService := services.NewBookingService(bookingRepo, flightRepo, routeRepo, publisher, logger)
	paymentService := services.NewPaymentService(db, paymentRepo, bookingRepo, routeRepo, cfg.Booking.EnforceSeatFloor, publisher, logger)
	cancellationService := services.NewCancellationService(db, cancellationRepo, bookingRepo, paymentRepo, routeRepo, publisher, logger)
	refundService := services.NewRefundService(refundRepo, cancellationRepo, publisher, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	flight, err := flightService.CreateFlight(ctx, &models.FlightRequest{
		FlightName:   fmt.Sprintf("SMOKE-%d", time.Now().Unix()),
		SeatCapacity: 150,
	})
	check("create flight", err)

	seats := 30
	departs := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	route, err := flightService.CreateRoute(ctx, &models.RouteRequest{
		FlightID:          flight.ID,
		DepartureLocation: "CMB",
		DepartureTime:     departs,
		ArrivalLocation:   "DXB",
		ArrivalTime:       departs.Add(4 * time.Hour),
		SeatsAvailable:    &seats,
		PricePerPerson:    100.0,
	})
	check("create route", err)
	fmt.Printf("Route %d: %d seats available\n", route.ID, route.SeatsAvailable)

	booking, err := bookingService.CreateBooking(ctx, &models.CreateBookingRequest{
		FlightID:    flight.ID,
		RouteID:     route.ID,
		NoOfPersons: 2,
	})
	check("create booking", err)
	fmt.Printf("Booking %d: total %.2f\n", booking.ID, booking.TotalAmount)

	payment, err := paymentService.CreatePayment(ctx, &models.CreatePaymentRequest{
		BookingID:     booking.ID,
		PaymentMethod: "card",
	})
	check("create payment", err)
	printSeats(ctx, flightService, route.ID, "after payment")

	cancellation, err := cancellationService.CreateCancellation(ctx, &models.CreateCancellationRequest{
		BookingID: booking.ID,
		PaymentID: payment.ID,
		Reason:    "smoke test",
	})
	check("create cancellation", err)
	printSeats(ctx, flightService, route.ID, "after cancellation")

	refund, err := refundService.CreateRefund(ctx, &models.CreateRefundRequest{CancellationID: cancellation.ID})
	check("create refund", err)
	fmt.Printf("Refund %d: %s\n", refund.ID, refund.RefundStatus)

	fmt.Println("==================================================")
	fmt.Println("Smoke test passed")
}

func printSeats(ctx context.Context, flightService *services.FlightService, routeID int64, label string) {
	route, err := flightService.GetRoute(ctx, routeID)
	check("get route", err)
	fmt.Printf("Route %d %s: %d seats available\n", routeID, label, route.SeatsAvailable)
}

func check(step string, err error) {
	if err != nil {
		log.Fatalf("%s failed: %v", step, err)
	}
}
