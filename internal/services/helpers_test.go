package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/flightdesk/booking-backend/internal/cache"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/events"
	"github.com/flightdesk/booking-backend/internal/models"
)

func setupTestDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var (
	testTime = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	flightCols       = []string{"id", "flight_name", "seat_capacity", "created_at", "updated_at"}
	routeCols        = []string{"id", "flight_id", "departure_location", "departure_time", "arrival_location", "arrival_time", "seats_available", "price_per_person", "no_of_stops", "created_at", "updated_at"}
	bookingCols      = []string{"id", "flight_id", "route_id", "user_id", "no_of_persons", "total_amount", "booking_date"}
	paymentCols      = []string{"id", "booking_id", "amount", "payment_method", "payment_date"}
	cancellationCols = []string{"id", "booking_id", "payment_id", "reason", "cancellation_date"}
	refundCols       = []string{"id", "cancellation_id", "refund_status", "refund_date", "updated_at"}
	userCols         = []string{"id", "username", "email", "role", "created_at", "updated_at"}
)

func flightRows(id int64, capacity int) *sqlmock.Rows {
	return sqlmock.NewRows(flightCols).AddRow(id, "FD101", capacity, testTime, testTime)
}

func routeRows(id, flightID int64, seats int, price float64) *sqlmock.Rows {
	return sqlmock.NewRows(routeCols).AddRow(
		id, flightID, "CMB", testTime, "DXB", testTime.Add(4*time.Hour), seats, price, 0, testTime, testTime,
	)
}

func bookingRows(id, flightID, routeID int64, persons int, total float64) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(id, flightID, routeID, nil, persons, total, testTime)
}

func paymentRows(id, bookingID int64, amount float64) *sqlmock.Rows {
	return sqlmock.NewRows(paymentCols).AddRow(id, bookingID, amount, "card", testTime)
}

func existsRows(exists bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// memoryFlightCache is an in-process FlightCache
type memoryFlightCache struct {
	mu      sync.Mutex
	flights map[int64]models.Flight
	gets    int
}

func newMemoryFlightCache() *memoryFlightCache {
	return &memoryFlightCache{flights: map[int64]models.Flight{}}
}

func (c *memoryFlightCache) GetFlight(_ context.Context, id int64) (*models.Flight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	flight, ok := c.flights[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &flight, nil
}

func (c *memoryFlightCache) SetFlight(_ context.Context, flight *models.Flight) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights[flight.ID] = *flight
	return nil
}

func (c *memoryFlightCache) InvalidateFlight(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.flights, id)
	return nil
}
