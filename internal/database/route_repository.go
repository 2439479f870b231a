package database

import (
	"context"
	"errors"

	"github.com/flightdesk/booking-backend/internal/models"
)

const routeColumns = `id, flight_id, departure_location, departure_time, arrival_location,
	arrival_time, seats_available, price_per_person, no_of_stops, created_at, updated_at`

// RouteRepository handles flight route database operations, including the seat ledger
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Add inserts a route and fills in its generated fields
func (r *RouteRepository) Add(ctx context.Context, route *models.Route) error {
	query := `
		INSERT INTO flight_routes (
			flight_id, departure_location, departure_time, arrival_location,
			arrival_time, seats_available, price_per_person, no_of_stops
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + routeColumns

	err := r.db.GetContext(ctx, route, query,
		route.FlightID, route.DepartureLocation, route.DepartureTime, route.ArrivalLocation,
		route.ArrivalTime, route.SeatsAvailable, route.PricePerPerson, route.NoOfStops,
	)
	if err != nil {
		return wrap("create route", err)
	}
	return nil
}

// Get retrieves a route by ID
func (r *RouteRepository) Get(ctx context.Context, id int64) (*models.Route, error) {
	var route models.Route
	query := `SELECT ` + routeColumns + ` FROM flight_routes WHERE id = $1`

	if err := r.db.GetContext(ctx, &route, query, id); err != nil {
		return nil, wrap("get route", err)
	}
	return &route, nil
}

// GetAll lists every route. An empty table yields ErrNotFound.
func (r *RouteRepository) GetAll(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	query := `SELECT ` + routeColumns + ` FROM flight_routes ORDER BY id`

	if err := r.db.SelectContext(ctx, &routes, query); err != nil {
		return nil, wrap("list routes", err)
	}
	if len(routes) == 0 {
		return nil, ErrNotFound
	}
	return routes, nil
}

// ListByFlight lists the routes flown by a flight, ordered by departure
func (r *RouteRepository) ListByFlight(ctx context.Context, flightID int64) ([]models.Route, error) {
	routes := []models.Route{}
	query := `SELECT ` + routeColumns + ` FROM flight_routes WHERE flight_id = $1 ORDER BY departure_time, id`

	if err := r.db.SelectContext(ctx, &routes, query, flightID); err != nil {
		return nil, wrap("list routes by flight", err)
	}
	return routes, nil
}

// Update overwrites every mutable route column, including seats_available
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	query := `
		UPDATE flight_routes
		SET flight_id = $2, departure_location = $3, departure_time = $4,
		    arrival_location = $5, arrival_time = $6, seats_available = $7,
		    price_per_person = $8, no_of_stops = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + routeColumns

	err := r.db.GetContext(ctx, route, query,
		route.ID, route.FlightID, route.DepartureLocation, route.DepartureTime,
		route.ArrivalLocation, route.ArrivalTime, route.SeatsAvailable,
		route.PricePerPerson, route.NoOfStops,
	)
	if err != nil {
		return wrap("update route", err)
	}
	return nil
}

// Delete removes a route and returns the deleted row
func (r *RouteRepository) Delete(ctx context.Context, id int64) (*models.Route, error) {
	var route models.Route
	query := `DELETE FROM flight_routes WHERE id = $1 RETURNING ` + routeColumns

	if err := r.db.GetContext(ctx, &route, query, id); err != nil {
		return nil, wrap("delete route", err)
	}
	return &route, nil
}

// AdjustSeats applies delta to a route's seats_available in a single statement and
// returns the updated route. With enforceFloor set, a decrement that would go below
// zero matches no row and ErrInsufficientSeats is returned.
func (r *RouteRepository) AdjustSeats(ctx context.Context, q Queryer, routeID int64, delta int, enforceFloor bool) (*models.Route, error) {
	var route models.Route
	query := `
		UPDATE flight_routes
		SET seats_available = seats_available + $2, updated_at = NOW()
		WHERE id = $1`
	if enforceFloor {
		query += ` AND seats_available + $2 >= 0`
	}
	query += ` RETURNING ` + routeColumns

	err := q.GetContext(ctx, &route, query, routeID, delta)
	if err == nil {
		return &route, nil
	}

	err = translateError(err)
	if !errors.Is(err, ErrNotFound) || !enforceFloor {
		return nil, wrap("adjust seats", err)
	}

	// no row matched: either the route is gone or the floor guard rejected it
	var seats int
	if err := q.GetContext(ctx, &seats, `SELECT seats_available FROM flight_routes WHERE id = $1`, routeID); err != nil {
		return nil, wrap("adjust seats", err)
	}
	return nil, ErrInsufficientSeats
}
