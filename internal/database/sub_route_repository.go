package database

import (
	"context"

	"github.com/flightdesk/booking-backend/internal/models"
)

const subRouteColumns = `id, route_id, flight_id, departure_location, departure_time, arrival_location, arrival_time`

// SubRouteRepository handles sub-route database operations
type SubRouteRepository struct {
	db DB
}

// NewSubRouteRepository creates a new sub-route repository
func NewSubRouteRepository(db DB) *SubRouteRepository {
	return &SubRouteRepository{db: db}
}

// Add inserts a sub-route
func (r *SubRouteRepository) Add(ctx context.Context, sub *models.SubRoute) error {
	query := `
		INSERT INTO sub_routes (
			route_id, flight_id, departure_location, departure_time, arrival_location, arrival_time
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + subRouteColumns

	err := r.db.GetContext(ctx, sub, query,
		sub.RouteID, sub.FlightID, sub.DepartureLocation, sub.DepartureTime,
		sub.ArrivalLocation, sub.ArrivalTime,
	)
	if err != nil {
		return wrap("create sub-route", err)
	}
	return nil
}

// Get retrieves a sub-route by ID
func (r *SubRouteRepository) Get(ctx context.Context, id int64) (*models.SubRoute, error) {
	var sub models.SubRoute
	query := `SELECT ` + subRouteColumns + ` FROM sub_routes WHERE id = $1`

	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, wrap("get sub-route", err)
	}
	return &sub, nil
}

// GetAll lists every sub-route. An empty table yields ErrNotFound.
func (r *SubRouteRepository) GetAll(ctx context.Context) ([]models.SubRoute, error) {
	var subs []models.SubRoute
	query := `SELECT ` + subRouteColumns + ` FROM sub_routes ORDER BY id`

	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, wrap("list sub-routes", err)
	}
	if len(subs) == 0 {
		return nil, ErrNotFound
	}
	return subs, nil
}

// ListByRoute lists the stops of a route in departure order
func (r *SubRouteRepository) ListByRoute(ctx context.Context, routeID int64) ([]models.SubRoute, error) {
	subs := []models.SubRoute{}
	query := `SELECT ` + subRouteColumns + ` FROM sub_routes WHERE route_id = $1 ORDER BY departure_time, id`

	if err := r.db.SelectContext(ctx, &subs, query, routeID); err != nil {
		return nil, wrap("list sub-routes by route", err)
	}
	return subs, nil
}

// Update overwrites a sub-route
func (r *SubRouteRepository) Update(ctx context.Context, sub *models.SubRoute) error {
	query := `
		UPDATE sub_routes
		SET route_id = $2, flight_id = $3, departure_location = $4, departure_time = $5,
		    arrival_location = $6, arrival_time = $7
		WHERE id = $1
		RETURNING ` + subRouteColumns

	err := r.db.GetContext(ctx, sub, query,
		sub.ID, sub.RouteID, sub.FlightID, sub.DepartureLocation, sub.DepartureTime,
		sub.ArrivalLocation, sub.ArrivalTime,
	)
	if err != nil {
		return wrap("update sub-route", err)
	}
	return nil
}

// Delete removes a sub-route and returns the deleted row
func (r *SubRouteRepository) Delete(ctx context.Context, id int64) (*models.SubRoute, error) {
	var sub models.SubRoute
	query := `DELETE FROM sub_routes WHERE id = $1 RETURNING ` + subRouteColumns

	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, wrap("delete sub-route", err)
	}
	return &sub, nil
}
