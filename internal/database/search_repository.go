package database

import (
	"context"
	"time"

	"github.com/flightdesk/booking-backend/internal/models"
)

// SearchRepository handles route search queries
type SearchRepository struct {
	db DB
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(db DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// FindRoutes returns routes between two locations departing in [from, until) that still
// have at least seats seats. A nil until leaves the window open.
func (r *SearchRepository) FindRoutes(ctx context.Context, origin, destination string, from time.Time, until *time.Time, seats, limit int) ([]models.RouteResult, error) {
	query := `
		SELECT
			fr.id AS route_id,
			fr.flight_id,
			f.flight_name,
			fr.departure_location,
			fr.departure_time,
			fr.arrival_location,
			fr.arrival_time,
			fr.seats_available,
			fr.price_per_person,
			fr.no_of_stops
		FROM flight_routes fr
		JOIN flights f ON f.id = fr.flight_id
		WHERE LOWER(fr.departure_location) = LOWER($1)
		  AND LOWER(fr.arrival_location) = LOWER($2)
		  AND fr.departure_time >= $3
		  AND ($4::timestamptz IS NULL OR fr.departure_time < $4)
		  AND fr.seats_available >= $5
		ORDER BY fr.departure_time
		LIMIT $6
	`

	results := []models.RouteResult{}
	if err := r.db.SelectContext(ctx, &results, query, origin, destination, from, until, seats, limit); err != nil {
		return nil, wrap("search routes", err)
	}
	return results, nil
}

// GetLocationAutocomplete returns known departure and arrival locations starting with term
func (r *SearchRepository) GetLocationAutocomplete(ctx context.Context, term string, limit int) ([]models.LocationSuggestion, error) {
	query := `
		SELECT location, COUNT(*) AS route_count
		FROM (
			SELECT departure_location AS location FROM flight_routes
			UNION ALL
			SELECT arrival_location AS location FROM flight_routes
		) locations
		WHERE location ILIKE $1 || '%'
		GROUP BY location
		ORDER BY route_count DESC, location
		LIMIT $2
	`

	suggestions := []models.LocationSuggestion{}
	if err := r.db.SelectContext(ctx, &suggestions, query, term, limit); err != nil {
		return nil, wrap("autocomplete locations", err)
	}
	return suggestions, nil
}
