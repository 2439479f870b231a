package models

import (
	"errors"
	"strings"
	"time"
)

// Sort orders for route search
const (
	SortCheapest = "cheapest"
	SortFastest  = "fastest"
	SortEarliest = "earliest"
)

// SearchRequest represents a route search
type SearchRequest struct {
	From   string `form:"from" binding:"required"`
	To     string `form:"to" binding:"required"`
	Date   string `form:"date"`  // YYYY-MM-DD, empty searches from now on
	Seats  int    `form:"seats"` // defaults to 1
	SortBy string `form:"sort_by"`
	Limit  int    `form:"limit"`
}

// Validate validates and normalises the search request
func (r *SearchRequest) Validate() error {
	r.From = strings.TrimSpace(r.From)
	r.To = strings.TrimSpace(r.To)

	if r.From == "" || r.To == "" {
		return errors.New("from and to are required")
	}
	if strings.EqualFold(r.From, r.To) {
		return errors.New("origin and destination cannot be the same")
	}

	if r.Seats == 0 {
		r.Seats = 1
	}
	if r.Seats < 0 {
		return errors.New("seats cannot be negative")
	}

	if r.Date != "" {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return errors.New("date must be in YYYY-MM-DD format")
		}
	}

	switch r.SortBy {
	case "":
		r.SortBy = SortEarliest
	case SortCheapest, SortFastest, SortEarliest:
	default:
		return errors.New("sort_by must be one of cheapest, fastest, earliest")
	}

	if r.Limit <= 0 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
	return nil
}

// SearchWindow returns the departure window to search. Without a date it runs from now to the end of time.
func (r *SearchRequest) SearchWindow(now time.Time) (time.Time, *time.Time) {
	if r.Date == "" {
		return now, nil
	}
	day, _ := time.Parse("2006-01-02", r.Date)
	end := day.Add(24 * time.Hour)
	if day.Before(now) {
		day = now
	}
	return day, &end
}

// RouteResult is a bookable route returned by search
type RouteResult struct {
	RouteID           int64     `json:"route_id" db:"route_id"`
	FlightID          int64     `json:"flight_id" db:"flight_id"`
	FlightName        string    `json:"flight_name" db:"flight_name"`
	DepartureLocation string    `json:"departure_location" db:"departure_location"`
	DepartureTime     time.Time `json:"departure_time" db:"departure_time"`
	ArrivalLocation   string    `json:"arrival_location" db:"arrival_location"`
	ArrivalTime       time.Time `json:"arrival_time" db:"arrival_time"`
	SeatsAvailable    int       `json:"seats_available" db:"seats_available"`
	PricePerPerson    float64   `json:"price_per_person" db:"price_per_person"`
	NoOfStops         int       `json:"no_of_stops" db:"no_of_stops"`
	TotalPrice        float64   `json:"total_price" db:"-"`
	DurationMinutes   int       `json:"duration_minutes" db:"-"`
}

// SearchResponse represents the response for route search
type SearchResponse struct {
	Status       string        `json:"status"`
	Message      string        `json:"message"`
	Results      []RouteResult `json:"results"`
	Count        int           `json:"count"`
	SearchTimeMs int64         `json:"search_time_ms"`
}

// LocationSuggestion is a location name offered by autocomplete
type LocationSuggestion struct {
	Location   string `json:"location" db:"location"`
	RouteCount int    `json:"route_count" db:"route_count"`
}
