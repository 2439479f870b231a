package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/models"
)

// SearchService handles route search
type SearchService struct {
	repo   *database.SearchRepository
	logger *logrus.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo *database.SearchRepository, logger *logrus.Logger) *SearchService {
	return &SearchService{
		repo:   repo,
		logger: logger,
	}
}

// SearchRoutes finds bookable routes between two locations with enough seats for the party.
// Seat counts are a snapshot; only payment commits seats.
func (s *SearchService) SearchRoutes(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, validation("%s", err.Error())
	}

	from, until := req.SearchWindow(startTime)
	routes, err := s.repo.FindRoutes(ctx, req.From, req.To, from, until, req.Seats, req.Limit)
	if err != nil {
		return nil, fromRepository(err, "routes")
	}

	for i := range routes {
		routes[i].TotalPrice = routes[i].PricePerPerson * float64(req.Seats)
		routes[i].DurationMinutes = int(routes[i].ArrivalTime.Sub(routes[i].DepartureTime).Minutes())
	}
	sortResults(routes, req.SortBy)

	response := &models.SearchResponse{
		Status:  "success",
		Results: routes,
		Count:   len(routes),
	}
	if len(routes) == 0 {
		response.Message = fmt.Sprintf("No routes found from %s to %s with %d seat(s). Try a different date.", req.From, req.To, req.Seats)
	} else {
		response.Message = fmt.Sprintf("Found %d route(s) from %s to %s", len(routes), req.From, req.To)
	}
	response.SearchTimeMs = time.Since(startTime).Milliseconds()

	s.logger.WithFields(logrus.Fields{
		"from":        req.From,
		"to":          req.To,
		"seats":       req.Seats,
		"results":     len(routes),
		"response_ms": response.SearchTimeMs,
	}).Info("Search completed successfully")

	return response, nil
}

// GetLocationAutocomplete returns location suggestions for autocomplete
func (s *SearchService) GetLocationAutocomplete(ctx context.Context, term string, limit int) ([]models.LocationSuggestion, error) {
	if len(term) < 2 {
		return []models.LocationSuggestion{}, nil
	}

	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	suggestions, err := s.repo.GetLocationAutocomplete(ctx, term, limit)
	if err != nil {
		return nil, fromRepository(err, "locations")
	}
	return suggestions, nil
}

func sortResults(routes []models.RouteResult, sortBy string) {
	switch sortBy {
	case models.SortCheapest:
		sort.SliceStable(routes, func(i, j int) bool {
			return routes[i].PricePerPerson < routes[j].PricePerPerson
		})
	case models.SortFastest:
		sort.SliceStable(routes, func(i, j int) bool {
			return routes[i].DurationMinutes < routes[j].DurationMinutes
		})
	default:
		sort.SliceStable(routes, func(i, j int) bool {
			return routes[i].DepartureTime.Before(routes[j].DepartureTime)
		})
	}
}
