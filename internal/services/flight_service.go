package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/cache"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/models"
	"golang.org/x/sync/singleflight"
)

// FlightCache is the read-through cache used for flight lookups
type FlightCache interface {
	GetFlight(ctx context.Context, id int64) (*models.Flight, error)
	SetFlight(ctx context.Context, flight *models.Flight) error
	InvalidateFlight(ctx context.Context, id int64) error
}

// FlightService manages the flight catalog: flights, routes and sub-routes
type FlightService struct {
	flightRepo   *database.FlightRepository
	routeRepo    *database.RouteRepository
	subRouteRepo *database.SubRouteRepository
	cache        FlightCache
	// collapses concurrent cache misses for the same flight
	flightGroup singleflight.Group
	logger      *logrus.Logger
}

// NewFlightService creates a new flight service. cache may be nil.
func NewFlightService(
	flightRepo *database.FlightRepository,
	routeRepo *database.RouteRepository,
	subRouteRepo *database.SubRouteRepository,
	cache FlightCache,
	logger *logrus.Logger,
) *FlightService {
	return &FlightService{
		flightRepo:   flightRepo,
		routeRepo:    routeRepo,
		subRouteRepo: subRouteRepo,
		cache:        cache,
		logger:       logger,
	}
}

// CreateFlight adds a flight to the catalog
func (s *FlightService) CreateFlight(ctx context.Context, req *models.FlightRequest) (*models.Flight, error) {
	if err := req.Validate(); err != nil {
		return nil, validation("%s", err.Error())
	}

	flight := &models.Flight{FlightName: req.FlightName, SeatCapacity: req.SeatCapacity}
	if err := s.flightRepo.Add(ctx, flight); err != nil {
		return nil, fromRepository(err, "flight")
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id":     flight.ID,
		"seat_capacity": flight.SeatCapacity,
	}).Info("Flight created")
	return flight, nil
}

// GetFlight returns a flight, consulting the cache first
func (s *FlightService) GetFlight(ctx context.Context, id int64) (*models.Flight, error) {
	if s.cache != nil {
		flight, err := s.cache.GetFlight(ctx, id)
		if err == nil {
			return flight, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WithError(err).WithField("flight_id", id).Warn("Flight cache read failed")
		}
	}

	v, err, _ := s.flightGroup.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		return s.flightRepo.Get(ctx, id)
	})
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("flight %d", id))
	}
	flight := v.(*models.Flight)

	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, flight); err != nil {
			s.logger.WithError(err).WithField("flight_id", id).Warn("Flight cache write failed")
		}
	}
	return flight, nil
}

// ListFlights lists every flight. An empty catalog is NotFound.
func (s *FlightService) ListFlights(ctx context.Context) ([]models.Flight, error) {
	flights, err := s.flightRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "flights")
	}
	return flights, nil
}

// UpdateFlight renames or resizes a flight
func (s *FlightService) UpdateFlight(ctx context.Context, id int64, req *models.FlightRequest) (*models.Flight, error) {
	if err := req.Validate(); err != nil {
		return nil, validation("%s", err.Error())
	}

	flight := &models.Flight{ID: id, FlightName: req.FlightName, SeatCapacity: req.SeatCapacity}
	if err := s.flightRepo.Update(ctx, flight); err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fromRepository(err, fmt.Sprintf("flight %d", id))
		}
		// The update also matches nothing when a route holds more seats than the new capacity
		if _, getErr := s.flightRepo.Get(ctx, id); getErr != nil {
			return nil, fromRepository(getErr, fmt.Sprintf("flight %d", id))
		}
		return nil, validation("seat_capacity %d is below seats_available on a route of flight %d", req.SeatCapacity, id)
	}

	s.invalidate(ctx, id)
	return flight, nil
}

// DeleteFlight removes a flight that no route or booking references
func (s *FlightService) DeleteFlight(ctx context.Context, id int64) (*models.Flight, error) {
	flight, err := s.flightRepo.Delete(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("flight %d", id))
	}

	s.invalidate(ctx, id)
	s.logger.WithField("flight_id", id).Info("Flight deleted")
	return flight, nil
}

func (s *FlightService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlight(ctx, id); err != nil {
		s.logger.WithError(err).WithField("flight_id", id).Warn("Flight cache invalidation failed")
	}
}

// CreateRoute adds a route to a flight. Seats default to the flight's capacity.
func (s *FlightService) CreateRoute(ctx context.Context, req *models.RouteRequest) (*models.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, validation("%s", err.Error())
	}

	flight, err := s.GetFlight(ctx, req.FlightID)
	if err != nil {
		return nil, err
	}

	seats := flight.SeatCapacity
	if req.SeatsAvailable != nil {
		seats = *req.SeatsAvailable
	}
	if err := checkSeats(seats, flight); err != nil {
		return nil, err
	}

	route := routeFromRequest(req, seats)
	if err := s.routeRepo.Add(ctx, route); err != nil {
		return nil, fromRepository(err, "route")
	}

	s.logger.WithFields(logrus.Fields{
		"route_id":        route.ID,
		"flight_id":       route.FlightID,
		"seats_available": route.SeatsAvailable,
	}).Info("Route created")
	return route, nil
}

// GetRoute returns a route by ID
func (s *FlightService) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	route, err := s.routeRepo.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("route %d", id))
	}
	return route, nil
}

// ListRoutes lists every route. An empty table is NotFound.
func (s *FlightService) ListRoutes(ctx context.Context) ([]models.Route, error) {
	routes, err := s.routeRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "routes")
	}
	return routes, nil
}

// ListRoutesByFlight lists the routes of an existing flight
func (s *FlightService) ListRoutesByFlight(ctx context.Context, flightID int64) ([]models.Route, error) {
	if _, err := s.GetFlight(ctx, flightID); err != nil {
		return nil, err
	}

	routes, err := s.routeRepo.ListByFlight(ctx, flightID)
	if err != nil {
		return nil, fromRepository(err, "routes")
	}
	return routes, nil
}

// UpdateRoute overwrites a route. Omitted seats keep the current ledger value.
func (s *FlightService) UpdateRoute(ctx context.Context, id int64, req *models.RouteRequest) (*models.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, validation("%s", err.Error())
	}

	current, err := s.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}

	flight, err := s.GetFlight(ctx, req.FlightID)
	if err != nil {
		return nil, err
	}

	seats := current.SeatsAvailable
	if req.SeatsAvailable != nil {
		seats = *req.SeatsAvailable
	}
	if err := checkSeats(seats, flight); err != nil {
		return nil, err
	}

	route := routeFromRequest(req, seats)
	route.ID = id
	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("route %d", id))
	}
	return route, nil
}

// DeleteRoute removes a route that no booking or sub-route references
func (s *FlightService) DeleteRoute(ctx context.Context, id int64) (*models.Route, error) {
	route, err := s.routeRepo.Delete(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("route %d", id))
	}
	return route, nil
}

// CreateSubRoute adds an intermediate stop to a route of the same flight
func (s *FlightService) CreateSubRoute(ctx context.Context, req *models.SubRouteRequest) (*models.SubRoute, error) {
	if err := s.checkSubRoute(ctx, req); err != nil {
		return nil, err
	}

	sub := subRouteFromRequest(req)
	if err := s.subRouteRepo.Add(ctx, sub); err != nil {
		return nil, fromRepository(err, "sub-route")
	}
	return sub, nil
}

// GetSubRoute returns a sub-route by ID
func (s *FlightService) GetSubRoute(ctx context.Context, id int64) (*models.SubRoute, error) {
	sub, err := s.subRouteRepo.Get(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("sub-route %d", id))
	}
	return sub, nil
}

// ListSubRoutes lists every sub-route. An empty table is NotFound.
func (s *FlightService) ListSubRoutes(ctx context.Context) ([]models.SubRoute, error) {
	subs, err := s.subRouteRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "sub-routes")
	}
	return subs, nil
}

// ListSubRoutesByRoute lists the stops of an existing route
func (s *FlightService) ListSubRoutesByRoute(ctx context.Context, routeID int64) ([]models.SubRoute, error) {
	if _, err := s.GetRoute(ctx, routeID); err != nil {
		return nil, err
	}

	subs, err := s.subRouteRepo.ListByRoute(ctx, routeID)
	if err != nil {
		return nil, fromRepository(err, "sub-routes")
	}
	return subs, nil
}

// UpdateSubRoute overwrites a sub-route
func (s *FlightService) UpdateSubRoute(ctx context.Context, id int64, req *models.SubRouteRequest) (*models.SubRoute, error) {
	if err := s.checkSubRoute(ctx, req); err != nil {
		return nil, err
	}

	sub := subRouteFromRequest(req)
	sub.ID = id
	if err := s.subRouteRepo.Update(ctx, sub); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("sub-route %d", id))
	}
	return sub, nil
}

// DeleteSubRoute removes a sub-route
func (s *FlightService) DeleteSubRoute(ctx context.Context, id int64) (*models.SubRoute, error) {
	sub, err := s.subRouteRepo.Delete(ctx, id)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("sub-route %d", id))
	}
	return sub, nil
}

func (s *FlightService) checkSubRoute(ctx context.Context, req *models.SubRouteRequest) error {
	if err := req.Validate(); err != nil {
		return validation("%s", err.Error())
	}

	route, err := s.GetRoute(ctx, req.RouteID)
	if err != nil {
		return err
	}
	if route.FlightID != req.FlightID {
		return validation("route %d does not belong to flight %d", req.RouteID, req.FlightID)
	}
	return nil
}

func checkSeats(seats int, flight *models.Flight) error {
	if seats < 0 || seats > flight.SeatCapacity {
		return validation("seats_available must be between 0 and the flight's seat capacity (%d)", flight.SeatCapacity)
	}
	return nil
}

func routeFromRequest(req *models.RouteRequest, seats int) *models.Route {
	return &models.Route{
		FlightID:          req.FlightID,
		DepartureLocation: req.DepartureLocation,
		DepartureTime:     req.DepartureTime,
		ArrivalLocation:   req.ArrivalLocation,
		ArrivalTime:       req.ArrivalTime,
		SeatsAvailable:    seats,
		PricePerPerson:    req.PricePerPerson,
		NoOfStops:         req.NoOfStops,
	}
}

func subRouteFromRequest(req *models.SubRouteRequest) *models.SubRoute {
	return &models.SubRoute{
		RouteID:           req.RouteID,
		FlightID:          req.FlightID,
		DepartureLocation: req.DepartureLocation,
		DepartureTime:     req.DepartureTime,
		ArrivalLocation:   req.ArrivalLocation,
		ArrivalTime:       req.ArrivalTime,
	}
}
