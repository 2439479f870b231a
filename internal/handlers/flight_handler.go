package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
)

// FlightHandler serves the flight catalog: flights, routes and sub-routes
type FlightHandler struct {
	flightService *services.FlightService
	logger        *logrus.Logger
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(flightService *services.FlightService, logger *logrus.Logger) *FlightHandler {
	return &FlightHandler{
		flightService: flightService,
		logger:        logger,
	}
}

// CreateFlight handles POST /api/v1/flights
func (h *FlightHandler) CreateFlight(c *gin.Context) {
	var req models.FlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	flight, err := h.flightService.CreateFlight(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

// GetFlight handles GET /api/v1/flights/:id
func (h *FlightHandler) GetFlight(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	flight, err := h.flightService.GetFlight(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// ListFlights handles GET /api/v1/flights
func (h *FlightHandler) ListFlights(c *gin.Context) {
	flights, err := h.flightService.ListFlights(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

// UpdateFlight handles PUT /api/v1/flights/:id
func (h *FlightHandler) UpdateFlight(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.FlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	flight, err := h.flightService.UpdateFlight(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// DeleteFlight handles DELETE /api/v1/flights/:id
func (h *FlightHandler) DeleteFlight(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	flight, err := h.flightService.DeleteFlight(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// ListFlightRoutes handles GET /api/v1/flights/:id/routes
func (h *FlightHandler) ListFlightRoutes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	routes, err := h.flightService.ListRoutesByFlight(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// ============================================================================
// ROUTES
// ============================================================================

// CreateRoute handles POST /api/v1/routes
func (h *FlightHandler) CreateRoute(c *gin.Context) {
	var req models.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	route, err := h.flightService.CreateRoute(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

// GetRoute handles GET /api/v1/routes/:id
func (h *FlightHandler) GetRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	route, err := h.flightService.GetRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// ListRoutes handles GET /api/v1/routes
func (h *FlightHandler) ListRoutes(c *gin.Context) {
	routes, err := h.flightService.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// UpdateRoute handles PUT /api/v1/routes/:id
func (h *FlightHandler) UpdateRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	route, err := h.flightService.UpdateRoute(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// DeleteRoute handles DELETE /api/v1/routes/:id
func (h *FlightHandler) DeleteRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	route, err := h.flightService.DeleteRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// ListRouteSubRoutes handles GET /api/v1/routes/:id/sub-routes
func (h *FlightHandler) ListRouteSubRoutes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	subRoutes, err := h.flightService.ListSubRoutesByRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, subRoutes)
}

// ============================================================================
// SUB-ROUTES
// ============================================================================

// CreateSubRoute handles POST /api/v1/sub-routes
func (h *FlightHandler) CreateSubRoute(c *gin.Context) {
	var req models.SubRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	subRoute, err := h.flightService.CreateSubRoute(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, subRoute)
}

// GetSubRoute handles GET /api/v1/sub-routes/:id
func (h *FlightHandler) GetSubRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	subRoute, err := h.flightService.GetSubRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, subRoute)
}

// ListSubRoutes handles GET /api/v1/sub-routes
func (h *FlightHandler) ListSubRoutes(c *gin.Context) {
	subRoutes, err := h.flightService.ListSubRoutes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, subRoutes)
}

// UpdateSubRoute handles PUT /api/v1/sub-routes/:id
func (h *FlightHandler) UpdateSubRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.SubRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	subRoute, err := h.flightService.UpdateSubRoute(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, subRoute)
}

// DeleteSubRoute handles DELETE /api/v1/sub-routes/:id
func (h *FlightHandler) DeleteSubRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	subRoute, err := h.flightService.DeleteSubRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, subRoute)
}
