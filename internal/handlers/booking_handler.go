package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/middleware"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
)

// BookingHandler handles booking creation and lookup
type BookingHandler struct {
	bookingService *services.BookingService
	audit          auditor
	logger         *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService, auditService *services.AuditService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		audit:          auditor{service: auditService, logger: logger},
		logger:         logger,
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.UserID = &userCtx.UserID

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.lifecycle(c.Request.Context(), userCtx.UserID, "booking_created", "booking", booking.ID, map[string]interface{}{
		"route_id":      booking.RouteID,
		"no_of_persons": booking.NoOfPersons,
		"total_amount":  booking.TotalAmount,
	}, clientMeta(c))

	c.JSON(http.StatusCreated, booking)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	booking, ok := loadOwnedBooking(c, h.bookingService, h.logger, userCtx, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ListBookings handles GET /api/v1/bookings (admin)
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ListMyBookings handles GET /api/v1/users/me/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListBookingsByUser(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// DeleteBooking handles DELETE /api/v1/bookings/:id (admin)
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.DeleteBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// loadOwnedBooking fetches a booking and writes 403 unless the caller owns it or is an admin
func loadOwnedBooking(c *gin.Context, bookingService *services.BookingService, logger *logrus.Logger, userCtx middleware.UserContext, id int64) (*models.Booking, bool) {
	booking, err := bookingService.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, logger, err)
		return nil, false
	}

	if !isAdmin(userCtx) && (booking.UserID == nil || *booking.UserID != userCtx.UserID) {
		logger.WithFields(logrus.Fields{
			"booking_id": id,
			"user_id":    userCtx.UserID,
		}).Warn("Booking access denied")
		forbidden(c)
		return nil, false
	}
	return booking, true
}
