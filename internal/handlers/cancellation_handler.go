package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
)

// CancellationHandler handles booking cancellations
type CancellationHandler struct {
	cancellationService *services.CancellationService
	bookingService      *services.BookingService
	audit               auditor
	logger              *logrus.Logger
}

// NewCancellationHandler creates a new cancellation handler
func NewCancellationHandler(
	cancellationService *services.CancellationService,
	bookingService *services.BookingService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *CancellationHandler {
	return &CancellationHandler{
		cancellationService: cancellationService,
		bookingService:      bookingService,
		audit:               auditor{service: auditService, logger: logger},
		logger:              logger,
	}
}

// CreateCancellation handles POST /api/v1/cancellations
// Cancels a paid booking and returns its seats to the route.
func (h *CancellationHandler) CreateCancellation(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if _, ok := loadOwnedBooking(c, h.bookingService, h.logger, userCtx, req.BookingID); !ok {
		return
	}

	cancellation, err := h.cancellationService.CreateCancellation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.lifecycle(c.Request.Context(), userCtx.UserID, "booking_cancelled", "cancellation", cancellation.ID, map[string]interface{}{
		"booking_id": cancellation.BookingID,
		"payment_id": cancellation.PaymentID,
		"reason":     cancellation.Reason,
	}, clientMeta(c))

	c.JSON(http.StatusCreated, cancellation)
}

// GetCancellation handles GET /api/v1/cancellations/:id
func (h *CancellationHandler) GetCancellation(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	cancellation, err := h.cancellationService.GetCancellation(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if _, ok := loadOwnedBooking(c, h.bookingService, h.logger, userCtx, cancellation.BookingID); !ok {
		return
	}
	c.JSON(http.StatusOK, cancellation)
}

// ListCancellations handles GET /api/v1/cancellations (admin)
func (h *CancellationHandler) ListCancellations(c *gin.Context) {
	cancellations, err := h.cancellationService.ListCancellations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cancellations)
}
