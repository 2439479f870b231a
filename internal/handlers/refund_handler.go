package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/middleware"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
)

// RefundHandler handles refunds for cancelled bookings
type RefundHandler struct {
	refundService       *services.RefundService
	cancellationService *services.CancellationService
	bookingService      *services.BookingService
	audit               auditor
	logger              *logrus.Logger
}

// NewRefundHandler creates a new refund handler
func NewRefundHandler(
	refundService *services.RefundService,
	cancellationService *services.CancellationService,
	bookingService *services.BookingService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *RefundHandler {
	return &RefundHandler{
		refundService:       refundService,
		cancellationService: cancellationService,
		bookingService:      bookingService,
		audit:               auditor{service: auditService, logger: logger},
		logger:              logger,
	}
}

// CreateRefund handles POST /api/v1/refunds
func (h *RefundHandler) CreateRefund(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if !h.ownsCancellation(c, userCtx, req.CancellationID) {
		return
	}

	refund, err := h.refundService.CreateRefund(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.lifecycle(c.Request.Context(), userCtx.UserID, "refund_initiated", "refund", refund.ID, map[string]interface{}{
		"cancellation_id": refund.CancellationID,
	}, clientMeta(c))

	c.JSON(http.StatusCreated, refund)
}

// GetRefund handles GET /api/v1/refunds/:id
func (h *RefundHandler) GetRefund(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	refund, err := h.refundService.GetRefund(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !h.ownsCancellation(c, userCtx, refund.CancellationID) {
		return
	}
	c.JSON(http.StatusOK, refund)
}

// ListRefunds handles GET /api/v1/refunds (admin)
func (h *RefundHandler) ListRefunds(c *gin.Context) {
	refunds, err := h.refundService.ListRefunds(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, refunds)
}

// UpdateRefund handles PUT /api/v1/refunds/:id (admin)
func (h *RefundHandler) UpdateRefund(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	refund, err := h.refundService.UpdateRefund(c.Request.Context(), id, req.RefundStatus)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.lifecycle(c.Request.Context(), userCtx.UserID, "refund_status_changed", "refund", refund.ID, map[string]interface{}{
		"refund_status": refund.RefundStatus,
	}, clientMeta(c))

	c.JSON(http.StatusOK, refund)
}

func (h *RefundHandler) ownsCancellation(c *gin.Context, userCtx middleware.UserContext, cancellationID int64) bool {
	if isAdmin(userCtx) {
		return true
	}

	cancellation, err := h.cancellationService.GetCancellation(c.Request.Context(), cancellationID)
	if err != nil {
		respondError(c, h.logger, err)
		return false
	}
	_, ok := loadOwnedBooking(c, h.bookingService, h.logger, userCtx, cancellation.BookingID)
	return ok
}
