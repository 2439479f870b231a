package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
)

// PaymentHandler handles payment confirmation
type PaymentHandler struct {
	paymentService *services.PaymentService
	bookingService *services.BookingService
	audit          auditor
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	paymentService *services.PaymentService,
	bookingService *services.BookingService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		bookingService: bookingService,
		audit:          auditor{service: auditService, logger: logger},
		logger:         logger,
	}
}

// CreatePayment handles POST /api/v1/payments
// Pays for the caller's booking and commits its seats against the route.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if _, ok := loadOwnedBooking(c, h.bookingService, h.logger, userCtx, req.BookingID); !ok {
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.lifecycle(c.Request.Context(), userCtx.UserID, "payment_confirmed", "payment", payment.ID, map[string]interface{}{
		"booking_id":     payment.BookingID,
		"amount":         payment.Amount,
		"payment_method": payment.PaymentMethod,
	}, clientMeta(c))

	c.JSON(http.StatusCreated, payment)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if _, ok := loadOwnedBooking(c, h.bookingService, h.logger, userCtx, payment.BookingID); !ok {
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ListPayments handles GET /api/v1/payments (admin)
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// DeletePayment handles DELETE /api/v1/payments/:id (admin)
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.DeletePayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
