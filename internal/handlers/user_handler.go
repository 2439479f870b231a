package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/services"
)

// UserHandler handles admin account management
type UserHandler struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *services.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		logger:      logger,
	}
}

// ListUsers handles GET /api/v1/users (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// DeleteUser handles DELETE /api/v1/users/:id (admin)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid user id")
		return
	}
	if id == userCtx.UserID {
		badRequest(c, "Admins cannot delete their own account")
		return
	}

	user, err := h.authService.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"deleted_user_id": id,
		"admin_id":        userCtx.UserID,
	}).Info("Admin deleted user")

	c.JSON(http.StatusOK, user)
}
