package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
)

// AuthHandler handles account registration, login and token lifecycle
type AuthHandler struct {
	authService      *services.AuthService
	rateLimitService *services.RateLimitService
	audit            auditor
	logger           *logrus.Logger
}

// NewAuthHandler creates a new auth handler. A nil rateLimitService disables login throttling.
func NewAuthHandler(
	authService *services.AuthService,
	rateLimitService *services.RateLimitService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		rateLimitService: rateLimitService,
		audit:            auditor{service: auditService, logger: logger},
		logger:           logger,
	}
}

// LogoutRequest represents the request to logout
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	LogoutAll    bool   `json:"logout_all"` // If true, revoke every token the user holds
}

// Register handles POST /api/v1/auth/register
// Public registration always creates a customer account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.Role = models.RoleCustomer

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.registration(c.Request.Context(), user.ID, user.Role, clientMeta(c))

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("Account registered")

	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	meta := clientMeta(c)

	if h.rateLimitService != nil {
		if err := h.rateLimitService.CheckLoginRateLimit(ctx, req.Username, meta.IPAddress); err != nil {
			var rateLimitErr *services.RateLimitError
			if errors.As(err, &rateLimitErr) {
				h.logger.WithFields(logrus.Fields{
					"username": req.Username,
					"ip":       meta.IPAddress,
					"type":     rateLimitErr.Type,
				}).Warn("Login rate limit exceeded")
				c.Header("Retry-After", strconv.Itoa(int(time.Until(rateLimitErr.RetryAfter).Seconds())+1))
				c.JSON(http.StatusTooManyRequests, ErrorResponse{
					Error:   "rate_limit_exceeded",
					Message: rateLimitErr.Message,
					Code:    "RATE_LIMIT_EXCEEDED",
				})
				return
			}
			// throttling is best effort
			h.logger.WithError(err).Error("Failed to check login rate limit")
		}
	}

	resp, err := h.authService.Login(ctx, &req, meta)
	if err != nil {
		h.audit.login(ctx, nil, req.Username, false, meta)
		if services.KindOf(err) == services.KindUnauthorized && h.rateLimitService != nil {
			if recErr := h.rateLimitService.RecordFailedLogin(ctx, req.Username, meta.IPAddress); recErr != nil {
				h.logger.WithError(recErr).Error("Failed to record failed login")
			}
		}
		h.logger.WithFields(logrus.Fields{
			"username": req.Username,
			"ip":       meta.IPAddress,
		}).Warn("Login failed")
		respondError(c, h.logger, err)
		return
	}

	if h.rateLimitService != nil {
		if err := h.rateLimitService.ClearFailedLogins(ctx, req.Username); err != nil {
			h.logger.WithError(err).Warn("Failed to clear login attempts")
		}
	}

	h.audit.login(ctx, &resp.User.ID, req.Username, true, meta)
	c.JSON(http.StatusOK, resp)
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	meta := clientMeta(c)
	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken, meta)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.tokenRefresh(c.Request.Context(), resp.User.ID, true, meta)
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if req.LogoutAll {
		if err := h.authService.LogoutAll(c.Request.Context(), userCtx.UserID); err != nil {
			respondError(c, h.logger, err)
			return
		}
		h.audit.logout(c.Request.Context(), userCtx.UserID, clientMeta(c))
		c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out from all devices"})
		return
	}

	if req.RefreshToken == "" {
		badRequest(c, "refresh_token is required unless logout_all is set")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.logout(c.Request.Context(), userCtx.UserID, clientMeta(c))
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// GetProfile handles GET /api/v1/users/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
