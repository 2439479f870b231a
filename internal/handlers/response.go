package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/middleware"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
	"github.com/flightdesk/booking-backend/internal/utils"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var kindStatus = map[services.Kind]int{
	services.KindNotFound:         http.StatusNotFound,
	services.KindValidation:       http.StatusBadRequest,
	services.KindCapacityExceeded: http.StatusConflict,
	services.KindConflict:         http.StatusConflict,
	services.KindUnauthorized:     http.StatusUnauthorized,
	services.KindServiceError:     http.StatusInternalServerError,
}

// respondError writes the status and body for a service error. Internal details of
// SERVICE_ERROR failures are logged, not returned.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	if status == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("Request failed")
		message = "An internal error occurred"
	}

	c.JSON(status, ErrorResponse{
		Error:   string(kind),
		Message: message,
		Code:    string(kind),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
		Code:    string(services.KindValidation),
	})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   "forbidden",
		Message: "You don't have permission to access this resource",
		Code:    "INSUFFICIENT_PERMISSIONS",
	})
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func clientMeta(c *gin.Context) services.ClientMeta {
	return services.ClientMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

func isAdmin(userCtx middleware.UserContext) bool {
	return userCtx.Role == models.RoleAdmin
}

// currentUser returns the authenticated caller, writing 401 when AuthMiddleware did not run
func currentUser(c *gin.Context) (middleware.UserContext, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
			Code:    "MISSING_USER_CONTEXT",
		})
		return middleware.UserContext{}, false
	}
	return userCtx, true
}
