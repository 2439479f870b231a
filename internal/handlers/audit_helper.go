package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/services"
)

// auditor wraps AuditService so audit failures are logged without failing the request
type auditor struct {
	service *services.AuditService
	logger  *logrus.Logger
}

func (a auditor) logError(operation string, err error) {
	if err != nil {
		a.logger.WithError(err).WithField("operation", operation).Error("AUDIT ERROR")
	}
}

func (a auditor) login(ctx context.Context, userID *uuid.UUID, username string, success bool, meta services.ClientMeta) {
	a.logError("LogLogin", a.service.LogLogin(ctx, userID, username, success, meta))
}

func (a auditor) logout(ctx context.Context, userID uuid.UUID, meta services.ClientMeta) {
	a.logError("LogLogout", a.service.LogLogout(ctx, userID, meta))
}

func (a auditor) tokenRefresh(ctx context.Context, userID uuid.UUID, success bool, meta services.ClientMeta) {
	a.logError("LogTokenRefresh", a.service.LogTokenRefresh(ctx, userID, success, meta))
}

func (a auditor) registration(ctx context.Context, userID uuid.UUID, role string, meta services.ClientMeta) {
	a.logError("LogRegistration", a.service.LogRegistration(ctx, userID, role, meta))
}

func (a auditor) lifecycle(ctx context.Context, userID uuid.UUID, action, entityType string, entityID int64, details map[string]interface{}, meta services.ClientMeta) {
	a.logError("LogLifecycle", a.service.LogLifecycle(ctx, &userID, action, entityType, entityID, details, meta))
}
