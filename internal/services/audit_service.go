package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/utils"
)

// AuditService records security and booking lifecycle events in audit_logs.
// A nil or disabled service records nothing.
type AuditService struct {
	db      database.DB
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB, enabled bool) *AuditService {
	return &AuditService{
		db:      db,
		enabled: enabled,
	}
}

// ClientMeta identifies the caller of an audited request
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID // nil for pre-authentication events
	Action     string     // e.g. "login", "booking_created", "payment_confirmed"
	EntityType string     // e.g. "user", "booking", "refund"
	EntityID   string
	Meta       ClientMeta
	Details    map[string]interface{}
}

// LogLogin logs a login attempt
func (s *AuditService) LogLogin(ctx context.Context, userID *uuid.UUID, username string, success bool, meta ClientMeta) error {
	action := "login"
	if !success {
		action = "login_failed"
	}

	return s.logEvent(ctx, AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		EntityID:   idString(userID),
		Meta:       meta,
		Details:    map[string]interface{}{"username": username, "success": success},
	})
}

// LogLogout logs a logout event
func (s *AuditService) LogLogout(ctx context.Context, userID uuid.UUID, meta ClientMeta) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &userID,
		Action:     "logout",
		EntityType: "user",
		EntityID:   userID.String(),
		Meta:       meta,
	})
}

// LogTokenRefresh logs a refresh token usage event
func (s *AuditService) LogTokenRefresh(ctx context.Context, userID uuid.UUID, success bool, meta ClientMeta) error {
	action := "token_refresh_success"
	if !success {
		action = "token_refresh_failed"
	}

	return s.logEvent(ctx, AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "token",
		Meta:       meta,
		Details:    map[string]interface{}{"success": success},
	})
}

// LogRegistration logs account creation
func (s *AuditService) LogRegistration(ctx context.Context, userID uuid.UUID, role string, meta ClientMeta) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &userID,
		Action:     "user_registered",
		EntityType: "user",
		EntityID:   userID.String(),
		Meta:       meta,
		Details:    map[string]interface{}{"role": role},
	})
}

// LogLifecycle logs a booking lifecycle step performed by userID
func (s *AuditService) LogLifecycle(ctx context.Context, userID *uuid.UUID, action, entityType string, entityID int64, details map[string]interface{}, meta ClientMeta) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   fmt.Sprintf("%d", entityID),
		Meta:       meta,
		Details:    details,
	})
}

// logEvent writes to the audit_logs table
func (s *AuditService) logEvent(ctx context.Context, event AuditEvent) error {
	if s == nil || !s.enabled {
		return nil
	}

	if event.Details == nil {
		event.Details = make(map[string]interface{})
	}
	event.Details["device_info"] = utils.ParseUserAgent(event.Meta.UserAgent)

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.UserID,
		event.Action,
		event.EntityType,
		nullable(event.EntityID),
		nullable(event.Meta.IPAddress),
		nullable(event.Meta.UserAgent),
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
