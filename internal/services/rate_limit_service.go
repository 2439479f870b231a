package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flightdesk/booking-backend/internal/database"
)

// RateLimitService throttles failed login attempts per username and per client IP
type RateLimitService struct {
	db     database.DB
	config RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxUsernameAttempts int           // Max failed logins per username
	UsernameWindow      time.Duration // Time window for username rate limit
	MaxIPAttempts       int           // Max failed logins per IP
	IPWindow            time.Duration // Time window for IP rate limit
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxUsernameAttempts: 5,                // 5 failures
		UsernameWindow:      15 * time.Minute, // per 15 minutes
		MaxIPAttempts:       20,               // 20 failures
		IPWindow:            1 * time.Hour,    // per hour
	}
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, config RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		db:     db,
		config: config,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "username" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckLoginRateLimit returns a *RateLimitError when the username or IP has too many recent failures
func (s *RateLimitService) CheckLoginRateLimit(ctx context.Context, username, ip string) error {
	if username != "" {
		count, lastAttempt, err := s.getAttemptCount(ctx, username, "username", s.config.UsernameWindow)
		if err != nil {
			return fmt.Errorf("failed to check username rate limit: %w", err)
		}

		if count >= s.config.MaxUsernameAttempts {
			retryAfter := lastAttempt.Add(s.config.UsernameWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "username",
			}
		}
	}

	if ip != "" {
		count, lastAttempt, err := s.getAttemptCount(ctx, ip, "ip", s.config.IPWindow)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}

		if count >= s.config.MaxIPAttempts {
			retryAfter := lastAttempt.Add(s.config.IPWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// getAttemptCount gets the number of failures within the time window
func (s *RateLimitService) getAttemptCount(ctx context.Context, identifier, identifierType string, window time.Duration) (int, time.Time, error) {
	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM login_attempts
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var lastAttempt time.Time

	err := s.db.QueryRowxContext(ctx, query, identifier, identifierType, time.Now().Add(-window)).Scan(&count, &lastAttempt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, err
	}

	return count, lastAttempt, nil
}

// RecordFailedLogin records a failed login for both the username and the IP
func (s *RateLimitService) RecordFailedLogin(ctx context.Context, username, ip string) error {
	if username != "" {
		if err := s.recordAttempt(ctx, username, "username"); err != nil {
			return fmt.Errorf("failed to record username attempt: %w", err)
		}
	}

	if ip != "" {
		if err := s.recordAttempt(ctx, ip, "ip"); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}

	return nil
}

func (s *RateLimitService) recordAttempt(ctx context.Context, identifier, identifierType string) error {
	query := `
		INSERT INTO login_attempts (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, identifier, identifierType)
	return err
}

// ClearFailedLogins forgets a username's failures after a successful login
func (s *RateLimitService) ClearFailedLogins(ctx context.Context, username string) error {
	query := `DELETE FROM login_attempts WHERE identifier = $1 AND identifier_type = 'username'`

	if _, err := s.db.ExecContext(ctx, query, username); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

// CleanupExpiredRateLimits removes records older than the longest window
func (s *RateLimitService) CleanupExpiredRateLimits(ctx context.Context) (int64, error) {
	maxWindow := s.config.IPWindow
	if s.config.UsernameWindow > maxWindow {
		maxWindow = s.config.UsernameWindow
	}

	query := `
		DELETE FROM login_attempts
		WHERE created_at < $1
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().Add(-maxWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
