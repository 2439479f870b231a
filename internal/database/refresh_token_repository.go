package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/flightdesk/booking-backend/internal/models"
)

const refreshTokenColumns = `id, user_id, token_hash, ip_address, user_agent, created_at,
	expires_at, last_used_at, revoked, revoked_at`

// RefreshTokenRepository handles refresh token database operations
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Store saves the hash of a refresh token
func (r *RefreshTokenRepository) Store(ctx context.Context, userID uuid.UUID, token, ipAddress, userAgent string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	var ipVal, userAgentVal interface{}
	if ipAddress != "" {
		ipVal = ipAddress
	}
	if userAgent != "" {
		userAgentVal = userAgent
	}

	if _, err := r.db.ExecContext(ctx, query, userID, hashToken(token), ipVal, userAgentVal, expiresAt); err != nil {
		return wrap("store refresh token", err)
	}
	return nil
}

// Get retrieves a stored refresh token by its raw value
func (r *RefreshTokenRepository) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`

	if err := r.db.GetContext(ctx, &rt, query, hashToken(token)); err != nil {
		return nil, wrap("get refresh token", err)
	}
	return &rt, nil
}

// Revoke revokes a single active token. A token that is missing or already revoked yields ErrNotFound.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW()
		WHERE token_hash = $1 AND revoked = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, hashToken(token))
	if err != nil {
		return wrap("revoke token", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrap("revoke token", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAllForUser revokes every active token a user holds
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW()
		WHERE user_id = $1 AND revoked = FALSE
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return wrap("revoke all user tokens", err)
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *RefreshTokenRepository) UpdateLastUsed(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET last_used_at = NOW() WHERE token_hash = $1`

	if _, err := r.db.ExecContext(ctx, query, hashToken(token)); err != nil {
		return wrap("update last used timestamp", err)
	}
	return nil
}

// CleanupExpired removes expired tokens and revoked tokens older than revokedBefore
func (r *RefreshTokenRepository) CleanupExpired(ctx context.Context, revokedBefore time.Duration) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at < NOW()
		   OR (revoked = TRUE AND revoked_at < $1)
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().Add(-revokedBefore))
	if err != nil {
		return 0, wrap("cleanup refresh tokens", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap("cleanup refresh tokens", err)
	}
	return rowsAffected, nil
}
