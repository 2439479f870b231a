package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitTest(t *testing.T) (*RateLimitService, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	return NewRateLimitService(db, DefaultRateLimitConfig()), mock
}

func countRows(count int, last time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count", "created_at"}).AddRow(count, last)
}

func TestCheckLoginRateLimit_NoAttempts(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("alice", "username", sqlmock.AnyArg()).
		WillReturnRows(countRows(0, time.Now()))
	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("192.168.1.1", "ip", sqlmock.AnyArg()).
		WillReturnRows(countRows(0, time.Now()))

	err := service.CheckLoginRateLimit(context.Background(), "alice", "192.168.1.1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLoginRateLimit_UsernameExceeded(t *testing.T) {
	service, mock := setupRateLimitTest(t)
	lastAttempt := time.Now().Add(-5 * time.Minute)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("alice", "username", sqlmock.AnyArg()).
		WillReturnRows(countRows(5, lastAttempt))

	err := service.CheckLoginRateLimit(context.Background(), "alice", "192.168.1.1")
	require.Error(t, err)

	var rateLimitErr *RateLimitError
	require.True(t, errors.As(err, &rateLimitErr))
	assert.Equal(t, "username", rateLimitErr.Type)
	assert.Contains(t, rateLimitErr.Message, "Too many failed logins for this account")
	assert.True(t, rateLimitErr.RetryAfter.After(time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLoginRateLimit_IPExceeded(t *testing.T) {
	service, mock := setupRateLimitTest(t)
	lastAttempt := time.Now().Add(-30 * time.Minute)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("alice", "username", sqlmock.AnyArg()).
		WillReturnRows(countRows(2, lastAttempt))
	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("192.168.1.1", "ip", sqlmock.AnyArg()).
		WillReturnRows(countRows(20, lastAttempt))

	err := service.CheckLoginRateLimit(context.Background(), "alice", "192.168.1.1")

	var rateLimitErr *RateLimitError
	require.True(t, errors.As(err, &rateLimitErr))
	assert.Equal(t, "ip", rateLimitErr.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLoginRateLimit_DatabaseError(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("alice", "username", sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	err := service.CheckLoginRateLimit(context.Background(), "alice", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check username rate limit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFailedLogin(t *testing.T) {
	t.Run("username and ip", func(t *testing.T) {
		service, mock := setupRateLimitTest(t)

		mock.ExpectExec("INSERT INTO login_attempts").
			WithArgs("alice", "username").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO login_attempts").
			WithArgs("192.168.1.1", "ip").
			WillReturnResult(sqlmock.NewResult(2, 1))

		assert.NoError(t, service.RecordFailedLogin(context.Background(), "alice", "192.168.1.1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ip only", func(t *testing.T) {
		service, mock := setupRateLimitTest(t)

		mock.ExpectExec("INSERT INTO login_attempts").
			WithArgs("192.168.1.1", "ip").
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, service.RecordFailedLogin(context.Background(), "", "192.168.1.1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClearFailedLogins(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	mock.ExpectExec("DELETE FROM login_attempts WHERE identifier = \\$1").
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, service.ClearFailedLogins(context.Background(), "alice"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupExpiredRateLimits(t *testing.T) {
	service, mock := setupRateLimitTest(t)

	mock.ExpectExec("DELETE FROM login_attempts").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 10))

	rowsAffected, err := service.CleanupExpiredRateLimits(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(10), rowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultRateLimitConfig(t *testing.T) {
	config := DefaultRateLimitConfig()

	assert.Equal(t, 5, config.MaxUsernameAttempts)
	assert.Equal(t, 15*time.Minute, config.UsernameWindow)
	assert.Equal(t, 20, config.MaxIPAttempts)
	assert.Equal(t, 1*time.Hour, config.IPWindow)
}
