package jwt

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret-key-for-testing-purposes"
	testRefreshSecret = "test-refresh-secret-key-for-testing-purposes"
)

func newTestService() *Service {
	return NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
}

func TestNewService(t *testing.T) {
	service := newTestService()

	assert.NotNil(t, service)
	assert.Equal(t, testAccessSecret, service.accessSecret)
	assert.Equal(t, testRefreshSecret, service.refreshSecret)
	assert.Equal(t, time.Hour, service.AccessTokenExpiry())
	assert.Equal(t, 24*time.Hour, service.RefreshTokenExpiry())
}

func TestGenerateAccessToken(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "jdoe", "customer")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestGenerateRefreshToken(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateRefreshToken(userID, "jdoe")
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Empty(t, claims.Role)
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	first, err := service.GenerateRefreshToken(userID, "jdoe")
	require.NoError(t, err)
	second, err := service.GenerateRefreshToken(userID, "jdoe")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "jdoe", "admin")
	require.NoError(t, err)

	wrongService := NewService("wrong-secret", testRefreshSecret, time.Hour, 24*time.Hour)
	_, err = wrongService.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateToken_TypeMismatch(t *testing.T) {
	// Same secret for both so only the token_type check can reject
	service := NewService(testAccessSecret, testAccessSecret, time.Hour, 24*time.Hour)
	userID := uuid.New()

	refreshToken, err := service.GenerateRefreshToken(userID, "jdoe")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refreshToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token type")

	accessToken, err := service.GenerateAccessToken(userID, "jdoe", "customer")
	require.NoError(t, err)

	_, err = service.ValidateRefreshToken(accessToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token type")
}

func TestExpiredToken(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, -time.Minute, time.Hour)

	token, err := service.GenerateAccessToken(uuid.New(), "jdoe", "customer")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	require.Error(t, err)
	assert.True(t, IsExpired(err))
}

func TestIsExpired_OnlyForExpiry(t *testing.T) {
	service := newTestService()

	_, err := service.ValidateAccessToken("invalid.token.here")
	require.Error(t, err)
	assert.False(t, IsExpired(err))

	other := NewService("another-access-secret", testRefreshSecret, time.Hour, time.Hour)
	token, err := other.GenerateAccessToken(uuid.New(), "jdoe", "customer")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	require.Error(t, err)
	assert.False(t, IsExpired(err))

	assert.False(t, IsExpired(nil))
}

func TestTokenSigningMethod(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateAccessToken(uuid.New(), "jdoe", "customer")
	require.NoError(t, err)

	parsedToken, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testAccessSecret), nil
	})
	require.NoError(t, err)

	_, ok := parsedToken.Method.(*jwt.SigningMethodHMAC)
	assert.True(t, ok, "Token should use HMAC signing method")
}

func TestTokenIssuerAndSubject(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "jdoe", "customer")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "flightdesk-booking", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := newTestService()

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := service.GenerateAccessToken(uuid.New(), "jdoe", "customer")
			if err != nil {
				errs <- err
				return
			}
			if _, err := service.ValidateAccessToken(token); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	assert.Empty(t, errs)
}
