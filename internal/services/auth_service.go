package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/pkg/jwt"
	"github.com/flightdesk/booking-backend/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "invalid username or password"

// AuthService handles account registration, login and token lifecycle
type AuthService struct {
	userRepo         *database.UserRepository
	refreshTokenRepo *database.RefreshTokenRepository
	jwtService       *jwt.Service
	validator        *validator.AccountValidator
	bcryptCost       int
	logger           *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *database.UserRepository,
	refreshTokenRepo *database.RefreshTokenRepository,
	jwtService *jwt.Service,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtService:       jwtService,
		validator:        validator.NewAccountValidator(),
		bcryptCost:       bcryptCost,
		logger:           logger,
	}
}

// Register creates an account. An empty role registers a customer.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	username, err := s.validator.ValidateUsername(req.Username)
	if err != nil {
		return nil, validation("%s", err.Error())
	}
	email, err := s.validator.ValidateEmail(req.Email)
	if err != nil {
		return nil, validation("%s", err.Error())
	}
	if err := s.validator.ValidatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, validation("%s", err.Error())
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleAdmin {
		return nil, validation("invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, serviceError("failed to hash password", err)
	}

	user := &models.User{Username: username, Email: email, Role: role}
	if err := s.userRepo.Add(ctx, user, string(hash)); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, conflict("username or email already registered")
		}
		return nil, fromRepository(err, "user")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("User registered")
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest, meta ClientMeta) (*models.LoginResponse, error) {
	user, hash, err := s.userRepo.GetCredentials(ctx, req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, unauthorized(invalidCredentials)
		}
		return nil, fromRepository(err, "user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, unauthorized(invalidCredentials)
	}

	return s.issueTokens(ctx, user, meta)
}

// RefreshToken rotates a valid refresh token into a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string, meta ClientMeta) (*models.LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, unauthorized("invalid refresh token")
	}

	stored, err := s.refreshTokenRepo.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, unauthorized("refresh token not recognised")
		}
		return nil, fromRepository(err, "refresh token")
	}
	if stored.Revoked {
		return nil, unauthorized("refresh token has been revoked")
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return nil, unauthorized("refresh token has expired")
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, unauthorized("account no longer exists")
		}
		return nil, fromRepository(err, "user")
	}

	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// lost a race with a concurrent refresh or logout
			return nil, unauthorized("refresh token has been revoked")
		}
		return nil, fromRepository(err, "refresh token")
	}

	return s.issueTokens(ctx, user, meta)
}

// Logout revokes a single refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return unauthorized("refresh token not found or already revoked")
		}
		return fromRepository(err, "refresh token")
	}
	return nil
}

// LogoutAll revokes every refresh token the user holds
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		return fromRepository(err, "refresh tokens")
	}
	return nil
}

// GetProfile returns the account for userID
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("user %s", userID))
	}
	return user, nil
}

// ListUsers lists every account. No accounts is NotFound.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fromRepository(err, "users")
	}
	return users, nil
}

// DeleteUser removes an account together with its credentials and tokens
func (s *AuthService) DeleteUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return nil, fromRepository(err, fmt.Sprintf("user %s", userID))
	}

	s.logger.WithField("user_id", userID).Info("User deleted")
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, meta ClientMeta) (*models.LoginResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, serviceError("failed to generate access token", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, serviceError("failed to generate refresh token", err)
	}

	expiresAt := time.Now().Add(s.jwtService.RefreshTokenExpiry())
	if err := s.refreshTokenRepo.Store(ctx, user.ID, refreshToken, meta.IPAddress, meta.UserAgent, expiresAt); err != nil {
		return nil, serviceError("failed to store refresh token", err)
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:         user,
	}, nil
}
