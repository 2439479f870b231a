package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/config"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
	"github.com/flightdesk/booking-backend/pkg/jwt"
)

func main() {
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (defaults to $ADMIN_PASSWORD)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if *username == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	authService := services.NewAuthService(
		database.NewUserRepository(db),
		database.NewRefreshTokenRepository(db),
		jwtService,
		cfg.Security.BcryptCost,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := authService.Register(ctx, &models.RegisterRequest{
		Username:        *username,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *password,
		Role:            models.RoleAdmin,
	})
	if err != nil {
		logger.Fatalf("Failed to create admin: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("Admin account created")
}
