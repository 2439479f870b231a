package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/cache"
	"github.com/flightdesk/booking-backend/internal/config"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/events"
	"github.com/flightdesk/booking-backend/internal/handlers"
	"github.com/flightdesk/booking-backend/internal/middleware"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
	"github.com/flightdesk/booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting flight booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.WithField("driver", cfg.Database.Driver).Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Optional flight catalog cache
	var flightCache services.FlightCache
	redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Warnf("Redis unavailable, flight cache disabled: %v", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		flightCache = cache.NewFlightCache(redisClient, cfg.Redis.TTL)
		logger.WithField("addr", cfg.Redis.Addr).Info("Flight cache enabled")
	}

	// Optional lifecycle event publishing
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Warnf("RabbitMQ unavailable, events disabled: %v", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			logger.WithField("exchange", cfg.RabbitMQ.Exchange).Info("Event publishing enabled")
		}
	}

	// Initialize repositories
	flightRepo := database.NewFlightRepository(db)
	routeRepo := database.NewRouteRepository(db)
	subRouteRepo := database.NewSubRouteRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	cancellationRepo := database.NewCancellationRepository(db)
	refundRepo := database.NewRefundRepository(db)
	userRepo := database.NewUserRepository(db)
	refreshTokenRepo := database.NewRefreshTokenRepository(db)
	searchRepo := database.NewSearchRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(db, cfg.Security.EnableAuditLog)
	flightService := services.NewFlightService(flightRepo, routeRepo, subRouteRepo, flightCache, logger)
	bookingService := services.NewBookingService(bookingRepo, flightRepo, routeRepo, publisher, logger)
	paymentService := services.NewPaymentService(db, paymentRepo, bookingRepo, routeRepo, cfg.Booking.EnforceSeatFloor, publisher, logger)
	cancellationService := services.NewCancellationService(db, cancellationRepo, bookingRepo, paymentRepo, routeRepo, publisher, logger)
	refundService := services.NewRefundService(refundRepo, cancellationRepo, publisher, logger)
	searchService := services.NewSearchService(searchRepo, logger)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, jwtService, cfg.Security.BcryptCost, logger)
	rateLimitService := services.NewRateLimitService(db, services.RateLimitConfig{
		MaxUsernameAttempts: cfg.Security.LoginMaxAttempts,
		UsernameWindow:      cfg.Security.LoginWindow,
		MaxIPAttempts:       cfg.Security.LoginMaxIPAttempts,
		IPWindow:            cfg.Security.LoginIPWindow,
	})
	logger.Info("Services initialized")

	// Housekeeping jobs
	var cronService *services.CronService
	if cfg.Security.EnableMaintenance {
		cronService = services.NewCronService(refreshTokenRepo, rateLimitService, auditService, cfg.Security.AuditRetention, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		logger.Info("Cron service started")
	}

	// Initialize handlers
	flightHandler := handlers.NewFlightHandler(flightService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, auditService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, bookingService, auditService, logger)
	cancellationHandler := handlers.NewCancellationHandler(cancellationService, bookingService, auditService, logger)
	refundHandler := handlers.NewRefundHandler(refundService, cancellationService, bookingService, auditService, logger)
	authHandler := handlers.NewAuthHandler(authService, rateLimitService, auditService, logger)
	userHandler := handlers.NewUserHandler(authService, logger)
	searchHandler := handlers.NewSearchHandler(searchService, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	corsConfig.AllowMethods = cfg.CORS.AllowedMethods
	corsConfig.AllowHeaders = cfg.CORS.AllowedHeaders
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	auth := middleware.AuthMiddleware(jwtService)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.RefreshToken)
			authRoutes.POST("/logout", auth, authHandler.Logout)
		}

		search := v1.Group("/search")
		{
			search.GET("", searchHandler.SearchRoutes)
			search.GET("/autocomplete", searchHandler.GetLocationAutocomplete)
		}

		flights := v1.Group("/flights")
		{
			flights.GET("", flightHandler.ListFlights)
			flights.GET("/:id", flightHandler.GetFlight)
			flights.GET("/:id/routes", flightHandler.ListFlightRoutes)
			flights.POST("", auth, adminOnly, flightHandler.CreateFlight)
			flights.PUT("/:id", auth, adminOnly, flightHandler.UpdateFlight)
			flights.DELETE("/:id", auth, adminOnly, flightHandler.DeleteFlight)
		}

		routes := v1.Group("/routes")
		{
			routes.GET("", flightHandler.ListRoutes)
			routes.GET("/:id", flightHandler.GetRoute)
			routes.GET("/:id/sub-routes", flightHandler.ListRouteSubRoutes)
			routes.POST("", auth, adminOnly, flightHandler.CreateRoute)
			routes.PUT("/:id", auth, adminOnly, flightHandler.UpdateRoute)
			routes.DELETE("/:id", auth, adminOnly, flightHandler.DeleteRoute)
		}

		subRoutes := v1.Group("/sub-routes")
		{
			subRoutes.GET("", flightHandler.ListSubRoutes)
			subRoutes.GET("/:id", flightHandler.GetSubRoute)
			subRoutes.POST("", auth, adminOnly, flightHandler.CreateSubRoute)
			subRoutes.PUT("/:id", auth, adminOnly, flightHandler.UpdateSubRoute)
			subRoutes.DELETE("/:id", auth, adminOnly, flightHandler.DeleteSubRoute)
		}

		bookings := v1.Group("/bookings", auth)
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.GET("", adminOnly, bookingHandler.ListBookings)
			bookings.DELETE("/:id", adminOnly, bookingHandler.DeleteBooking)
		}

		payments := v1.Group("/payments", auth)
		{
			payments.POST("", paymentHandler.CreatePayment)
			payments.GET("/:id", paymentHandler.GetPayment)
			payments.GET("", adminOnly, paymentHandler.ListPayments)
			payments.DELETE("/:id", adminOnly, paymentHandler.DeletePayment)
		}

		cancellations := v1.Group("/cancellations", auth)
		{
			cancellations.POST("", cancellationHandler.CreateCancellation)
			cancellations.GET("/:id", cancellationHandler.GetCancellation)
			cancellations.GET("", adminOnly, cancellationHandler.ListCancellations)
		}

		refunds := v1.Group("/refunds", auth)
		{
			refunds.POST("", refundHandler.CreateRefund)
			refunds.GET("/:id", refundHandler.GetRefund)
			refunds.GET("", adminOnly, refundHandler.ListRefunds)
			refunds.PUT("/:id", adminOnly, refundHandler.UpdateRefund)
		}

		users := v1.Group("/users", auth)
		{
			users.GET("/me", authHandler.GetProfile)
			users.GET("/me/bookings", bookingHandler.ListMyBookings)
			users.GET("", adminOnly, userHandler.ListUsers)
			users.DELETE("/:id", adminOnly, userHandler.DeleteUser)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cronService != nil {
		cronService.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
			"has_auth":   c.GetHeader("Authorization") != "",
		}

		// Add user context if available
		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		if status >= 500 {
			entry.Error("Request completed with server error")
		} else if status >= 400 {
			entry.Warn("Request completed with client error")
		} else {
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
