package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/events"
	"github.com/flightdesk/booking-backend/internal/middleware"
	"github.com/flightdesk/booking-backend/internal/models"
	"github.com/flightdesk/booking-backend/internal/services"
	"github.com/flightdesk/booking-backend/pkg/jwt"
)

var (
	testTime = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	flightCols  = []string{"id", "flight_name", "seat_capacity", "created_at", "updated_at"}
	routeCols   = []string{"id", "flight_id", "departure_location", "departure_time", "arrival_location", "arrival_time", "seats_available", "price_per_person", "no_of_stops", "created_at", "updated_at"}
	bookingCols = []string{"id", "flight_id", "route_id", "user_id", "no_of_persons", "total_amount", "booking_date"}
	refundCols  = []string{"id", "cancellation_id", "refund_status", "refund_date", "updated_at"}
)

// setupTestDB creates a mock database for testing
func setupTestDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// testApp wires real services over a mocked database
type testApp struct {
	flights       *FlightHandler
	bookings      *BookingHandler
	payments      *PaymentHandler
	cancellations *CancellationHandler
	refunds       *RefundHandler
	auth          *AuthHandler
	users         *UserHandler
}

func newTestApp(db database.DB) *testApp {
	logger := testLogger()
	publisher := events.NoopPublisher{}

	flightRepo := database.NewFlightRepository(db)
	routeRepo := database.NewRouteRepository(db)
	subRouteRepo := database.NewSubRouteRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	cancellationRepo := database.NewCancellationRepository(db)
	refundRepo := database.NewRefundRepository(db)
	userRepo := database.NewUserRepository(db)
	refreshTokenRepo := database.NewRefreshTokenRepository(db)

	jwtService := jwt.NewService("test-secret", "test-refresh-secret", time.Hour, 7*24*time.Hour)
	// audit disabled so tests only expect lifecycle queries
	auditService := services.NewAuditService(db, false)

	flightService := services.NewFlightService(flightRepo, routeRepo, subRouteRepo, nil, logger)
	bookingService := services.NewBookingService(bookingRepo, flightRepo, routeRepo, publisher, logger)
	paymentService := services.NewPaymentService(db, paymentRepo, bookingRepo, routeRepo, true, publisher, logger)
	cancellationService := services.NewCancellationService(db, cancellationRepo, bookingRepo, paymentRepo, routeRepo, publisher, logger)
	refundService := services.NewRefundService(refundRepo, cancellationRepo, publisher, logger)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, jwtService, 4, logger)

	return &testApp{
		flights:       NewFlightHandler(flightService, logger),
		bookings:      NewBookingHandler(bookingService, auditService, logger),
		payments:      NewPaymentHandler(paymentService, bookingService, auditService, logger),
		cancellations: NewCancellationHandler(cancellationService, bookingService, auditService, logger),
		refunds:       NewRefundHandler(refundService, cancellationService, bookingService, auditService, logger),
		auth:          NewAuthHandler(authService, nil, auditService, logger),
		users:         NewUserHandler(authService, logger),
	}
}

// withUser simulates AuthMiddleware
func withUser(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID:   userID,
			Username: "tester",
			Role:     role,
		})
		c.Next()
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func bookingRow(id int64, owner *uuid.UUID, persons int, total float64) *sqlmock.Rows {
	var userID interface{}
	if owner != nil {
		userID = owner.String()
	}
	return sqlmock.NewRows(bookingCols).AddRow(id, int64(1), int64(4), userID, persons, total, testTime)
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		kind   services.Kind
		status int
	}{
		{services.KindNotFound, http.StatusNotFound},
		{services.KindValidation, http.StatusBadRequest},
		{services.KindCapacityExceeded, http.StatusConflict},
		{services.KindConflict, http.StatusConflict},
		{services.KindUnauthorized, http.StatusUnauthorized},
		{services.KindServiceError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, testLogger(), &services.Error{Kind: tt.kind, Message: "boom"})

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, string(tt.kind), decodeError(t, w).Code)
		})
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, testLogger(), assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "SERVICE_ERROR", resp.Code)
	assert.NotContains(t, resp.Message, assert.AnError.Error())
}

func TestGetFlight(t *testing.T) {
	db, mock := setupTestDB(t)
	app := newTestApp(db)
	r := newRouter()
	r.GET("/flights/:id", app.flights.GetFlight)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`FROM flights WHERE id = \$1`).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(flightCols).AddRow(int64(1), "FD101", 150, testTime, testTime))

		w := doJSON(r, http.MethodGet, "/flights/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var flight models.Flight
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flight))
		assert.Equal(t, "FD101", flight.FlightName)
		assert.Equal(t, 150, flight.SeatCapacity)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM flights WHERE id = \$1`).WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows(flightCols))

		w := doJSON(r, http.MethodGet, "/flights/9", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/flights/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFlight_RejectsBadBody(t *testing.T) {
	db, mock := setupTestDB(t)
	app := newTestApp(db)
	r := newRouter()
	r.POST("/flights", app.flights.CreateFlight)

	w := doJSON(r, http.MethodPost, "/flights", map[string]interface{}{"seat_capacity": 10})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking(t *testing.T) {
	userID := uuid.New()

	t.Run("prices the booking for the caller", func(t *testing.T) {
		db, mock := setupTestDB(t)
		app := newTestApp(db)
		r := newRouter()
		r.POST("/bookings", withUser(userID, models.RoleCustomer), app.bookings.CreateBooking)

		mock.ExpectQuery(`FROM flights WHERE id = \$1`).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(flightCols).AddRow(int64(1), "FD101", 150, testTime, testTime))
		mock.ExpectQuery(`FROM flight_routes WHERE id = \$1`).WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(routeCols).AddRow(int64(4), int64(1), "CMB", testTime, "DXB", testTime.Add(4*time.Hour), 30, 100.0, 0, testTime, testTime))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WithArgs(int64(1), int64(4), sqlmock.AnyArg(), 2, 200.0).
			WillReturnRows(bookingRow(11, &userID, 2, 200.0))

		w := doJSON(r, http.MethodPost, "/bookings", map[string]interface{}{
			"flight_id": 1, "route_id": 4, "no_of_persons": 2,
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var booking models.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, 200.0, booking.TotalAmount)
		require.NotNil(t, booking.UserID)
		assert.Equal(t, userID, *booking.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero persons is a validation error", func(t *testing.T) {
		db, mock := setupTestDB(t)
		app := newTestApp(db)
		r := newRouter()
		r.POST("/bookings", withUser(userID, models.RoleCustomer), app.bookings.CreateBooking)

		w := doJSON(r, http.MethodPost, "/bookings", map[string]interface{}{
			"flight_id": 1, "route_id": 4, "no_of_persons": 0,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires an authenticated caller", func(t *testing.T) {
		db, _ := setupTestDB(t)
		app := newTestApp(db)
		r := newRouter()
		r.POST("/bookings", app.bookings.CreateBooking)

		w := doJSON(r, http.MethodPost, "/bookings", map[string]interface{}{
			"flight_id": 1, "route_id": 4, "no_of_persons": 1,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetBooking_Ownership(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name   string
		caller uuid.UUID
		role   string
		want   int
	}{
		{"owner", owner, models.RoleCustomer, http.StatusOK},
		{"admin", stranger, models.RoleAdmin, http.StatusOK},
		{"other customer", stranger, models.RoleCustomer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			app := newTestApp(db)
			r := newRouter()
			r.GET("/bookings/:id", withUser(tt.caller, tt.role), app.bookings.GetBooking)

			mock.ExpectQuery(`FROM bookings WHERE id = \$1`).WithArgs(int64(11)).
				WillReturnRows(bookingRow(11, &owner, 2, 200.0))

			w := doJSON(r, http.MethodGet, "/bookings/11", nil)

			assert.Equal(t, tt.want, w.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreatePayment_CapacityExceeded(t *testing.T) {
	owner := uuid.New()
	db, mock := setupTestDB(t)
	app := newTestApp(db)
	r := newRouter()
	r.POST("/payments", withUser(owner, models.RoleCustomer), app.payments.CreatePayment)

	// ownership check, then the service's own lookups
	mock.ExpectQuery(`FROM bookings WHERE id = \$1`).WithArgs(int64(11)).WillReturnRows(bookingRow(11, &owner, 2, 200.0))
	mock.ExpectQuery(`FROM bookings WHERE id = \$1`).WithArgs(int64(11)).WillReturnRows(bookingRow(11, &owner, 2, 200.0))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM payments`).WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments`).WithArgs(int64(11), 200.0, "card").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "amount", "payment_method", "payment_date"}).AddRow(int64(21), int64(11), 200.0, "card", testTime))
	mock.ExpectQuery(`UPDATE flight_routes`).WithArgs(int64(4), -2).WillReturnRows(sqlmock.NewRows(routeCols))
	mock.ExpectQuery(`SELECT seats_available FROM flight_routes`).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available"}).AddRow(1))
	mock.ExpectRollback()

	w := doJSON(r, http.MethodPost, "/payments", map[string]interface{}{
		"booking_id": 11, "payment_method": "card",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", decodeError(t, w).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRefund(t *testing.T) {
	admin := uuid.New()

	t.Run("unknown status", func(t *testing.T) {
		db, mock := setupTestDB(t)
		app := newTestApp(db)
		r := newRouter()
		r.PUT("/refunds/:id", withUser(admin, models.RoleAdmin), app.refunds.UpdateRefund)

		mock.ExpectQuery(`FROM refunds WHERE id = \$1`).WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(refundCols).AddRow(int64(5), int64(3), "Initiated", testTime, testTime))

		w := doJSON(r, http.MethodPut, "/refunds/5", map[string]interface{}{"refund_status": "Lost"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("approved", func(t *testing.T) {
		db, mock := setupTestDB(t)
		app := newTestApp(db)
		r := newRouter()
		r.PUT("/refunds/:id", withUser(admin, models.RoleAdmin), app.refunds.UpdateRefund)

		mock.ExpectQuery(`FROM refunds WHERE id = \$1`).WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(refundCols).AddRow(int64(5), int64(3), "Initiated", testTime, testTime))
		mock.ExpectQuery(`UPDATE refunds`).WithArgs(int64(5), "Approved").
			WillReturnRows(sqlmock.NewRows(refundCols).AddRow(int64(5), int64(3), "Approved", testTime, testTime))

		w := doJSON(r, http.MethodPut, "/refunds/5", map[string]interface{}{"refund_status": "Approved"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var refund models.Refund
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refund))
		assert.Equal(t, models.RefundStatusApproved, refund.RefundStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db, mock := setupTestDB(t)
	app := newTestApp(db)
	r := newRouter()
	r.POST("/auth/login", app.auth.Login)

	mock.ExpectQuery(`JOIN user_info`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role", "created_at", "updated_at", "password_hash"}))

	w := doJSON(r, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "ghost", "password": "whatever1",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout_RequiresTokenOrLogoutAll(t *testing.T) {
	db, mock := setupTestDB(t)
	app := newTestApp(db)
	r := newRouter()
	r.POST("/auth/logout", withUser(uuid.New(), models.RoleCustomer), app.auth.Logout)

	w := doJSON(r, http.MethodPost, "/auth/logout", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_RejectsSelf(t *testing.T) {
	admin := uuid.New()
	db, mock := setupTestDB(t)
	app := newTestApp(db)
	r := newRouter()
	r.DELETE("/users/:id", withUser(admin, models.RoleAdmin), app.users.DeleteUser)

	w := doJSON(r, http.MethodDelete, "/users/"+admin.String(), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_RateLimited(t *testing.T) {
	db, mock := setupTestDB(t)
	logger := testLogger()
	authService := services.NewAuthService(
		database.NewUserRepository(db),
		database.NewRefreshTokenRepository(db),
		jwt.NewService("test-secret", "test-refresh-secret", time.Hour, 7*24*time.Hour),
		4,
		logger,
	)
	rateLimits := services.NewRateLimitService(db, services.DefaultRateLimitConfig())
	h := NewAuthHandler(authService, rateLimits, services.NewAuditService(db, false), logger)

	r := newRouter()
	r.POST("/auth/login", h.Login)

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("alice", "username", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "created_at"}).AddRow(5, time.Now()))

	w := doJSON(r, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "alice", "password": "whatever1",
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decodeError(t, w).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_RecordsFailure(t *testing.T) {
	db, mock := setupTestDB(t)
	logger := testLogger()
	authService := services.NewAuthService(
		database.NewUserRepository(db),
		database.NewRefreshTokenRepository(db),
		jwt.NewService("test-secret", "test-refresh-secret", time.Hour, 7*24*time.Hour),
		4,
		logger,
	)
	rateLimits := services.NewRateLimitService(db, services.DefaultRateLimitConfig())
	h := NewAuthHandler(authService, rateLimits, services.NewAuditService(db, false), logger)

	r := newRouter()
	r.POST("/auth/login", h.Login)

	// httptest requests come from 192.0.2.1
	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("ghost", "username", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "created_at"}).AddRow(0, time.Now()))
	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs(sqlmock.AnyArg(), "ip", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "created_at"}).AddRow(0, time.Now()))
	mock.ExpectQuery(`JOIN user_info`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role", "created_at", "updated_at", "password_hash"}))
	mock.ExpectExec("INSERT INTO login_attempts").WithArgs("ghost", "username").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO login_attempts").WithArgs(sqlmock.AnyArg(), "ip").WillReturnResult(sqlmock.NewResult(2, 1))

	w := doJSON(r, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "ghost", "password": "whatever1",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRoutes(t *testing.T) {
	db, mock := setupTestDB(t)
	h := NewSearchHandler(services.NewSearchService(database.NewSearchRepository(db), testLogger()), testLogger())
	r := newRouter()
	r.GET("/search", h.SearchRoutes)

	t.Run("missing destination", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/search?from=CMB", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("same origin and destination", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/search?from=CMB&to=cmb", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
	})

	t.Run("no results", func(t *testing.T) {
		mock.ExpectQuery(`FROM flight_routes fr`).
			WillReturnRows(sqlmock.NewRows([]string{"route_id"}))

		w := doJSON(r, http.MethodGet, "/search?from=CMB&to=DXB&seats=3", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.Contains(t, resp.Message, "3 seat(s)")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
