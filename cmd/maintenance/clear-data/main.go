package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/flightdesk/booking-backend/internal/config"
	"github.com/flightdesk/booking-backend/internal/database"
	"github.com/flightdesk/booking-backend/internal/services"
)

// lifecycle tables, children first
var bookingTables = []string{"refunds", "cancellations", "payments", "bookings"}

var catalogTables = []string{"sub_routes", "flight_routes", "flights"}

func main() {
	var dbURLFlag string
	var includeCatalog bool
	var auditDays int
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&includeCatalog, "catalog", false, "also truncate flights, routes and sub-routes")
	flag.IntVar(&auditDays, "audit-days", 90, "delete audit logs older than this many days (0 keeps all)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		Driver:             os.Getenv("DATABASE_DRIVER"),
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tables := bookingTables
	if includeCatalog {
		tables = append(append([]string{}, bookingTables...), catalogTables...)
	}

	fmt.Println("Connected to database. Truncating tables...")
	truncateSQL := "TRUNCATE TABLE "
	for i, t := range tables {
		if i > 0 {
			truncateSQL += ", "
		}
		truncateSQL += t
	}
	truncateSQL += " RESTART IDENTITY"

	if _, err := db.ExecContext(ctx, truncateSQL); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	// Expired and long-revoked refresh tokens
	removed, err := database.NewRefreshTokenRepository(db).CleanupExpired(ctx, 7*24*time.Hour)
	if err != nil {
		log.Fatalf("failed to clean up refresh tokens: %v", err)
	}
	fmt.Printf("Removed %d expired refresh tokens\n", removed)

	if auditDays > 0 {
		audit := services.NewAuditService(db, true)
		purged, err := audit.CleanupOldAuditLogs(ctx, time.Duration(auditDays)*24*time.Hour)
		if err != nil {
			log.Fatalf("failed to clean up audit logs: %v", err)
		}
		fmt.Printf("Removed %d audit log entries older than %d days\n", purged, auditDays)
	}

	// Verify by printing row counts for each table
	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
