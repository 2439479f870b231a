package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/flightdesk/booking-backend/internal/database"
)

// CronService runs housekeeping jobs for tokens, login throttling and audit logs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo *database.RefreshTokenRepository
	rateLimitService *RateLimitService
	auditService     *AuditService
	auditRetention   time.Duration
	logger           *logrus.Logger
}

// NewCronService creates a new CronService. An auditRetention of zero keeps audit logs forever.
func NewCronService(
	refreshTokenRepo *database.RefreshTokenRepository,
	rateLimitService *RateLimitService,
	auditService *AuditService,
	auditRetention time.Duration,
	logger *logrus.Logger,
) *CronService {
	return &CronService{
		cron:             cron.New(cron.WithSeconds()),
		refreshTokenRepo: refreshTokenRepo,
		rateLimitService: rateLimitService,
		auditService:     auditService,
		auditRetention:   auditRetention,
		logger:           logger,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	// Cron format: second minute hour day month weekday
	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{"0 0 * * * *", "Cleanup refresh tokens (hourly)", s.cleanupRefreshTokensJob},
		{"0 */15 * * * *", "Cleanup login attempts (every 15 minutes)", s.cleanupLoginAttemptsJob},
	}
	if s.auditRetention > 0 {
		jobs = append(jobs, struct {
			spec string
			name string
			run  func()
		}{"0 0 3 * * *", "Cleanup audit logs (daily at 3:00 AM)", s.cleanupAuditLogsJob})
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("failed to schedule %q: %w", job.name, err)
		}
		s.logger.WithField("job", job.name).Info("Scheduled cron job")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) cleanupRefreshTokensJob() {
	s.runJob("cleanup_refresh_tokens", func(ctx context.Context) (int64, error) {
		return s.refreshTokenRepo.CleanupExpired(ctx, 7*24*time.Hour)
	})
}

func (s *CronService) cleanupLoginAttemptsJob() {
	s.runJob("cleanup_login_attempts", s.rateLimitService.CleanupExpiredRateLimits)
}

func (s *CronService) cleanupAuditLogsJob() {
	s.runJob("cleanup_audit_logs", func(ctx context.Context) (int64, error) {
		return s.auditService.CleanupOldAuditLogs(ctx, s.auditRetention)
	})
}

func (s *CronService) runJob(name string, job func(ctx context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	removed, err := job(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("job", name).Error("Cron job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"job":         name,
		"removed":     removed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Cron job completed")
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
