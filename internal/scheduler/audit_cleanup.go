package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// AuditCleanupEnqueuer hands a cleanup run to the task queue, or runs it
// inline when the queue is disabled.
type AuditCleanupEnqueuer interface {
	EnqueueAuditCleanup(retentionDays int) error
}

// AuditCleanupScheduler triggers audit retention cleanup on a cron schedule.
type AuditCleanupScheduler struct {
	enqueuer      AuditCleanupEnqueuer
	schedule      string
	retentionDays int
	logger        logrus.FieldLogger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditCleanupScheduler creates a new scheduler instance.
func NewAuditCleanupScheduler(enqueuer AuditCleanupEnqueuer, schedule string, retentionDays int, logger logrus.FieldLogger) *AuditCleanupScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuditCleanupScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		logger:        logger.WithField("component", "audit_cleanup_scheduler"),
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Start begins the scheduler. An empty schedule disables it.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		s.logger.Info("audit cleanup scheduler disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runCleanup)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.logger.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"next_run": s.cron.Entry(entryID).Next,
	}).Info("audit cleanup scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.logger.Info("audit cleanup scheduler stopped")
}

// RunNow triggers an immediate cleanup.
func (s *AuditCleanupScheduler) RunNow() {
	s.runCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur.
func (s *AuditCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	t := s.cron.Entry(s.entryID).Next
	return &t
}

func (s *AuditCleanupScheduler) runCleanup() {
	if err := s.enqueuer.EnqueueAuditCleanup(s.retentionDays); err != nil {
		s.logger.WithError(err).Error("audit cleanup failed")
		return
	}
	s.logger.WithField("retention_days", s.retentionDays).Debug("audit cleanup triggered")
}
