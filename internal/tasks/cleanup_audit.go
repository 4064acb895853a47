package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"
)

const defaultAuditRetentionDays = 30

// AuditEventCleaner provides the ability to delete old audit events.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupRecorder counts cleanup runs.
type CleanupRecorder interface {
	RecordAuditCleanup(success bool)
}

// CleanupAuditEventsTask removes audit events older than the configured retention period.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
// recorder and logger may be nil.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, recorder CleanupRecorder, logger logrus.FieldLogger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = defaultAuditRetentionDays
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := cleaner.DeleteOldEvents(ctx, retention)
		if recorder != nil {
			recorder.RecordAuditCleanup(err == nil)
		}
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"deleted":        deleted,
			"retention_days": retentionDays,
		}).Info("cleaned up audit events")
		return nil
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, recorder CleanupRecorder, logger logrus.FieldLogger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, recorder, logger))
}

// EnqueueAuditCleanup adds a cleanup task to the queue.
func (c *Client) EnqueueAuditCleanup(retentionDays int) error {
	if _, err := c.Add(CleanupAuditEventsTask{RetentionDays: retentionDays}).Save(); err != nil {
		return fmt.Errorf("enqueue audit cleanup: %w", err)
	}
	return nil
}

// InlineAuditCleanup runs the cleanup synchronously when the task queue is
// disabled.
type InlineAuditCleanup struct {
	process backlite.QueueProcessor[CleanupAuditEventsTask]
	timeout time.Duration
}

func NewInlineAuditCleanup(cleaner AuditEventCleaner, recorder CleanupRecorder, logger logrus.FieldLogger) *InlineAuditCleanup {
	return &InlineAuditCleanup{
		process: CleanupAuditEventsProcessor(cleaner, recorder, logger),
		timeout: CleanupAuditEventsTask{}.Config().Timeout,
	}
}

func (i *InlineAuditCleanup) EnqueueAuditCleanup(retentionDays int) error {
	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()
	return i.process(ctx, CleanupAuditEventsTask{RetentionDays: retentionDays})
}
