// Package audit records entity changes made through the API.
package audit

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Change describes a successful write against an entity.
type Change struct {
	Principal  string
	Action     entities.AuditAction
	EntityType string
	EntityID   int64
	IPAddress  string
	RequestID  string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger logrus.FieldLogger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"action":      event.Action,
				"entity_type": event.EntityType,
				"entity_id":   event.EntityID,
			}).Error("failed to log audit event")
		}
	}()
}

// LogChange records an entity change in the background.
func (s *Service) LogChange(change Change) {
	principal := change.Principal
	if principal == "" {
		principal = "anonymousUser"
	}
	s.LogAsync(&entities.AuditEvent{
		Principal:  truncate(principal, 50),
		Action:     change.Action,
		EntityType: change.EntityType,
		EntityID:   change.EntityID,
		IPAddress:  truncate(change.IPAddress, 45),
		RequestID:  truncate(change.RequestID, 64),
		CreatedAt:  time.Now(),
	})
}

// Wait blocks until all pending asynchronous writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, limit, offset)
}

// GetEntityHistory returns every recorded change of one entity.
func (s *Service) GetEntityHistory(ctx context.Context, entityType string, entityID int64) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(ctx, entityType, entityID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen]
}
