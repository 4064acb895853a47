package audit

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewService(auditRepo.NewRepository(db), nil), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		Principal:  "admin",
		Action:     entities.AuditActionCreated,
		EntityType: "book",
		EntityID:   3,
	}
	require.NoError(t, svc.Log(context.Background(), event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, entities.AuditActionCreated, saved.Action)
	assert.Equal(t, int64(3), saved.EntityID)
}

func TestService_LogChange(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("records principal and request details", func(t *testing.T) {
		svc.LogChange(Change{
			Principal:  "admin",
			Action:     entities.AuditActionPatched,
			EntityType: "book",
			EntityID:   9,
			IPAddress:  "10.0.0.1",
			RequestID:  "req-1",
		})
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("entity_id = ?", 9).First(&event).Error)
		assert.Equal(t, "admin", event.Principal)
		assert.Equal(t, entities.AuditActionPatched, event.Action)
		assert.Equal(t, "10.0.0.1", event.IPAddress)
		assert.Equal(t, "req-1", event.RequestID)
	})

	t.Run("missing principal is anonymousUser", func(t *testing.T) {
		svc.LogChange(Change{Action: entities.AuditActionDeleted, EntityType: "book", EntityID: 10})
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("entity_id = ?", 10).First(&event).Error)
		assert.Equal(t, "anonymousUser", event.Principal)
	})

	t.Run("long values are truncated", func(t *testing.T) {
		svc.LogChange(Change{
			Principal:  strings.Repeat("p", 80),
			Action:     entities.AuditActionCreated,
			EntityType: "book",
			EntityID:   11,
		})
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("entity_id = ?", 11).First(&event).Error)
		assert.Len(t, event.Principal, 50)
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{name: "short value untouched", in: "admin", maxLen: 50, want: "admin"},
		{name: "ascii cut at limit", in: "abcdef", maxLen: 4, want: "abcd"},
		{name: "two byte rune not split", in: "aé", maxLen: 2, want: "a"},
		{name: "three byte rune not split", in: "ab€", maxLen: 4, want: "ab"},
		{name: "limit on rune boundary", in: "éé", maxLen: 2, want: "é"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen))
		})
	}

	t.Run("long multibyte principal", func(t *testing.T) {
		got := truncate(strings.Repeat("é", 30)+"x", 50)
		assert.True(t, utf8.ValidString(got))
		assert.LessOrEqual(t, len(got), 50)
		assert.Equal(t, strings.Repeat("é", 25), got)
	})
}

func TestService_GetEntityHistory(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{Action: entities.AuditActionCreated, EntityType: "book", EntityID: 1}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{Action: entities.AuditActionUpdated, EntityType: "book", EntityID: 1}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{Action: entities.AuditActionCreated, EntityType: "book", EntityID: 2}))

	history, err := svc.GetEntityHistory(ctx, "book", 1)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{Action: entities.AuditActionCreated, CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{Action: entities.AuditActionCreated}))

	deleted, err := svc.DeleteOldEvents(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	db.Model(&entities.AuditEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
