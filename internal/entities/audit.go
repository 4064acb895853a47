package entities

import "time"

type AuditAction string

const (
	AuditActionCreated AuditAction = "created"
	AuditActionUpdated AuditAction = "updated"
	AuditActionPatched AuditAction = "patched"
	AuditActionDeleted AuditAction = "deleted"
)

// AuditEvent records one successful change to an entity.
type AuditEvent struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Principal  string      `gorm:"index;size:50" json:"principal"` // Login, or "anonymousUser" when auth is off
	Action     AuditAction `gorm:"size:20" json:"action"`
	EntityType string      `gorm:"index;size:50" json:"entity_type"`
	EntityID   int64       `gorm:"index" json:"entity_id"`
	IPAddress  string      `gorm:"size:45" json:"ip_address,omitempty"`
	RequestID  string      `gorm:"size:64" json:"request_id,omitempty"`
	CreatedAt  time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
