package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of who did what, when.
type AuditLog struct {
	ID         uuid.UUID `json:"id"`
	ActorID    uuid.UUID `json:"actorId"`
	Action     string    `json:"action" example:"issue_voucher"`
	TargetType string    `json:"targetType" example:"voucher"`
	TargetID   uuid.UUID `json:"targetId"`
	Timestamp  time.Time `json:"timestamp"`
}

var ErrAuditLogImmutable = fmt.Errorf("%w: audit logs cannot be changed or deleted", ErrInvalidState)

func (l *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().In(time.UTC)
	}

	return nil
}

// Audit logs are append-only. Updates and deletes are refused at
// the model layer, the HTTP layer does not even route them.
func (l *AuditLog) BeforeUpdate(_ *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (l *AuditLog) BeforeDelete(_ *gorm.DB) error {
	return ErrAuditLogImmutable
}

// Export returns all audit logs on this instance for export.
func (AuditLog) Export() (json.RawMessage, error) {
	var logs []AuditLog
	err := DB.Where(&AuditLog{}).Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&logs)
}
