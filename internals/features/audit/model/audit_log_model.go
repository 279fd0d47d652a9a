// internals/features/audit/model/audit_log_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLogModel: append-only. Nama aktor disnapshot saat tulis supaya
// riwayat tetap terbaca walau user-nya sudah dihapus.
type AuditLogModel struct {
	AuditLogID        uuid.UUID      `gorm:"column:audit_log_id;type:uuid;primaryKey" json:"audit_log_id"`
	AuditLogActorID   *uuid.UUID     `gorm:"column:audit_log_actor_id;type:uuid" json:"audit_log_actor_id,omitempty"`
	AuditLogActorName string         `gorm:"column:audit_log_actor_name;type:varchar(100);not null" json:"audit_log_actor_name"`
	AuditLogActorRole string         `gorm:"column:audit_log_actor_role;type:varchar(20);not null" json:"audit_log_actor_role"`
	AuditLogAction    string         `gorm:"column:audit_log_action;type:varchar(50);not null;index:idx_audit_logs_action" json:"audit_log_action"`
	AuditLogDetails   datatypes.JSON `gorm:"column:audit_log_details;type:jsonb" json:"audit_log_details,omitempty"`
	AuditLogCreatedAt time.Time      `gorm:"column:audit_log_created_at;autoCreateTime;index:idx_audit_logs_created_at" json:"audit_log_created_at"`
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}

func (m *AuditLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.AuditLogID == uuid.Nil {
		m.AuditLogID = uuid.New()
	}
	return nil
}
