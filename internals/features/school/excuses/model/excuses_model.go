// internals/features/school/excuses/model/excuses_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExcuseStatus string

const (
	ExcusePending  ExcuseStatus = "Pending"
	ExcuseApproved ExcuseStatus = "Approved"
	ExcuseDenied   ExcuseStatus = "Denied"
)

// ExcuseModel: satu pengajuan izin per (user, date). Submit ulang pada
// tanggal yang sama meng-update alasan selama masih Pending; izin yang
// sudah diproses terkunci.
type ExcuseModel struct {
	ExcuseID     uuid.UUID    `gorm:"column:excuse_id;type:uuid;primaryKey" json:"excuse_id"`
	ExcuseUserID uuid.UUID    `gorm:"column:excuse_user_id;type:uuid;not null;uniqueIndex:uq_excuses_user_date" json:"excuse_user_id"`
	ExcuseDate   string       `gorm:"column:excuse_date;type:varchar(10);not null;uniqueIndex:uq_excuses_user_date" json:"excuse_date"`
	ExcuseReason string       `gorm:"column:excuse_reason;type:text;not null" json:"excuse_reason"`
	ExcuseStatus ExcuseStatus `gorm:"column:excuse_status;type:varchar(10);not null;default:Pending" json:"excuse_status"`

	ExcuseProcessedBy *uuid.UUID `gorm:"column:excuse_processed_by;type:uuid" json:"excuse_processed_by,omitempty"`
	ExcuseProcessedAt *time.Time `gorm:"column:excuse_processed_at" json:"excuse_processed_at,omitempty"`

	ExcuseCreatedAt time.Time `gorm:"column:excuse_created_at;autoCreateTime" json:"excuse_created_at"`
	ExcuseUpdatedAt time.Time `gorm:"column:excuse_updated_at;autoUpdateTime" json:"excuse_updated_at"`
}

func (ExcuseModel) TableName() string {
	return "excuses"
}

func (m *ExcuseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ExcuseID == uuid.Nil {
		m.ExcuseID = uuid.New()
	}
	return nil
}
