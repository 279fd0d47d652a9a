// internals/features/school/announcements/model/announcements_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnouncementModel struct {
	AnnouncementID      uuid.UUID `gorm:"column:announcement_id;type:uuid;primaryKey" json:"announcement_id"`
	AnnouncementTitle   string    `gorm:"column:announcement_title;type:varchar(150);not null" json:"announcement_title"`
	AnnouncementContent string    `gorm:"column:announcement_content;type:text;not null" json:"announcement_content"`

	AnnouncementCreatedBy   *uuid.UUID `gorm:"column:announcement_created_by;type:uuid" json:"announcement_created_by,omitempty"`
	AnnouncementCreatedName string     `gorm:"column:announcement_created_name;type:varchar(100);not null" json:"announcement_created_name"`

	AnnouncementCreatedAt time.Time `gorm:"column:announcement_created_at;autoCreateTime;index:idx_announcements_created_at" json:"announcement_created_at"`
	AnnouncementUpdatedAt time.Time `gorm:"column:announcement_updated_at;autoUpdateTime" json:"announcement_updated_at"`
}

func (AnnouncementModel) TableName() string {
	return "announcements"
}

func (m *AnnouncementModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnnouncementID == uuid.Nil {
		m.AnnouncementID = uuid.New()
	}
	return nil
}
