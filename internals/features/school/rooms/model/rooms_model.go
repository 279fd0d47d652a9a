// internals/features/school/rooms/model/rooms_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomModel struct {
	RoomID        uuid.UUID `gorm:"column:room_id;type:uuid;primaryKey" json:"room_id"`
	RoomName      string    `gorm:"column:room_name;type:varchar(100);not null;uniqueIndex:uq_rooms_name_number" json:"room_name"`
	RoomNumber    string    `gorm:"column:room_number;type:varchar(20);not null;uniqueIndex:uq_rooms_name_number" json:"room_number"`
	RoomCreatedAt time.Time `gorm:"column:room_created_at;autoCreateTime" json:"room_created_at"`
}

func (RoomModel) TableName() string {
	return "rooms"
}

func (m *RoomModel) BeforeCreate(tx *gorm.DB) error {
	if m.RoomID == uuid.Nil {
		m.RoomID = uuid.New()
	}
	return nil
}
