// internals/features/school/courses/model/courses_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"presensiku_backend/internals/helpers/dbtime"
)

type CourseModel struct {
	CourseID   uuid.UUID `gorm:"column:course_id;type:uuid;primaryKey" json:"course_id"`
	CourseCode string    `gorm:"column:course_code;type:varchar(20);not null;uniqueIndex:uq_courses_code" json:"course_code"`
	CourseName string    `gorm:"column:course_name;type:varchar(100);not null" json:"course_name"`

	// Ruangan default (boleh kosong; sesi bisa override per tanggal)
	CourseRoomID *uuid.UUID `gorm:"column:course_room_id;type:uuid;index" json:"course_room_id,omitempty"`

	// Jadwal berulang opsional: tag hari ("Sun".."Sat") + jam mulai/selesai
	CourseDays      pq.StringArray `gorm:"column:course_days;type:text[]" json:"course_days,omitempty"`
	CourseStartTime *dbtime.Tod    `gorm:"column:course_start_time;type:time" json:"course_start_time,omitempty"`
	CourseEndTime   *dbtime.Tod    `gorm:"column:course_end_time;type:time" json:"course_end_time,omitempty"`

	CourseCreatedAt time.Time `gorm:"column:course_created_at;autoCreateTime" json:"course_created_at"`
	CourseUpdatedAt time.Time `gorm:"column:course_updated_at;autoUpdateTime" json:"course_updated_at"`
}

func (CourseModel) TableName() string {
	return "courses"
}

func (m *CourseModel) BeforeCreate(tx *gorm.DB) error {
	if m.CourseID == uuid.Nil {
		m.CourseID = uuid.New()
	}
	return nil
}

// MeetsOn: true jika jadwal berulang course mencakup tag hari tsb.
func (m *CourseModel) MeetsOn(dayTag string) bool {
	for _, d := range m.CourseDays {
		if d == dayTag {
			return true
		}
	}
	return false
}
