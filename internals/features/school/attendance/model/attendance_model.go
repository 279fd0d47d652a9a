// internals/features/school/attendance/model/attendance_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceExcused AttendanceStatus = "Excused"
)

func ValidAttendanceStatus(s string) bool {
	switch AttendanceStatus(s) {
	case AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceModel: tepat satu baris per (user, course, date).
// Baris dibuat oleh rekonsiliasi (default Absent, time "--") lalu
// di-overwrite oleh self-mark / edit staff. Tidak pernah dihapus kecuali
// cascade hapus user/course/sesi.
type AttendanceModel struct {
	AttendanceID       uuid.UUID        `gorm:"column:attendance_id;type:uuid;primaryKey" json:"attendance_id"`
	AttendanceUserID   uuid.UUID        `gorm:"column:attendance_user_id;type:uuid;not null;uniqueIndex:uq_attendance_user_course_date" json:"attendance_user_id"`
	AttendanceCourseID uuid.UUID        `gorm:"column:attendance_course_id;type:uuid;not null;uniqueIndex:uq_attendance_user_course_date" json:"attendance_course_id"`
	AttendanceDate     string           `gorm:"column:attendance_date;type:varchar(10);not null;uniqueIndex:uq_attendance_user_course_date;index:idx_attendance_date" json:"attendance_date"`
	AttendanceTime     string           `gorm:"column:attendance_time;type:varchar(5);not null;default:--" json:"attendance_time"`
	AttendanceStatus   AttendanceStatus `gorm:"column:attendance_status;type:varchar(10);not null" json:"attendance_status"`

	AttendanceCreatedAt time.Time `gorm:"column:attendance_created_at;autoCreateTime" json:"attendance_created_at"`
	AttendanceUpdatedAt time.Time `gorm:"column:attendance_updated_at;autoUpdateTime" json:"attendance_updated_at"`
}

func (AttendanceModel) TableName() string {
	return "attendance"
}

func (m *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceID == uuid.Nil {
		m.AttendanceID = uuid.New()
	}
	return nil
}
