// internals/features/school/attendance/model/attendance_sessions_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/helpers/dbtime"
)

// AttendanceSessionModel: satu per (course, date). Kode acak pendek yang
// dipakai siswa untuk self-mark; jam mulai/selesai di sini meng-override
// jadwal default course untuk tanggal tsb.
type AttendanceSessionModel struct {
	AttendanceSessionID       uuid.UUID   `gorm:"column:attendance_session_id;type:uuid;primaryKey" json:"attendance_session_id"`
	AttendanceSessionCourseID uuid.UUID   `gorm:"column:attendance_session_course_id;type:uuid;not null;uniqueIndex:uq_attendance_sessions_course_date" json:"attendance_session_course_id"`
	AttendanceSessionDate     string      `gorm:"column:attendance_session_date;type:varchar(10);not null;uniqueIndex:uq_attendance_sessions_course_date;index:idx_attendance_sessions_date" json:"attendance_session_date"`
	AttendanceSessionCode     string      `gorm:"column:attendance_session_code;type:varchar(12);not null;uniqueIndex:uq_attendance_sessions_code" json:"attendance_session_code"`
	AttendanceSessionStart    dbtime.Tod  `gorm:"column:attendance_session_start_time;type:time;not null" json:"attendance_session_start_time"`
	AttendanceSessionEnd      *dbtime.Tod `gorm:"column:attendance_session_end_time;type:time" json:"attendance_session_end_time,omitempty"`
	AttendanceSessionRoomID   *uuid.UUID  `gorm:"column:attendance_session_room_id;type:uuid" json:"attendance_session_room_id,omitempty"`

	AttendanceSessionCreatedBy *uuid.UUID `gorm:"column:attendance_session_created_by;type:uuid" json:"attendance_session_created_by,omitempty"`
	AttendanceSessionCreatedAt time.Time  `gorm:"column:attendance_session_created_at;autoCreateTime" json:"attendance_session_created_at"`
}

func (AttendanceSessionModel) TableName() string {
	return "attendance_sessions"
}

func (m *AttendanceSessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceSessionID == uuid.Nil {
		m.AttendanceSessionID = uuid.New()
	}
	return nil
}
