// internals/features/school/attendance/dto/attendance_dto.go
package dto

import "strings"

// OpenSessionRequest: buka (atau perbarui) sesi absensi course+tanggal.
type OpenSessionRequest struct {
	CourseID  string  `json:"course_id" validate:"required,uuid4"`
	Date      string  `json:"date" validate:"required,len=10"`
	StartTime string  `json:"start_time" validate:"required,len=5"`
	EndTime   string  `json:"end_time" validate:"omitempty,len=5"`
	RoomID    *string `json:"room_id" validate:"omitempty,uuid4"`
}

type UpdateSessionRequest struct {
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"omitempty,len=5"`
}

// UpdateAttendanceRequest: edit manual oleh staff, kunci baris pakai
// (date, student_code, course_id).
type UpdateAttendanceRequest struct {
	Date             string `json:"date" validate:"required,len=10"`
	StudentCode      string `json:"student_code" validate:"required"`
	Status           string `json:"status" validate:"required,oneof=Present Late Absent Excused"`
	CourseID         string `json:"course_id" validate:"required,uuid4"`
	SessionStartTime string `json:"session_start_time" validate:"omitempty,len=5"`
}

func (r *UpdateAttendanceRequest) Normalize() {
	r.StudentCode = strings.TrimSpace(r.StudentCode)
}

// MarkRequest: self-mark siswa via kode sesi.
type MarkRequest struct {
	Code string `json:"code" validate:"required"`
}

func (r *MarkRequest) Normalize() {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
}
