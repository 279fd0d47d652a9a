// internals/features/school/attendance/service/reconcile.go
package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"presensiku_backend/internals/features/school/attendance/model"
	courseModel "presensiku_backend/internals/features/school/courses/model"
	"presensiku_backend/internals/helpers/dbtime"
)

// CoursesInRoom: course yang EFEKTIF berada di room tsb pada tanggal tsb.
// Room sesi (kalau ada) menang atas room default course.
func CoursesInRoom(db *gorm.DB, roomID uuid.UUID, date string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&courseModel.CourseModel{}).
		Select("courses.course_id").
		Joins(`LEFT JOIN attendance_sessions s
			ON s.attendance_session_course_id = courses.course_id
			AND s.attendance_session_date = ?`, date).
		Where(`s.attendance_session_room_id = ?
			OR (s.attendance_session_room_id IS NULL AND courses.course_room_id = ?)`,
			roomID, roomID).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// EnsureRows mengisi baris absensi yang hilang untuk (course, date):
// satu baris Absent/"--" per siswa terdaftar yang belum punya record.
// Insert pakai ON CONFLICT DO NOTHING sehingga record yang sudah di-mark
// tidak pernah tersentuh; aman dipanggil berulang dan paralel.
func EnsureRows(db *gorm.DB, courseIDs []uuid.UUID, date string) (int64, error) {
	if len(courseIDs) == 0 {
		return 0, nil
	}

	var created int64
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, cid := range courseIDs {
			var userIDs []uuid.UUID
			if err := tx.Model(&courseModel.StudentCourseModel{}).
				Where("student_course_course_id = ?", cid).
				Pluck("student_course_user_id", &userIDs).Error; err != nil {
				return err
			}
			if len(userIDs) == 0 {
				continue
			}

			rows := make([]model.AttendanceModel, 0, len(userIDs))
			for _, uid := range userIDs {
				rows = append(rows, model.AttendanceModel{
					AttendanceUserID:   uid,
					AttendanceCourseID: cid,
					AttendanceDate:     date,
					AttendanceTime:     dbtime.TimePlaceholder,
					AttendanceStatus:   model.AttendanceAbsent,
				})
			}

			res := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "attendance_user_id"},
					{Name: "attendance_course_id"},
					{Name: "attendance_date"},
				},
				DoNothing: true,
			}).Create(&rows)
			if res.Error != nil {
				return res.Error
			}
			created += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
