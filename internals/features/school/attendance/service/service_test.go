// internals/features/school/attendance/service/service_test.go
package service

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	attendanceModel "presensiku_backend/internals/features/school/attendance/model"
	courseModel "presensiku_backend/internals/features/school/courses/model"
	roomModel "presensiku_backend/internals/features/school/rooms/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&roomModel.RoomModel{},
		&courseModel.CourseModel{},
		&courseModel.StudentCourseModel{},
		&attendanceModel.AttendanceModel{},
		&attendanceModel.AttendanceSessionModel{},
	))
	return db
}

func enroll(t *testing.T, db *gorm.DB, courseID uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		uid := uuid.New()
		require.NoError(t, db.Create(&courseModel.StudentCourseModel{
			StudentCourseUserID:   uid,
			StudentCourseCourseID: courseID,
		}).Error)
		ids = append(ids, uid)
	}
	return ids
}

func TestEnsureRowsCreatesAbsentRows(t *testing.T) {
	db := newTestDB(t)

	course := courseModel.CourseModel{CourseCode: "MATH101", CourseName: "Matematika"}
	require.NoError(t, db.Create(&course).Error)
	enroll(t, db, course.CourseID, 5)

	created, err := EnsureRows(db, []uuid.UUID{course.CourseID}, "2026-09-01")
	require.NoError(t, err)
	require.EqualValues(t, 5, created)

	var rows []attendanceModel.AttendanceModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 5)
	for _, r := range rows {
		require.Equal(t, attendanceModel.AttendanceAbsent, r.AttendanceStatus)
		require.Equal(t, "--", r.AttendanceTime)
		require.Equal(t, "2026-09-01", r.AttendanceDate)
	}
}

func TestEnsureRowsIdempotent(t *testing.T) {
	db := newTestDB(t)

	course := courseModel.CourseModel{CourseCode: "SCI101", CourseName: "IPA"}
	require.NoError(t, db.Create(&course).Error)
	students := enroll(t, db, course.CourseID, 3)

	_, err := EnsureRows(db, []uuid.UUID{course.CourseID}, "2026-09-01")
	require.NoError(t, err)

	// Siswa pertama sudah mark hadir; rekonsiliasi ulang tidak boleh
	// menyentuh recordnya.
	require.NoError(t, db.Model(&attendanceModel.AttendanceModel{}).
		Where("attendance_user_id = ?", students[0]).
		Updates(map[string]interface{}{
			"attendance_status": attendanceModel.AttendancePresent,
			"attendance_time":   "08:05",
		}).Error)

	created, err := EnsureRows(db, []uuid.UUID{course.CourseID}, "2026-09-01")
	require.NoError(t, err)
	require.EqualValues(t, 0, created)

	var marked attendanceModel.AttendanceModel
	require.NoError(t, db.Where("attendance_user_id = ?", students[0]).First(&marked).Error)
	require.Equal(t, attendanceModel.AttendancePresent, marked.AttendanceStatus)
	require.Equal(t, "08:05", marked.AttendanceTime)

	var count int64
	require.NoError(t, db.Model(&attendanceModel.AttendanceModel{}).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestEnsureRowsEmptyCourseList(t *testing.T) {
	db := newTestDB(t)
	created, err := EnsureRows(db, nil, "2026-09-01")
	require.NoError(t, err)
	require.Zero(t, created)
}

func TestCoursesInRoomSessionOverride(t *testing.T) {
	db := newTestDB(t)

	roomA := roomModel.RoomModel{RoomName: "Lab Komputer", RoomNumber: "101"}
	roomB := roomModel.RoomModel{RoomName: "Aula", RoomNumber: "201"}
	require.NoError(t, db.Create(&roomA).Error)
	require.NoError(t, db.Create(&roomB).Error)

	// Course default di room A
	inRoomA := courseModel.CourseModel{CourseCode: "CS1", CourseName: "Informatika", CourseRoomID: &roomA.RoomID}
	require.NoError(t, db.Create(&inRoomA).Error)

	// Course default di room B, tapi sesi hari ini pindah ke room A
	moved := courseModel.CourseModel{CourseCode: "BIO1", CourseName: "Biologi", CourseRoomID: &roomB.RoomID}
	require.NoError(t, db.Create(&moved).Error)
	require.NoError(t, db.Create(&attendanceModel.AttendanceSessionModel{
		AttendanceSessionCourseID: moved.CourseID,
		AttendanceSessionDate:     "2026-09-01",
		AttendanceSessionCode:     "AB12CD",
		AttendanceSessionRoomID:   &roomA.RoomID,
	}).Error)

	ids, err := CoursesInRoom(db, roomA.RoomID, "2026-09-01")
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{inRoomA.CourseID, moved.CourseID}, ids)

	// Di room B tanggal itu tidak ada course efektif: sesi memindahkan
	// BIO1 keluar.
	ids, err = CoursesInRoom(db, roomB.RoomID, "2026-09-01")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestGenerateSessionCodeFormat(t *testing.T) {
	db := newTestDB(t)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		code, err := GenerateSessionCode(db)
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.Regexp(t, "^[0-9A-F]{6}$", code)
		seen[code] = true
	}
	// 10 kode acak dari ruang 16^6 nyaris mustahil tabrakan
	require.Len(t, seen, 10)
}

func TestGenerateSessionCodeSkipsExisting(t *testing.T) {
	db := newTestDB(t)

	course := courseModel.CourseModel{CourseCode: "X1", CourseName: "X"}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&attendanceModel.AttendanceSessionModel{
		AttendanceSessionCourseID: course.CourseID,
		AttendanceSessionDate:     "2026-09-01",
		AttendanceSessionCode:     "AAAAAA",
	}).Error)

	code, err := GenerateSessionCode(db)
	require.NoError(t, err)
	require.NotEqual(t, "AAAAAA", code)
}
