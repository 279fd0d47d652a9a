// internals/features/school/attendance/scheduler/auto_absent_test.go
package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	attendanceModel "presensiku_backend/internals/features/school/attendance/model"
	courseModel "presensiku_backend/internals/features/school/courses/model"
	"presensiku_backend/internals/helpers/dbtime"
)

// 2026-09-01 jatuh hari Selasa ("Tue").
var tuesdayEvening = time.Date(2026, 9, 1, 18, 0, 0, 0, time.Local)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&courseModel.CourseModel{},
		&courseModel.StudentCourseModel{},
		&attendanceModel.AttendanceModel{},
		&attendanceModel.AttendanceSessionModel{},
	))
	return db
}

func tod(t *testing.T, s string) *dbtime.Tod {
	t.Helper()
	v, err := dbtime.Parse(s)
	require.NoError(t, err)
	return &v
}

func newCourse(t *testing.T, db *gorm.DB, code string, days []string, start, end string) courseModel.CourseModel {
	t.Helper()
	c := courseModel.CourseModel{
		CourseCode: code,
		CourseName: code,
	}
	if len(days) > 0 {
		c.CourseDays = pq.StringArray(days)
	}
	if start != "" {
		c.CourseStartTime = tod(t, start)
	}
	if end != "" {
		c.CourseEndTime = tod(t, end)
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func enrollOne(t *testing.T, db *gorm.DB, courseID uuid.UUID) uuid.UUID {
	t.Helper()
	uid := uuid.New()
	require.NoError(t, db.Create(&courseModel.StudentCourseModel{
		StudentCourseUserID:   uid,
		StudentCourseCourseID: courseID,
	}).Error)
	return uid
}

func countRows(t *testing.T, db *gorm.DB, courseID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&attendanceModel.AttendanceModel{}).
		Where("attendance_course_id = ?", courseID).Count(&n).Error)
	return n
}

func TestRunOnceRecurringSchedule(t *testing.T) {
	db := newTestDB(t)

	// Jam selesai 17:00, sekarang 18:00 => due
	ended := newCourse(t, db, "DUE", []string{"Tue"}, "08:00", "17:00")
	enrollOne(t, db, ended.CourseID)

	// Jam selesai 20:00, masih berjalan => belum due
	running := newCourse(t, db, "RUNNING", []string{"Tue"}, "08:00", "20:00")
	enrollOne(t, db, running.CourseID)

	// Jadwal berulang tidak mencakup Selasa => dilewati
	otherDay := newCourse(t, db, "OTHERDAY", []string{"Mon"}, "08:00", "09:00")
	enrollOne(t, db, otherDay.CourseID)

	s := NewAutoAbsentScheduler(db, time.Minute)
	created, err := s.RunOnce(tuesdayEvening)
	require.NoError(t, err)
	require.EqualValues(t, 1, created)

	require.EqualValues(t, 1, countRows(t, db, ended.CourseID))
	require.EqualValues(t, 0, countRows(t, db, running.CourseID))
	require.EqualValues(t, 0, countRows(t, db, otherDay.CourseID))
}

func TestRunOnceSessionOverridesSchedule(t *testing.T) {
	db := newTestDB(t)

	// Jadwal berulang bilang kelas sampai 20:00, tapi sesi hari ini
	// selesai lebih cepat (16:00) => sudah due jam 18:00.
	c := newCourse(t, db, "SHORT", []string{"Tue"}, "08:00", "20:00")
	enrollOne(t, db, c.CourseID)
	require.NoError(t, db.Create(&attendanceModel.AttendanceSessionModel{
		AttendanceSessionCourseID: c.CourseID,
		AttendanceSessionDate:     "2026-09-01",
		AttendanceSessionCode:     "C0FFEE",
		AttendanceSessionStart:    *tod(t, "08:00"),
		AttendanceSessionEnd:      tod(t, "16:00"),
	}).Error)

	s := NewAutoAbsentScheduler(db, time.Minute)
	created, err := s.RunOnce(tuesdayEvening)
	require.NoError(t, err)
	require.EqualValues(t, 1, created)
}

func TestRunOnceSessionWithoutSchedule(t *testing.T) {
	db := newTestDB(t)

	// Course tanpa jadwal berulang sama sekali: sesi ad-hoc hari ini
	// dengan end_time sendiri tetap disapu.
	c := newCourse(t, db, "ADHOC", nil, "", "")
	enrollOne(t, db, c.CourseID)
	require.NoError(t, db.Create(&attendanceModel.AttendanceSessionModel{
		AttendanceSessionCourseID: c.CourseID,
		AttendanceSessionDate:     "2026-09-01",
		AttendanceSessionCode:     "ADC0DE",
		AttendanceSessionStart:    *tod(t, "09:00"),
		AttendanceSessionEnd:      tod(t, "10:00"),
	}).Error)

	s := NewAutoAbsentScheduler(db, time.Minute)
	created, err := s.RunOnce(tuesdayEvening)
	require.NoError(t, err)
	require.EqualValues(t, 1, created)
}

func TestRunOnceNeverDemotes(t *testing.T) {
	db := newTestDB(t)

	c := newCourse(t, db, "MARKED", []string{"Tue"}, "08:00", "17:00")
	uid := enrollOne(t, db, c.CourseID)

	// Siswa sudah self-mark sebelum sweep jalan
	require.NoError(t, db.Create(&attendanceModel.AttendanceModel{
		AttendanceUserID:   uid,
		AttendanceCourseID: c.CourseID,
		AttendanceDate:     "2026-09-01",
		AttendanceTime:     "08:03",
		AttendanceStatus:   attendanceModel.AttendancePresent,
	}).Error)

	s := NewAutoAbsentScheduler(db, time.Minute)
	created, err := s.RunOnce(tuesdayEvening)
	require.NoError(t, err)
	require.Zero(t, created)

	var row attendanceModel.AttendanceModel
	require.NoError(t, db.Where("attendance_user_id = ?", uid).First(&row).Error)
	require.Equal(t, attendanceModel.AttendancePresent, row.AttendanceStatus)
	require.Equal(t, "08:03", row.AttendanceTime)
}

func TestRunOnceIdempotent(t *testing.T) {
	db := newTestDB(t)

	c := newCourse(t, db, "REPEAT", []string{"Tue"}, "08:00", "17:00")
	enrollOne(t, db, c.CourseID)

	s := NewAutoAbsentScheduler(db, time.Minute)
	created, err := s.RunOnce(tuesdayEvening)
	require.NoError(t, err)
	require.EqualValues(t, 1, created)

	created, err = s.RunOnce(tuesdayEvening)
	require.NoError(t, err)
	require.Zero(t, created)
	require.EqualValues(t, 1, countRows(t, db, c.CourseID))
}

func TestStartStopSafe(t *testing.T) {
	db := newTestDB(t)
	s := NewAutoAbsentScheduler(db, time.Hour)
	s.Start()
	s.Start() // no-op
	s.Stop()
	s.Stop() // no-op
}
