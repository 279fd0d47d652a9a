// internals/features/school/attendance/controller/attendance_controller_test.go
package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"presensiku_backend/internals/features/school/attendance/model"
	"presensiku_backend/internals/features/school/attendance/service"
	courseModel "presensiku_backend/internals/features/school/courses/model"
	"presensiku_backend/internals/helpers/dbtime"
)

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
		&model.AttendanceModel{},
		&model.AttendanceSessionModel{},
	))
	return db
}

func newMarkApp(db *gorm.DB, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("user_name", "Siswa Test")
		c.Locals("userRole", "student")
		return c.Next()
	})
	ctrl := NewAttendanceController(db)
	app.Post("/api/student/attendance/mark", ctrl.MarkByCode)
	return app
}

func mark(t *testing.T, app *fiber.App, code string) *http.Response {
	t.Helper()
	body, err := json.Marshal(fiber.Map{"code": code})
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, "/api/student/attendance/mark", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func openSession(t *testing.T, db *gorm.DB, date string, start dbtime.Tod, code string) model.AttendanceSessionModel {
	t.Helper()
	course := courseModel.CourseModel{CourseCode: "C-" + code, CourseName: "Kelas " + code}
	require.NoError(t, db.Create(&course).Error)
	sess := model.AttendanceSessionModel{
		AttendanceSessionCourseID: course.CourseID,
		AttendanceSessionDate:     date,
		AttendanceSessionCode:     code,
		AttendanceSessionStart:    start,
	}
	require.NoError(t, db.Create(&sess).Error)
	return sess
}

func TestMarkByCodeInvalidCode(t *testing.T) {
	db := newTestDB(t)
	app := newMarkApp(db, uuid.New())

	resp := mark(t, app, "ZZZZZZ")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMarkByCodeNotToday(t *testing.T) {
	db := newTestDB(t)
	app := newMarkApp(db, uuid.New())

	yesterday := dbtime.DateStr(time.Now().AddDate(0, 0, -1))
	openSession(t, db, yesterday, dbtime.From(time.Now()), "0LDDAY")

	resp := mark(t, app, "0LDDAY")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMarkByCodePresentWithinGrace(t *testing.T) {
	db := newTestDB(t)
	student := uuid.New()
	app := newMarkApp(db, student)

	// Sesi baru mulai 5 menit lalu => masih dalam grace
	start := dbtime.From(time.Now().Add(-5 * time.Minute))
	sess := openSession(t, db, dbtime.Today(), start, "FRE5H1")

	resp := mark(t, app, "FRE5H1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var row model.AttendanceModel
	require.NoError(t, db.Where("attendance_user_id = ? AND attendance_course_id = ?",
		student, sess.AttendanceSessionCourseID).First(&row).Error)
	require.Equal(t, model.AttendancePresent, row.AttendanceStatus)
	require.NotEqual(t, "--", row.AttendanceTime)
	require.Equal(t, dbtime.Today(), row.AttendanceDate)
}

func TestMarkByCodeLateAfterGrace(t *testing.T) {
	db := newTestDB(t)
	student := uuid.New()
	app := newMarkApp(db, student)

	// Sesi mulai 2 jam lalu => jauh lewat grace
	start := dbtime.From(time.Now().Add(-2 * time.Hour))
	sess := openSession(t, db, dbtime.Today(), start, "L4TE00")

	resp := mark(t, app, "L4TE00")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var row model.AttendanceModel
	require.NoError(t, db.Where("attendance_user_id = ? AND attendance_course_id = ?",
		student, sess.AttendanceSessionCourseID).First(&row).Error)
	require.Equal(t, model.AttendanceLate, row.AttendanceStatus)
}

func TestDeleteSessionCascadesThenRosterRepopulates(t *testing.T) {
	db := newTestDB(t)
	staff := uuid.New()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", staff.String())
		c.Locals("user_name", "Guru Test")
		c.Locals("userRole", "teacher")
		return c.Next()
	})
	sessions := NewSessionController(db)
	app.Delete("/api/attendance/sessions/:id", sessions.Delete)

	start := dbtime.From(time.Now())
	sess := openSession(t, db, dbtime.Today(), start, "DE1E7E")
	courseID := sess.AttendanceSessionCourseID

	// Dua siswa terdaftar, satu sudah di-mark
	students := []uuid.UUID{uuid.New(), uuid.New()}
	for _, uid := range students {
		require.NoError(t, db.Create(&courseModel.StudentCourseModel{
			StudentCourseUserID:   uid,
			StudentCourseCourseID: courseID,
		}).Error)
	}
	require.NoError(t, db.Create(&model.AttendanceModel{
		AttendanceUserID:   students[0],
		AttendanceCourseID: courseID,
		AttendanceDate:     dbtime.Today(),
		AttendanceTime:     "08:01",
		AttendanceStatus:   model.AttendancePresent,
	}).Error)

	req := httptest.NewRequest(fiber.MethodDelete,
		"/api/attendance/sessions/"+sess.AttendanceSessionID.String(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Sesi + seluruh absensi course+tanggal itu hilang
	var count int64
	require.NoError(t, db.Model(&model.AttendanceSessionModel{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&model.AttendanceModel{}).
		Where("attendance_course_id = ? AND attendance_date = ?", courseID, dbtime.Today()).
		Count(&count).Error)
	require.Zero(t, count)

	// Rekonsiliasi berikutnya mengisi ulang dari nol untuk semua siswa
	created, err := service.EnsureRows(db, []uuid.UUID{courseID}, dbtime.Today())
	require.NoError(t, err)
	require.EqualValues(t, 2, created)

	var rows []model.AttendanceModel
	require.NoError(t, db.Where("attendance_course_id = ?", courseID).Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.Equal(t, model.AttendanceAbsent, r.AttendanceStatus)
		require.Equal(t, "--", r.AttendanceTime)
	}
}

func TestMarkByCodeOverwritesExistingRow(t *testing.T) {
	db := newTestDB(t)
	student := uuid.New()
	app := newMarkApp(db, student)

	start := dbtime.From(time.Now().Add(-5 * time.Minute))
	sess := openSession(t, db, dbtime.Today(), start, "UP5ERT")

	// Baris Absent hasil rekonsiliasi sudah ada
	require.NoError(t, db.Create(&model.AttendanceModel{
		AttendanceUserID:   student,
		AttendanceCourseID: sess.AttendanceSessionCourseID,
		AttendanceDate:     dbtime.Today(),
		AttendanceTime:     "--",
		AttendanceStatus:   model.AttendanceAbsent,
	}).Error)

	resp := mark(t, app, "UP5ERT")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rows []model.AttendanceModel
	require.NoError(t, db.Where("attendance_user_id = ?", student).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, model.AttendancePresent, rows[0].AttendanceStatus)
	require.NotEqual(t, "--", rows[0].AttendanceTime)
}
