// internals/features/school/excuses/controller/excuse_controller_test.go
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

	auditModel "presensiku_backend/internals/features/audit/model"
	attendanceModel "presensiku_backend/internals/features/school/attendance/model"
	"presensiku_backend/internals/features/school/excuses/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.ExcuseModel{},
		&attendanceModel.AttendanceModel{},
		&auditModel.AuditLogModel{},
	))
	return db
}

// newTestApp meniru AuthMiddleware: identitas langsung ditaruh di Locals.
func newTestApp(db *gorm.DB, userID uuid.UUID, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("user_name", "Test User")
		c.Locals("userRole", role)
		return c.Next()
	})
	ctrl := NewExcuseController(db)
	app.Post("/api/student/excuse", ctrl.Submit)
	app.Put("/api/excuses/:id/approve", ctrl.Approve)
	app.Put("/api/excuses/:id/deny", ctrl.Deny)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestSubmitCreatesPendingThenUpdatesReason(t *testing.T) {
	db := newTestDB(t)
	student := uuid.New()
	app := newTestApp(db, student, "student")

	date := futureDate(1)
	resp := doJSON(t, app, fiber.MethodPost, "/api/student/excuse",
		fiber.Map{"date": date, "reason": "Sakit demam"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var excuse model.ExcuseModel
	require.NoError(t, db.Where("excuse_user_id = ? AND excuse_date = ?", student, date).
		First(&excuse).Error)
	require.Equal(t, model.ExcusePending, excuse.ExcuseStatus)
	require.Equal(t, "Sakit demam", excuse.ExcuseReason)

	// Submit ulang pada tanggal sama: alasan di-update, tetap satu baris
	resp = doJSON(t, app, fiber.MethodPost, "/api/student/excuse",
		fiber.Map{"date": date, "reason": "Acara keluarga"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.ExcuseModel{}).
		Where("excuse_user_id = ?", student).Count(&count).Error)
	require.EqualValues(t, 1, count)

	require.NoError(t, db.Where("excuse_id = ?", excuse.ExcuseID).First(&excuse).Error)
	require.Equal(t, "Acara keluarga", excuse.ExcuseReason)
}

func TestSubmitRejectsPastDate(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db, uuid.New(), "student")

	resp := doJSON(t, app, fiber.MethodPost, "/api/student/excuse",
		fiber.Map{"date": "2020-01-15", "reason": "terlambat diajukan"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitProcessedExcuseLocked(t *testing.T) {
	db := newTestDB(t)
	student := uuid.New()
	app := newTestApp(db, student, "student")

	date := futureDate(2)
	require.NoError(t, db.Create(&model.ExcuseModel{
		ExcuseUserID: student,
		ExcuseDate:   date,
		ExcuseReason: "sudah diputuskan",
		ExcuseStatus: model.ExcuseDenied,
	}).Error)

	resp := doJSON(t, app, fiber.MethodPost, "/api/student/excuse",
		fiber.Map{"date": date, "reason": "coba lagi"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var excuse model.ExcuseModel
	require.NoError(t, db.Where("excuse_user_id = ?", student).First(&excuse).Error)
	require.Equal(t, model.ExcuseDenied, excuse.ExcuseStatus)
	require.Equal(t, "sudah diputuskan", excuse.ExcuseReason)
}

func TestApproveCascadesToAttendance(t *testing.T) {
	db := newTestDB(t)
	student := uuid.New()
	staff := uuid.New()
	app := newTestApp(db, staff, "teacher")

	date := "2026-09-01"
	courseA, courseB := uuid.New(), uuid.New()

	// Dua course di hari yang sama + satu record hari lain
	seed := []attendanceModel.AttendanceModel{
		{AttendanceUserID: student, AttendanceCourseID: courseA, AttendanceDate: date,
			AttendanceTime: "--", AttendanceStatus: attendanceModel.AttendanceAbsent},
		{AttendanceUserID: student, AttendanceCourseID: courseB, AttendanceDate: date,
			AttendanceTime: "08:10", AttendanceStatus: attendanceModel.AttendanceLate},
		{AttendanceUserID: student, AttendanceCourseID: courseA, AttendanceDate: "2026-09-02",
			AttendanceTime: "08:00", AttendanceStatus: attendanceModel.AttendancePresent},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	excuse := model.ExcuseModel{
		ExcuseUserID: student,
		ExcuseDate:   date,
		ExcuseReason: "izin keluarga",
		ExcuseStatus: model.ExcusePending,
	}
	require.NoError(t, db.Create(&excuse).Error)

	resp := doJSON(t, app, fiber.MethodPut,
		"/api/excuses/"+excuse.ExcuseID.String()+"/approve", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("excuse_id = ?", excuse.ExcuseID).First(&excuse).Error)
	require.Equal(t, model.ExcuseApproved, excuse.ExcuseStatus)
	require.NotNil(t, excuse.ExcuseProcessedBy)
	require.Equal(t, staff, *excuse.ExcuseProcessedBy)
	require.NotNil(t, excuse.ExcuseProcessedAt)

	// Semua record di tanggal izin jadi Excused/"--"
	var sameDay []attendanceModel.AttendanceModel
	require.NoError(t, db.Where("attendance_user_id = ? AND attendance_date = ?", student, date).
		Find(&sameDay).Error)
	require.Len(t, sameDay, 2)
	for _, r := range sameDay {
		require.Equal(t, attendanceModel.AttendanceExcused, r.AttendanceStatus)
		require.Equal(t, "--", r.AttendanceTime)
	}

	// Hari lain tidak tersentuh
	var otherDay attendanceModel.AttendanceModel
	require.NoError(t, db.Where("attendance_user_id = ? AND attendance_date = ?", student, "2026-09-02").
		First(&otherDay).Error)
	require.Equal(t, attendanceModel.AttendancePresent, otherDay.AttendanceStatus)
	require.Equal(t, "08:00", otherDay.AttendanceTime)

	// Audit log tercatat
	var audits int64
	require.NoError(t, db.Model(&auditModel.AuditLogModel{}).
		Where("audit_log_action = ?", "APPROVE_EXCUSE").Count(&audits).Error)
	require.EqualValues(t, 1, audits)

	// Approve ulang aman: hasil akhir sama
	resp = doJSON(t, app, fiber.MethodPut,
		"/api/excuses/"+excuse.ExcuseID.String()+"/approve", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	sameDay = nil
	require.NoError(t, db.Where("attendance_user_id = ? AND attendance_date = ?", student, date).
		Find(&sameDay).Error)
	for _, r := range sameDay {
		require.Equal(t, attendanceModel.AttendanceExcused, r.AttendanceStatus)
	}
}

func TestDenyLeavesAttendanceAlone(t *testing.T) {
	db := newTestDB(t)
	student := uuid.New()
	app := newTestApp(db, uuid.New(), "registrar")

	date := "2026-09-01"
	row := attendanceModel.AttendanceModel{
		AttendanceUserID: student, AttendanceCourseID: uuid.New(), AttendanceDate: date,
		AttendanceTime: "--", AttendanceStatus: attendanceModel.AttendanceAbsent,
	}
	require.NoError(t, db.Create(&row).Error)

	excuse := model.ExcuseModel{
		ExcuseUserID: student, ExcuseDate: date,
		ExcuseReason: "tanpa bukti", ExcuseStatus: model.ExcusePending,
	}
	require.NoError(t, db.Create(&excuse).Error)

	resp := doJSON(t, app, fiber.MethodPut,
		"/api/excuses/"+excuse.ExcuseID.String()+"/deny", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("excuse_id = ?", excuse.ExcuseID).First(&excuse).Error)
	require.Equal(t, model.ExcuseDenied, excuse.ExcuseStatus)

	require.NoError(t, db.Where("attendance_id = ?", row.AttendanceID).First(&row).Error)
	require.Equal(t, attendanceModel.AttendanceAbsent, row.AttendanceStatus)
}

func TestApproveUnknownExcuse(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db, uuid.New(), "teacher")

	resp := doJSON(t, app, fiber.MethodPut,
		"/api/excuses/"+uuid.NewString()+"/approve", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
