// internals/route/details/attendance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceController "presensiku_backend/internals/features/school/attendance/controller"
	excuseController "presensiku_backend/internals/features/school/excuses/controller"

	"presensiku_backend/internals/constants"
	authMiddleware "presensiku_backend/internals/middlewares/auth"
)

// AttendanceRoutes: sesi, roster, self-mark, izin, dan dashboard.
func AttendanceRoutes(app *fiber.App, db *gorm.DB) {
	attendance := attendanceController.NewAttendanceController(db)
	sessions := attendanceController.NewSessionController(db)
	excuses := excuseController.NewExcuseController(db)

	api := app.Group("/api", authMiddleware.AuthMiddleware())

	staff := authMiddleware.OnlyRoles("Hanya admin atau pengajar yang boleh mengelola absensi",
		constants.TeacherAndAbove...)
	student := authMiddleware.OnlyRoles("Endpoint ini khusus siswa",
		constants.StudentOnly...)

	// Dashboard (semua role login)
	api.Get("/dashboard-summary", attendance.DashboardSummary)

	// Sesi absensi
	api.Get("/attendance/sessions", staff, sessions.List)
	api.Post("/attendance/session", staff, sessions.Open)
	api.Put("/attendance/sessions/:id", staff, sessions.Update)
	api.Delete("/attendance/sessions/:id", staff, sessions.Delete)

	// Roster & edit manual
	api.Get("/attendance/:date/csv", staff, attendance.ExportCSV)
	api.Get("/attendance/:date", staff, attendance.Roster)
	api.Put("/attendance", staff, attendance.UpdateRecord)

	// Izin (staff)
	api.Get("/excuses", staff, excuses.Pending)
	api.Get("/excuses/history", staff, excuses.History)
	api.Put("/excuses/:id/approve", staff, excuses.Approve)
	api.Put("/excuses/:id/deny", staff, excuses.Deny)
	api.Put("/excuses/:id", staff, excuses.Update)
	api.Delete("/excuses/:id", staff, excuses.Delete)

	// Endpoint siswa
	api.Post("/student/attendance/mark", student, attendance.MarkByCode)
	api.Get("/student/attendance-history", student, attendance.MyHistory)
	api.Get("/student/summary", student, attendance.MySummary)
	api.Post("/student/excuse", student, excuses.Submit)
	api.Get("/student/excuses", student, excuses.MyExcuses)
}
