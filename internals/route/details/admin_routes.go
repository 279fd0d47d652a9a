// internals/route/details/admin_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditController "presensiku_backend/internals/features/audit/controller"
	announcementController "presensiku_backend/internals/features/school/announcements/controller"
	userController "presensiku_backend/internals/features/users/users/controller"

	"presensiku_backend/internals/constants"
	"presensiku_backend/internals/middlewares"
	authMiddleware "presensiku_backend/internals/middlewares/auth"
)

// AdminRoutes: staff management, antrian registrasi, audit log, dan
// pengumuman.
func AdminRoutes(app *fiber.App, db *gorm.DB) {
	staffCtrl := userController.NewStaffController(db)
	regCtrl := userController.NewRegistrationController(db)
	auditCtrl := auditController.NewAuditController(db)
	annCtrl := announcementController.NewAnnouncementController(db)

	api := app.Group("/api")

	// Signup publik, rate limit ketat
	api.Post("/student-signup", middlewares.RegisterRateLimiter(), regCtrl.StudentSignup)
	api.Post("/staff-signup", middlewares.RegisterRateLimiter(), regCtrl.StaffSignup)

	authed := api.Group("", authMiddleware.AuthMiddleware())

	admin := authMiddleware.OnlyRoles("Hanya admin yang boleh mengakses endpoint ini",
		constants.AdminOnly...)
	staff := authMiddleware.OnlyRoles("Hanya admin atau pengajar yang boleh mengelola pengumuman",
		constants.TeacherAndAbove...)

	// Staff management (admin only)
	authed.Get("/staff", admin, staffCtrl.List)
	authed.Post("/staff", admin, staffCtrl.Create)
	authed.Delete("/staff/:id", admin, staffCtrl.Delete)
	authed.Post("/staff/:id/reset-password", admin, staffCtrl.ResetPassword)

	// Antrian registrasi (admin only)
	authed.Get("/student-registrations", admin, regCtrl.StudentRegistrations)
	authed.Post("/student-registrations/:id/approve", admin, regCtrl.ApproveStudent)
	authed.Post("/student-registrations/:id/reject", admin, regCtrl.RejectStudent)
	authed.Get("/staff-registrations", admin, regCtrl.StaffRegistrations)
	authed.Post("/staff-registrations/:id/approve", admin, regCtrl.ApproveStaff)
	authed.Post("/staff-registrations/:id/reject", admin, regCtrl.RejectStaff)

	// Audit log (admin only)
	authed.Get("/audit-logs", admin, auditCtrl.List)

	// Pengumuman
	authed.Get("/announcements", annCtrl.List)
	authed.Post("/announcements", staff, annCtrl.Create)
	authed.Delete("/announcements/:id", staff, annCtrl.Delete)
}
