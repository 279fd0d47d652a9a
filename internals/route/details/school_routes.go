// internals/route/details/school_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	courseController "presensiku_backend/internals/features/school/courses/controller"
	roomController "presensiku_backend/internals/features/school/rooms/controller"
	studentController "presensiku_backend/internals/features/school/students/controller"

	"presensiku_backend/internals/constants"
	authMiddleware "presensiku_backend/internals/middlewares/auth"
)

// SchoolRoutes: master data siswa, room, dan course.
func SchoolRoutes(app *fiber.App, db *gorm.DB) {
	students := studentController.NewStudentController(db)
	rooms := roomController.NewRoomController(db)
	courses := courseController.NewCourseController(db)

	api := app.Group("/api")

	// Publik (form signup & cek kode)
	api.Get("/public/courses", courses.PublicList)
	api.Get("/public/student/:code", students.PublicValidate)
	api.Get("/summary/:student_code", students.Summary)

	authed := api.Group("", authMiddleware.AuthMiddleware())

	// Semua user login boleh lihat master data
	authed.Get("/students", students.List)
	authed.Get("/rooms", rooms.List)
	authed.Get("/rooms/:id/schedule", rooms.Schedule)
	authed.Get("/courses", courses.List)

	// Mutasi siswa: admin + registrar
	registrar := authMiddleware.OnlyRoles("Hanya admin atau registrar yang boleh mengelola data siswa",
		constants.RegistrarAndAbove...)
	authed.Post("/students", registrar, students.Create)
	authed.Put("/students/:code", registrar, students.Update)
	authed.Delete("/students/:code", registrar, students.Delete)
	authed.Post("/students/upload-csv", registrar, students.UploadCSV)

	// Riwayat & profil siswa: admin + teacher
	staff := authMiddleware.OnlyRoles("Hanya admin atau pengajar yang boleh mengakses data ini",
		constants.TeacherAndAbove...)
	authed.Get("/students-list", staff, students.SimpleList)
	authed.Get("/student-history", staff, students.History)
	authed.Get("/student-profile/:student_code", staff, students.Profile)

	// Mutasi room & course: admin only
	admin := authMiddleware.OnlyRoles("Hanya admin yang boleh mengelola master data",
		constants.AdminOnly...)
	authed.Post("/rooms", admin, rooms.Create)
	authed.Put("/rooms/:id", admin, rooms.Update)
	authed.Delete("/rooms/:id", admin, rooms.Delete)
	authed.Post("/courses", admin, courses.Create)
	authed.Put("/courses/:id", admin, courses.Update)
	authed.Delete("/courses/:id", admin, courses.Delete)

	// Enrollment: admin + teacher
	authed.Get("/courses/:id/students", staff, courses.Students)
	authed.Post("/courses/:id/enroll", staff, courses.Enroll)
	authed.Post("/courses/:id/unenroll", staff, courses.Unenroll)
}
