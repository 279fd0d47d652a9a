// internals/route/details/auth_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "presensiku_backend/internals/features/users/auth/controller"

	"presensiku_backend/internals/bootstrap"
	"presensiku_backend/internals/middlewares"
	authMiddleware "presensiku_backend/internals/middlewares/auth"
)

// AuthRoutes: login/logout/session, setup mode, reset password, dan
// klaim akun siswa. Semuanya hidup di luar gate auth kecuali logout &
// change-password.
func AuthRoutes(app *fiber.App, db *gorm.DB, state *bootstrap.State) {
	ctrl := authController.NewAuthController(db, state)

	api := app.Group("/api")

	api.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
	api.Post("/setup", ctrl.Setup)
	api.Get("/session", ctrl.Session)

	api.Post("/request-password-reset", middlewares.ForgotPasswordRateLimiter(), ctrl.RequestPasswordReset)
	api.Post("/reset-password", ctrl.ResetPassword)

	api.Post("/student-setup/validate", ctrl.StudentSetupValidate)
	api.Post("/student-setup/complete", ctrl.StudentSetupComplete)

	api.Post("/logout", authMiddleware.AuthMiddleware(), ctrl.Logout)
	api.Post("/user/change-password", authMiddleware.AuthMiddleware(), ctrl.ChangePassword)
}
