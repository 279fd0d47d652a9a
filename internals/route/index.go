// internals/route/index.go
package route

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	routeDetails "presensiku_backend/internals/route/details"

	"presensiku_backend/internals/bootstrap"
)

// SetupRoutes memasang seluruh endpoint API.
func SetupRoutes(app *fiber.App, db *gorm.DB, state *bootstrap.State) {
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db, state)

	log.Println("[INFO] Setting up SchoolRoutes...")
	routeDetails.SchoolRoutes(app, db)

	log.Println("[INFO] Setting up AttendanceRoutes...")
	routeDetails.AttendanceRoutes(app, db)

	log.Println("[INFO] Setting up AdminRoutes...")
	routeDetails.AdminRoutes(app, db)

	// Healthcheck sederhana untuk platform deploy
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
