// file: internals/route/index.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authMiddleware "eschoolku_backend/internals/middlewares/auth"
	routeDetails "eschoolku_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== AUTH (public) =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// ===================== PRIVATE (USER) =====================
	// Semua endpoint domain butuh JWT; Viewer di-resolve sekali di sini.
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u", authMiddleware.AuthJWT())

	log.Println("[INFO] Mounting Eschool routes...")
	routeDetails.EschoolRoutes(private, db)

	log.Println("[INFO] Mounting Kas routes...")
	routeDetails.KasRoutes(private, db)

	log.Println("[INFO] Mounting Attendance routes...")
	routeDetails.AttendanceRoutes(private, db)

	log.Println("[INFO] Mounting Dashboard routes...")
	routeDetails.DashboardRoutes(private, db)
}
