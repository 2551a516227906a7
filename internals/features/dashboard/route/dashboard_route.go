package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dashboardController "eschoolku_backend/internals/features/dashboard/controller"
)

// DashboardUserRoutes: ringkasan per role, dispatch via Viewer.
func DashboardUserRoutes(app fiber.Router, db *gorm.DB) {
	ctrl := dashboardController.NewDashboardController(db)

	app.Get("/dashboard/student", ctrl.Student)
	app.Get("/dashboard/coordinator/:eschoolId", ctrl.Coordinator)
	app.Get("/dashboard/treasurer/:eschoolId", ctrl.Treasurer)
	app.Get("/dashboard/staff", ctrl.Staff)
}
