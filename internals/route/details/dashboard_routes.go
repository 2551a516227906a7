package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dashboardRoute "eschoolku_backend/internals/features/dashboard/route"
)

func DashboardRoutes(app fiber.Router, db *gorm.DB) {
	dashboardRoute.DashboardUserRoutes(app, db)
}
