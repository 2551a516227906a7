package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	kasRoute "eschoolku_backend/internals/features/kas/route"
)

func KasRoutes(app fiber.Router, db *gorm.DB) {
	kasRoute.KasUserRoutes(app, db)
}
