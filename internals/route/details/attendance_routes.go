package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceRoute "eschoolku_backend/internals/features/attendance/route"
)

func AttendanceRoutes(app fiber.Router, db *gorm.DB) {
	attendanceRoute.AttendanceUserRoutes(app, db)
}
