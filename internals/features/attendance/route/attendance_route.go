package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceController "eschoolku_backend/internals/features/attendance/controller"
)

// AttendanceUserRoutes: absensi per eschool + statistik/analitik.
func AttendanceUserRoutes(app fiber.Router, db *gorm.DB) {
	ctrl := attendanceController.NewAttendanceController(db)

	app.Post("/attendance/record", ctrl.Record)
	app.Put("/attendance/:id", ctrl.Update)
	app.Delete("/attendance/:id", ctrl.Delete)

	app.Get("/attendance/records", ctrl.ListRecords)
	app.Get("/attendance/statistics", ctrl.GetStatistics)
	app.Get("/attendance/analytics", ctrl.GetAnalytics)
}
