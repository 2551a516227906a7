package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	eschoolController "eschoolku_backend/internals/features/eschools/eschool/controller"
)

// EschoolUserRoutes: CRUD tenant + daftar kandidat bendahara.
// Mutasi di-cek staff-of-school di controller.
func EschoolUserRoutes(app fiber.Router, db *gorm.DB) {
	ctrl := eschoolController.NewEschoolController(db)

	app.Post("/eschools", ctrl.Create)
	app.Get("/eschools", ctrl.List)
	app.Get("/eschools/users/treasurers", ctrl.ListEligibleTreasurers)
	app.Get("/eschools/:id", ctrl.GetByID)
	app.Put("/eschools/:id", ctrl.Update)
	app.Delete("/eschools/:id", ctrl.Delete)
}
