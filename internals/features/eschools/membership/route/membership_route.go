package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	membershipController "eschoolku_backend/internals/features/eschools/membership/controller"
)

// MembershipUserRoutes: kelola role anggota per eschool.
func MembershipUserRoutes(app fiber.Router, db *gorm.DB) {
	ctrl := membershipController.NewMembershipController(db)

	app.Get("/eschool/:id/members", ctrl.ListMembers)
	app.Post("/eschool/:id/members/assign-role", ctrl.AssignRole)
	app.Put("/eschool/:id/members/:userId/update-role", ctrl.UpdateRole)
	app.Delete("/eschool/:id/members/:userId/remove-role", ctrl.RemoveRole)
}
