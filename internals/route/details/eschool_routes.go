package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	eschoolRoute "eschoolku_backend/internals/features/eschools/eschool/route"
	membershipRoute "eschoolku_backend/internals/features/eschools/membership/route"
)

func EschoolRoutes(app fiber.Router, db *gorm.DB) {
	eschoolRoute.EschoolUserRoutes(app, db)
	membershipRoute.MembershipUserRoutes(app, db)
}
