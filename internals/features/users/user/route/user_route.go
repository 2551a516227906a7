package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "eschoolku_backend/internals/features/users/user/controller"
	rateLimiter "eschoolku_backend/internals/middlewares"
)

// AuthRoutes: endpoint publik register/login dengan limiter ketat.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	authCtrl := userController.NewAuthController(db)

	api := app.Group("/api/auth")
	api.Post("/register", rateLimiter.RegisterRateLimiter(), authCtrl.Register)
	api.Post("/login", rateLimiter.LoginRateLimiter(), authCtrl.Login)
}
