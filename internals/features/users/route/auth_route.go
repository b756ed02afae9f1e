// file: internals/features/users/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "visitorku_backend/internals/features/users/controller"
	rateLimiter "visitorku_backend/internals/middlewares"
	authMiddleware "visitorku_backend/internals/middlewares/auth"
)

// AuthRoutes mounts staff authentication.
// Base: /api/auth
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := userController.NewAuthController(db)

	auth := app.Group("/api/auth")

	auth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	auth.Post("/login-google", rateLimiter.LoginRateLimiter(), ctrl.LoginGoogle)
	auth.Post("/logout", ctrl.Logout)

	auth.Get("/me", authMiddleware.AuthMiddleware(db), ctrl.Me)
}
