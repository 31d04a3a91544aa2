package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cuidarbem/cuidarbem-api/controllers"
)

// SetupAuthRoutes configures registration, login and user lookups
func SetupAuthRoutes(api fiber.Router, ctl *controllers.AuthController, protected fiber.Handler) {
	users := api.Group("/users")

	// Public routes
	users.Post("/register", ctl.Register)
	users.Post("/login", ctl.Login)

	// Protected routes
	users.Post("/logout", protected, ctl.Logout)
	users.Get("/me", protected, ctl.Me)
	users.Get("/:id", protected, ctl.GetUser)
}
