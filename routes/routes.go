package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cuidarbem/cuidarbem-api/controllers"
)

// Handlers bundles the controllers mounted under /api.
type Handlers struct {
	Auth         *controllers.AuthController
	Services     *controllers.ServiceController
	Appointments *controllers.AppointmentController
	Notes        *controllers.NoteController
	// Documents is nil when uploads are not kept on local disk.
	Documents *controllers.DocumentController
}

// Setup mounts every route. protected authenticates the caller.
func Setup(app *fiber.App, h Handlers, protected fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	SetupAuthRoutes(api, h.Auth, protected)
	SetupServiceRoutes(api, h.Services, protected)
	SetupAppointmentRoutes(api, h.Appointments, protected)
	SetupNoteRoutes(api, h.Notes, protected)
	if h.Documents != nil {
		SetupDocumentRoutes(app, h.Documents, protected)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource not found"})
	})
}
