package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cuidarbem/cuidarbem-api/controllers"
)

// SetupDocumentRoutes serves locally stored documents to their owner only
func SetupDocumentRoutes(app *fiber.App, ctl *controllers.DocumentController, protected fiber.Handler) {
	app.Get("/uploads/:name", protected, ctl.GetDocument)
}
