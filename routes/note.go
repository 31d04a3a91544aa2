package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cuidarbem/cuidarbem-api/controllers"
	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/models"
)

func SetupNoteRoutes(api fiber.Router, ctl *controllers.NoteController, protected fiber.Handler) {
	notes := api.Group("/notes", protected)

	notes.Post("/", middleware.RequireRole(models.RoleDoctor), ctl.CreateNote)
	notes.Get("/patient/:id", ctl.GetPatientNotes)
}
