package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cuidarbem/cuidarbem-api/controllers"
	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/models"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(api fiber.Router, ctl *controllers.AppointmentController, protected fiber.Handler) {
	appointments := api.Group("/appointments", protected)

	appointments.Post("/", middleware.RequireRole(models.RolePatient), ctl.CreateAppointment)
	appointments.Get("/patient", ctl.GetPatientAppointments)
	appointments.Get("/caregiver", ctl.GetCaregiverAppointments)
	appointments.Get("/caregiver/export", ctl.ExportCaregiverAppointments)
	appointments.Patch("/:id/cancel", ctl.CancelAppointment)
}
