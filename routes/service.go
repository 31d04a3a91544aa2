package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cuidarbem/cuidarbem-api/controllers"
	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/models"
)

// SetupServiceRoutes configures caregiver offers and patient service requests
func SetupServiceRoutes(api fiber.Router, ctl *controllers.ServiceController, protected fiber.Handler) {
	svc := api.Group("/services")

	svc.Post("/offer", protected, middleware.RequireRole(models.RoleCaregiver), ctl.CreateOffer)
	svc.Get("/offers", ctl.ListOffers)
	// registered before /offers/:id so "mine" is not read as an id
	svc.Get("/offers/mine", protected, ctl.ListMyOffers)
	svc.Get("/offers/:id", ctl.GetOffer)
	svc.Patch("/offers/:id/deactivate", protected, middleware.RequireRole(models.RoleCaregiver), ctl.DeactivateOffer)

	svc.Post("/request", protected, middleware.RequireRole(models.RolePatient), ctl.RequestService)
	svc.Get("/requests", protected, middleware.RequireRole(models.RolePatient), ctl.ListMyRequests)
}
