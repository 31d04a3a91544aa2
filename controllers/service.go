package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/services"
)

// ServiceController serves caregiver offers and patient service requests.
type ServiceController struct {
	offers   *services.OfferService
	requests *services.ServiceRequestService
	log      *zap.Logger
}

func NewServiceController(offers *services.OfferService, requests *services.ServiceRequestService, log *zap.Logger) *ServiceController {
	return &ServiceController{offers: offers, requests: requests, log: log}
}

func (ctl *ServiceController) CreateOffer(c *fiber.Ctx) error {
	var in services.CreateOfferInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cannot parse request body")
	}
	offer, err := ctl.offers.CreateOffer(c.UserContext(), middleware.CurrentUserID(c), in)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

func (ctl *ServiceController) ListOffers(c *fiber.Ctx) error {
	offers, err := ctl.offers.ListOffers(c.UserContext())
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(offers)
}

func (ctl *ServiceController) ListMyOffers(c *fiber.Ctx) error {
	offers, err := ctl.offers.ListMyOffers(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(offers)
}

func (ctl *ServiceController) GetOffer(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid offer id")
	}
	offer, err := ctl.offers.GetOffer(c.UserContext(), id)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(offer)
}

func (ctl *ServiceController) DeactivateOffer(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid offer id")
	}
	offer, err := ctl.offers.DeactivateOffer(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(offer)
}

func (ctl *ServiceController) RequestService(c *fiber.Ctx) error {
	var in services.CreateServiceRequestInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cannot parse request body")
	}
	request, err := ctl.requests.Create(c.UserContext(), middleware.CurrentUserID(c), in)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

func (ctl *ServiceController) ListMyRequests(c *fiber.Ctx) error {
	requests, err := ctl.requests.ListMine(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(requests)
}
