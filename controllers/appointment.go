package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/services"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AppointmentController struct {
	appointments *services.AppointmentService
	log          *zap.Logger
}

func NewAppointmentController(appointments *services.AppointmentService, log *zap.Logger) *AppointmentController {
	return &AppointmentController{appointments: appointments, log: log}
}

// CreateAppointment godoc
// @Summary Book a service offer
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointment body services.CreateAppointmentInput true "Booking"
// @Success 201 {object} services.AppointmentView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/appointments [post]
func (ctl *AppointmentController) CreateAppointment(c *fiber.Ctx) error {
	var in services.CreateAppointmentInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cannot parse request body")
	}
	appointment, err := ctl.appointments.Create(c.UserContext(), middleware.CurrentUserID(c), in)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// GetPatientAppointments godoc
// @Summary List the caller's bookings as a patient
// @Tags appointments
// @Produce json
// @Success 200 {array} services.AppointmentView
// @Router /api/appointments/patient [get]
func (ctl *AppointmentController) GetPatientAppointments(c *fiber.Ctx) error {
	appointments, err := ctl.appointments.ListForPatient(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(appointments)
}

// GetCaregiverAppointments godoc
// @Summary List bookings against the caller's offers
// @Tags appointments
// @Produce json
// @Success 200 {array} services.AppointmentView
// @Failure 403 {object} map[string]string
// @Router /api/appointments/caregiver [get]
func (ctl *AppointmentController) GetCaregiverAppointments(c *fiber.Ctx) error {
	appointments, err := ctl.appointments.ListForCaregiver(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(appointments)
}

func (ctl *AppointmentController) ExportCaregiverAppointments(c *fiber.Ctx) error {
	data, err := ctl.appointments.ExportCaregiverSchedule(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	filename := fmt.Sprintf("agenda-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxMIME)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

// CancelAppointment godoc
// @Summary Cancel an appointment
// @Tags appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} services.AppointmentView
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/appointments/{id}/cancel [patch]
func (ctl *AppointmentController) CancelAppointment(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid appointment id")
	}
	appointment, err := ctl.appointments.Cancel(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(appointment)
}
