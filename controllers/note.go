package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/services"
)

type NoteController struct {
	notes *services.MedicalNoteService
	log   *zap.Logger
}

func NewNoteController(notes *services.MedicalNoteService, log *zap.Logger) *NoteController {
	return &NoteController{notes: notes, log: log}
}

func (ctl *NoteController) CreateNote(c *fiber.Ctx) error {
	var in services.CreateMedicalNoteInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cannot parse request body")
	}
	note, err := ctl.notes.Create(c.UserContext(), middleware.CurrentUserID(c), middleware.CurrentRole(c), in)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (ctl *NoteController) GetPatientNotes(c *fiber.Ctx) error {
	patientID, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid patient id")
	}
	notes, err := ctl.notes.ListForPatient(c.UserContext(), middleware.CurrentUserID(c), middleware.CurrentRole(c), patientID)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(notes)
}
