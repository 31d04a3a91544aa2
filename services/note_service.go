package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/models"
	"github.com/cuidarbem/cuidarbem-api/repository"
)

type CreateMedicalNoteInput struct {
	SeniorID uint   `json:"senior_id"`
	Note     string `json:"note"`
}

// MedicalNoteView hides the doctor's account details except the summary.
type MedicalNoteView struct {
	ID        uint                `json:"id"`
	SeniorID  uint                `json:"seniorId"`
	Note      string              `json:"note"`
	CreatedAt time.Time           `json:"createdAt"`
	Doctor    *models.UserSummary `json:"doctor,omitempty"`
}

func newMedicalNoteView(n *models.MedicalNote) MedicalNoteView {
	view := MedicalNoteView{ID: n.ID, SeniorID: n.PatientID, Note: n.Note, CreatedAt: n.CreatedAt}
	if n.Doctor != nil {
		summary := n.Doctor.Summary()
		view.Doctor = &summary
	}
	return view
}

type MedicalNoteService struct {
	store repository.Store
	log   *zap.Logger
}

func NewMedicalNoteService(store repository.Store, log *zap.Logger) *MedicalNoteService {
	return &MedicalNoteService{store: store, log: log}
}

func (s *MedicalNoteService) Create(ctx context.Context, doctorID uint, role models.Role, in CreateMedicalNoteInput) (*MedicalNoteView, error) {
	if role != models.RoleDoctor {
		return nil, ErrForbidden
	}

	v := &ValidationError{}
	if in.SeniorID == 0 {
		v.Add("senior_id", "patient is required")
	}
	text := strings.TrimSpace(in.Note)
	if text == "" {
		v.Add("note", "note is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	patient, err := s.store.Users().FindByID(ctx, in.SeniorID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if patient.Role != models.RolePatient {
		return nil, ErrUserNotFound
	}

	doctor, err := s.store.Users().FindByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}

	note := &models.MedicalNote{DoctorID: doctorID, PatientID: patient.ID, Note: text}
	if err := s.store.Notes().Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create medical note: %w", err)
	}
	note.Doctor = doctor

	s.log.Info("medical note created", zap.Uint("noteID", note.ID), zap.Uint("doctorID", doctorID))
	view := newMedicalNoteView(note)
	return &view, nil
}

// ListForPatient is open to doctors and to the patient the notes are about.
func (s *MedicalNoteService) ListForPatient(ctx context.Context, callerID uint, role models.Role, patientID uint) ([]MedicalNoteView, error) {
	if role != models.RoleDoctor && callerID != patientID {
		return nil, ErrForbidden
	}

	notes, err := s.store.Notes().ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list medical notes: %w", err)
	}
	views := make([]MedicalNoteView, 0, len(notes))
	for i := range notes {
		views = append(views, newMedicalNoteView(&notes[i]))
	}
	return views, nil
}
