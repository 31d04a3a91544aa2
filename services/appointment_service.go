package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/models"
	"github.com/cuidarbem/cuidarbem-api/notify"
	"github.com/cuidarbem/cuidarbem-api/report"
	"github.com/cuidarbem/cuidarbem-api/repository"
)

const (
	maxPatientAge = 130

	reminderLeadMin = 55 * time.Minute
	reminderLeadMax = 65 * time.Minute
)

type CreateAppointmentInput struct {
	ServiceOfferID uint    `json:"serviceOfferId"`
	PatientName    string  `json:"patientName"`
	PatientAge     *int    `json:"patientAge"`
	Address        string  `json:"address"`
	Notes          *string `json:"notes"`
}

func (in CreateAppointmentInput) validate() error {
	v := &ValidationError{}
	if in.ServiceOfferID == 0 {
		v.Add("serviceOfferId", "service offer is required")
	}
	if strings.TrimSpace(in.PatientName) == "" {
		v.Add("patientName", "patient name is required")
	}
	switch {
	case in.PatientAge == nil:
		v.Add("patientAge", "patient age is required")
	case *in.PatientAge < 0 || *in.PatientAge > maxPatientAge:
		v.Add("patientAge", fmt.Sprintf("patient age must be between 0 and %d", maxPatientAge))
	}
	if strings.TrimSpace(in.Address) == "" {
		v.Add("address", "address is required")
	}
	return v.Err()
}

// AppointmentView is an appointment joined with its offer and both parties.
type AppointmentView struct {
	ID             uint                     `json:"id"`
	ServiceOfferID uint                     `json:"serviceOfferId"`
	CaregiverID    uint                     `json:"caregiverId"`
	PatientID      uint                     `json:"patientId"`
	Date           string                   `json:"date"`
	Time           string                   `json:"time"`
	PatientName    string                   `json:"patientName"`
	PatientAge     int                      `json:"patientAge"`
	Address        string                   `json:"address"`
	Notes          *string                  `json:"notes"`
	Status         models.AppointmentStatus `json:"status"`
	CreatedAt      time.Time                `json:"createdAt"`
	CancelledAt    *time.Time               `json:"cancelledAt,omitempty"`

	ServiceTitle       string    `json:"serviceTitle"`
	ServiceDescription string    `json:"serviceDescription"`
	HourlyRate         float64   `json:"hourlyRate"`
	Location           string    `json:"location"`
	AvailableAt        time.Time `json:"availableAt"`

	Caregiver *models.UserSummary `json:"caregiver,omitempty"`
	Patient   *models.UserSummary `json:"patient,omitempty"`
}

func newAppointmentView(a *models.Appointment) AppointmentView {
	view := AppointmentView{
		ID:             a.ID,
		ServiceOfferID: a.ServiceOfferID,
		CaregiverID:    a.CaregiverID,
		PatientID:      a.PatientID,
		Date:           a.Date,
		Time:           a.Time,
		PatientName:    a.PatientName,
		PatientAge:     a.PatientAge,
		Address:        a.Address,
		Notes:          a.Notes,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
		CancelledAt:    a.CancelledAt,
	}
	if o := a.ServiceOffer; o != nil {
		view.ServiceTitle = o.Title
		view.ServiceDescription = o.Description
		view.HourlyRate = o.HourlyRate
		view.Location = o.Location
		view.AvailableAt = o.AvailableAt
	}
	if a.Caregiver != nil && a.Caregiver.User != nil {
		summary := a.Caregiver.User.Summary()
		view.Caregiver = &summary
	}
	if a.Patient != nil {
		summary := a.Patient.Summary()
		view.Patient = &summary
	}
	return view
}

type AppointmentService struct {
	store    repository.Store
	notifier notify.Notifier
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewAppointmentService(store repository.Store, notifier notify.Notifier, loc *time.Location, log *zap.Logger) *AppointmentService {
	return &AppointmentService{store: store, notifier: notifier, loc: loc, now: time.Now, log: log}
}

// Create books an offer for patientID. The offer lookup, the expiry and
// duplicate checks and the insert share one serializable transaction; the
// active-booking unique index settles concurrent attempts.
func (s *AppointmentService) Create(ctx context.Context, patientID uint, in CreateAppointmentInput) (*AppointmentView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	notes := in.Notes
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		if trimmed == "" {
			notes = nil
		} else {
			notes = &trimmed
		}
	}

	var appointmentID uint
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		offer, err := tx.Offers().FindActiveByID(ctx, in.ServiceOfferID)
		if err != nil {
			if isNotFound(err) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("find offer: %w", err)
		}
		if offer.Expired(s.now()) {
			return ErrOfferExpired
		}

		exists, err := tx.Appointments().HasActiveBooking(ctx, patientID, offer.ID)
		if err != nil {
			return fmt.Errorf("check active booking: %w", err)
		}
		if exists {
			return ErrDuplicateBooking
		}

		date, clock := models.ScheduleFor(offer.AvailableAt, s.loc)
		appointment := &models.Appointment{
			ServiceOfferID: offer.ID,
			CaregiverID:    offer.CaregiverID,
			PatientID:      patientID,
			Date:           date,
			Time:           clock,
			PatientName:    strings.TrimSpace(in.PatientName),
			PatientAge:     *in.PatientAge,
			Address:        strings.TrimSpace(in.Address),
			Notes:          notes,
			Status:         models.StatusScheduled,
		}
		if err := tx.Appointments().Create(ctx, appointment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateBooking
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		appointmentID = appointment.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	appointment, err := s.store.Appointments().FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("reload appointment: %w", err)
	}
	s.log.Info("appointment booked",
		zap.Uint("appointmentID", appointment.ID),
		zap.Uint("offerID", appointment.ServiceOfferID),
		zap.Uint("patientID", patientID))

	if err := s.notifier.AppointmentBooked(ctx, appointment); err != nil {
		s.log.Warn("booking confirmation failed", zap.Uint("appointmentID", appointment.ID), zap.Error(err))
	}

	view := newAppointmentView(appointment)
	return &view, nil
}

// Cancel moves an appointment to cancelado on behalf of one of its parties.
// The row stays locked from the read to the status write.
func (s *AppointmentService) Cancel(ctx context.Context, userID, appointmentID uint) (*AppointmentView, error) {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		appointment, err := tx.Appointments().FindByIDForUpdate(ctx, appointmentID)
		if err != nil {
			if isNotFound(err) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("find appointment: %w", err)
		}
		if !appointment.IsParty(userID) {
			return ErrNotAppointmentParty
		}

		if err := appointment.TransitionTo(models.StatusCancelled, s.now()); err != nil {
			if errors.Is(err, models.ErrAlreadyCancelled) {
				return ErrAlreadyCancelled
			}
			return ErrAppointmentClosed
		}
		if err := tx.Appointments().UpdateStatus(ctx, appointment); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	appointment, err := s.store.Appointments().FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("reload appointment: %w", err)
	}
	s.log.Info("appointment cancelled", zap.Uint("appointmentID", appointmentID), zap.Uint("userID", userID))

	if err := s.notifier.AppointmentCancelled(ctx, appointment, userID); err != nil {
		s.log.Warn("cancellation notice failed", zap.Uint("appointmentID", appointmentID), zap.Error(err))
	}

	view := newAppointmentView(appointment)
	return &view, nil
}

func (s *AppointmentService) ListForPatient(ctx context.Context, patientID uint) ([]AppointmentView, error) {
	appointments, err := s.store.Appointments().ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return appointmentViews(appointments), nil
}

func (s *AppointmentService) ListForCaregiver(ctx context.Context, userID uint) ([]AppointmentView, error) {
	appointments, err := s.caregiverAppointments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return appointmentViews(appointments), nil
}

// ExportCaregiverSchedule renders the caregiver listing as an XLSX workbook.
func (s *AppointmentService) ExportCaregiverSchedule(ctx context.Context, userID uint) ([]byte, error) {
	appointments, err := s.caregiverAppointments(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := report.Schedule(appointments)
	if err != nil {
		return nil, fmt.Errorf("render schedule: %w", err)
	}
	return data, nil
}

func (s *AppointmentService) caregiverAppointments(ctx context.Context, userID uint) ([]models.Appointment, error) {
	profile, err := findCaregiverProfile(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.store.Appointments().ListByCaregiver(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list caregiver appointments: %w", err)
	}
	return appointments, nil
}

// SendReminders notifies patients whose appointment starts in about an hour.
// Each appointment is reminded once; failed sends are retried on the next run.
func (s *AppointmentService) SendReminders(ctx context.Context) (int, error) {
	now := s.now()
	appointments, err := s.store.Appointments().ListStartingBetween(ctx, now.Add(reminderLeadMin), now.Add(reminderLeadMax))
	if err != nil {
		return 0, fmt.Errorf("list upcoming appointments: %w", err)
	}

	sent := 0
	for i := range appointments {
		a := &appointments[i]
		if err := s.notifier.AppointmentReminder(ctx, a); err != nil {
			s.log.Warn("reminder failed", zap.Uint("appointmentID", a.ID), zap.Error(err))
			continue
		}
		if err := s.store.Appointments().MarkReminded(ctx, a.ID, now); err != nil {
			s.log.Error("mark reminder sent", zap.Uint("appointmentID", a.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func appointmentViews(appointments []models.Appointment) []AppointmentView {
	views := make([]AppointmentView, 0, len(appointments))
	for i := range appointments {
		views = append(views, newAppointmentView(&appointments[i]))
	}
	return views
}
