package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cuidarbem/cuidarbem-api/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the data access surface injected into the services.
type Store interface {
	Users() UserRepository
	Offers() OfferRepository
	Appointments() AppointmentRepository
	Requests() ServiceRequestRepository
	Notes() MedicalNoteRepository

	// WithinTx runs fn in one serializable transaction. Repositories obtained
	// from tx take part in it; fn's error rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type UserRepository interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User) error
	CreateProfile(ctx context.Context, profile models.Profile) error
	// FindByID loads the user with its role profile.
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindCaregiverProfile(ctx context.Context, userID uint) (*models.CaregiverProfile, error)
}

type OfferRepository interface {
	Create(ctx context.Context, offer *models.ServiceOffer) error
	// FindActiveByID loads an active offer with Caregiver.User.
	FindActiveByID(ctx context.Context, id uint) (*models.ServiceOffer, error)
	// ListActive returns active offers newest first; caregiverID 0 means all.
	ListActive(ctx context.Context, caregiverID uint) ([]models.ServiceOffer, error)
	Deactivate(ctx context.Context, id uint) error
	DeactivateExpired(ctx context.Context, before time.Time) (int64, error)
}

type AppointmentRepository interface {
	// Create returns ErrDuplicate when the patient already holds a
	// non-cancelled booking for the offer.
	Create(ctx context.Context, appointment *models.Appointment) error
	// FindByIDForUpdate locks the row for the rest of the transaction and
	// loads Caregiver.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Appointment, error)
	// FindByID loads ServiceOffer, Caregiver.User and Patient.
	FindByID(ctx context.Context, id uint) (*models.Appointment, error)
	HasActiveBooking(ctx context.Context, patientID, offerID uint) (bool, error)
	UpdateStatus(ctx context.Context, appointment *models.Appointment) error
	MarkReminded(ctx context.Context, id uint, at time.Time) error
	// ListByPatient and ListByCaregiver return non-cancelled appointments with
	// ServiceOffer, Caregiver.User and Patient loaded, by offer availability.
	ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	ListByCaregiver(ctx context.Context, caregiverID uint) ([]models.Appointment, error)
	// ListStartingBetween returns scheduled, not yet reminded appointments
	// whose offer slot falls in [from, to].
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
}

type ServiceRequestRepository interface {
	Create(ctx context.Context, request *models.ServiceRequest) error
	ListByPatient(ctx context.Context, patientID uint) ([]models.ServiceRequest, error)
}

type MedicalNoteRepository interface {
	Create(ctx context.Context, note *models.MedicalNote) error
	ListByPatient(ctx context.Context, patientID uint) ([]models.MedicalNote, error)
}
