package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "agendado"
	StatusCompleted AppointmentStatus = "concluido"
	StatusCancelled AppointmentStatus = "cancelado"
)

var (
	ErrAlreadyCancelled  = errors.New("appointment is already cancelled")
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	ServiceOfferID uint              `json:"serviceOfferId" gorm:"not null;index"`
	ServiceOffer   *ServiceOffer     `json:"serviceOffer,omitempty" gorm:"foreignKey:ServiceOfferID"`
	CaregiverID    uint              `json:"caregiverId" gorm:"not null;index"`
	Caregiver      *CaregiverProfile `json:"caregiver,omitempty" gorm:"foreignKey:CaregiverID"`
	PatientID      uint              `json:"patientId" gorm:"not null;index"`
	Patient        *User             `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	Date           string            `json:"date" gorm:"type:varchar(10);not null"`
	Time           string            `json:"time" gorm:"type:varchar(5);not null"`
	PatientName    string            `json:"patientName" gorm:"not null"`
	PatientAge     int               `json:"patientAge"`
	Address        string            `json:"address" gorm:"not null"`
	Notes          *string           `json:"notes"`
	Status         AppointmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'agendado';index"`
	CancelledAt    *time.Time        `json:"cancelledAt,omitempty"`
	ReminderSentAt *time.Time        `json:"-"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	return nil
}

// TransitionTo moves the appointment to next, enforcing
// agendado -> {cancelado, concluido} and terminal cancelado/concluido.
func (a *Appointment) TransitionTo(next AppointmentStatus, at time.Time) error {
	switch a.Status {
	case StatusScheduled, "":
		if next != StatusCancelled && next != StatusCompleted {
			return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, StatusScheduled, next)
		}
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return fmt.Errorf("%w: no transitions allowed from %s", ErrInvalidTransition, a.Status)
	default:
		return fmt.Errorf("%w: unknown status %s", ErrInvalidTransition, a.Status)
	}

	a.Status = next
	if next == StatusCancelled {
		a.CancelledAt = &at
	}
	a.UpdatedAt = at
	return nil
}

// IsParty reports whether userID may act on the appointment: the booking
// patient or the user behind the offer's caregiver profile. Caregiver must be
// loaded for the caregiver side to match.
func (a *Appointment) IsParty(userID uint) bool {
	if a.PatientID == userID {
		return true
	}
	return a.Caregiver != nil && a.Caregiver.UserID == userID
}

// ScheduleFor derives the appointment date and time strings from an offer slot.
func ScheduleFor(availableAt time.Time, loc *time.Location) (date, clock string) {
	local := availableAt.In(loc)
	return local.Format(DateLayout), local.Format(TimeLayout)
}
