package models

import (
	"time"
)

type ServiceRequestStatus string

const (
	RequestPending   ServiceRequestStatus = "pendente"
	RequestAccepted  ServiceRequestStatus = "aceito"
	RequestRefused   ServiceRequestStatus = "recusado"
	RequestCompleted ServiceRequestStatus = "concluido"
)

// ServiceRequest is a patient's interest in an offer, kept apart from bookings.
type ServiceRequest struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	ServiceOfferID uint                 `json:"serviceId" gorm:"not null;index"`
	ServiceOffer   *ServiceOffer        `json:"service,omitempty" gorm:"foreignKey:ServiceOfferID"`
	PatientID      uint                 `json:"seniorId" gorm:"not null;index"`
	RequestDate    time.Time            `json:"requestDate"`
	Status         ServiceRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pendente'"`
}

type MedicalNote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DoctorID  uint      `json:"doctorId" gorm:"not null;index"`
	Doctor    *User     `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	PatientID uint      `json:"seniorId" gorm:"not null;index"`
	Note      string    `json:"note" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
