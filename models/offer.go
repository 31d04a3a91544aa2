package models

import (
	"time"
)

type ServiceOffer struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	CaregiverID uint              `json:"caregiverId" gorm:"not null;index"`
	Caregiver   *CaregiverProfile `json:"caregiver,omitempty" gorm:"foreignKey:CaregiverID"`
	Title       string            `json:"title" gorm:"not null"`
	Description string            `json:"description" gorm:"type:text"`
	HourlyRate  float64           `json:"hourlyRate" gorm:"type:numeric(10,2);not null"`
	Location    string            `json:"location"`
	AvailableAt time.Time         `json:"availableAt" gorm:"not null;index"`
	Active      bool              `json:"active" gorm:"not null;default:true;index"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Expired reports whether the offer's time slot is no longer bookable at now.
func (o *ServiceOffer) Expired(now time.Time) bool {
	return !o.AvailableAt.After(now)
}

// OwnedBy reports whether userID owns the caregiver profile behind the offer.
// The caregiver association must be loaded.
func (o *ServiceOffer) OwnedBy(userID uint) bool {
	return o.Caregiver != nil && o.Caregiver.UserID == userID
}
