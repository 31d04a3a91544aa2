package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	PatientProfile   *PatientProfile   `json:"patientProfile,omitempty" gorm:"foreignKey:UserID"`
	CaregiverProfile *CaregiverProfile `json:"caregiverProfile,omitempty" gorm:"foreignKey:UserID"`
	DoctorProfile    *DoctorProfile    `json:"doctorProfile,omitempty" gorm:"foreignKey:UserID"`
}

// Profile returns the role profile loaded on u, or nil.
func (u *User) Profile() Profile {
	switch u.Role {
	case RolePatient:
		if u.PatientProfile != nil {
			return u.PatientProfile
		}
	case RoleCaregiver:
		if u.CaregiverProfile != nil {
			return u.CaregiverProfile
		}
	case RoleDoctor:
		if u.DoctorProfile != nil {
			return u.DoctorProfile
		}
	}
	return nil
}

// AttachProfile sets the matching profile pointer on u.
func (u *User) AttachProfile(p Profile) {
	switch v := p.(type) {
	case *PatientProfile:
		u.PatientProfile = v
	case *CaregiverProfile:
		u.CaregiverProfile = v
	case *DoctorProfile:
		u.DoctorProfile = v
	}
}

// UserSummary is the public view of a user embedded in other resources.
type UserSummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role, CreatedAt: u.CreatedAt}
}
