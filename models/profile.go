package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile is the role specific row attached 1:1 to a user.
type Profile interface {
	ProfileRole() Role
	OwnerID() uint
}

// ProfileData is the registration payload of one role. Each variant builds
// exactly one Profile of its own role.
type ProfileData interface {
	Role() Role
	NewProfile(userID uint) Profile
}

type PatientProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"uniqueIndex;not null"`
	FullName  string    `json:"fullName"`
	Age       *int      `json:"age,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *PatientProfile) ProfileRole() Role { return RolePatient }
func (p *PatientProfile) OwnerID() uint     { return p.UserID }

type CaregiverProfile struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"userId" gorm:"uniqueIndex;not null"`
	User            *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Bio             string         `json:"bio,omitempty" gorm:"type:text"`
	ExperienceYears int            `json:"experienceYears"`
	Certifications  pq.StringArray `json:"certifications" gorm:"type:text[]"`
	Verified        bool           `json:"verified" gorm:"not null;default:false"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (p *CaregiverProfile) ProfileRole() Role { return RoleCaregiver }
func (p *CaregiverProfile) OwnerID() uint     { return p.UserID }

type DoctorProfile struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"userId" gorm:"uniqueIndex;not null"`
	CRM         string         `json:"crm"`
	Specialty   string         `json:"specialty,omitempty"`
	Institution string         `json:"institution,omitempty"`
	Documents   pq.StringArray `json:"documents" gorm:"type:text[]"`
	Verified    bool           `json:"verified" gorm:"not null;default:false"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (p *DoctorProfile) ProfileRole() Role { return RoleDoctor }
func (p *DoctorProfile) OwnerID() uint     { return p.UserID }

type PatientData struct {
	FullName string
	Age      *int
	Address  string
	Phone    string
}

func (d PatientData) Role() Role { return RolePatient }

func (d PatientData) NewProfile(userID uint) Profile {
	return &PatientProfile{
		UserID:   userID,
		FullName: d.FullName,
		Age:      d.Age,
		Address:  d.Address,
		Phone:    d.Phone,
	}
}

type CaregiverData struct {
	Bio             string
	ExperienceYears int
	Certifications  []string
}

func (d CaregiverData) Role() Role { return RoleCaregiver }

func (d CaregiverData) NewProfile(userID uint) Profile {
	return &CaregiverProfile{
		UserID:          userID,
		Bio:             d.Bio,
		ExperienceYears: d.ExperienceYears,
		Certifications:  append(pq.StringArray{}, d.Certifications...),
		Verified:        false,
	}
}

type DoctorData struct {
	CRM         string
	Specialty   string
	Institution string
	Documents   []string
}

func (d DoctorData) Role() Role { return RoleDoctor }

func (d DoctorData) NewProfile(userID uint) Profile {
	return &DoctorProfile{
		UserID:      userID,
		CRM:         d.CRM,
		Specialty:   d.Specialty,
		Institution: d.Institution,
		Documents:   append(pq.StringArray{}, d.Documents...),
		Verified:    false,
	}
}
