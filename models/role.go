package models

// Role tags a user with the one profile kind it owns.
type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
	RoleDoctor    Role = "doctor"
)

// Roles lists every role a user can register with.
var Roles = []Role{RolePatient, RoleCaregiver, RoleDoctor}

// Valid reports whether r is one of the registrable roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleCaregiver, RoleDoctor:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
