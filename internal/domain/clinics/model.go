package clinics

import "time"

// StaffRole es el rol del usuario dentro de la clínica.
// @Enum admin, vet, nurse
type StaffRole string

const (
	RoleAdmin StaffRole = "admin"
	RoleVet   StaffRole = "vet"
	RoleNurse StaffRole = "nurse"
)

func ValidRole(r StaffRole) bool {
	switch r {
	case RoleAdmin, RoleVet, RoleNurse:
		return true
	default:
		return false
	}
}

// Clinic es el perfil de la clínica veterinaria.
type Clinic struct {
	ID      string
	Name    string
	Address string
	Phone   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Staff vincula un usuario a una clínica con rol.
type Staff struct {
	ClinicID string
	UserID   string
	Role     StaffRole

	CreatedAt time.Time
}
