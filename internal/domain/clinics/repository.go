package clinics

import "context"

type Repository interface {
	Create(ctx context.Context, c Clinic) error
	GetByID(ctx context.Context, id string) (Clinic, error)
	// GetByName resuelve el nombre legacy a la clínica canónica.
	GetByName(ctx context.Context, name string) (Clinic, error)
	Update(ctx context.Context, c Clinic) error

	AddStaff(ctx context.Context, s Staff) error
	GetStaff(ctx context.Context, clinicID, userID string) (Staff, error)
}
