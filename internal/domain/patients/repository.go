package patients

import "context"

type Repository interface {
	Get(ctx context.Context, key string) (ClinicPatient, error)
	// Put crea o reemplaza el rollup completo (el workflow ya trae el
	// VisitCount calculado).
	Put(ctx context.Context, p ClinicPatient) error
	ListByClinic(ctx context.Context, clinicID string) ([]ClinicPatient, error)
}
