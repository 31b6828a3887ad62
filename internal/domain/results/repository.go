package results

import "context"

type Repository interface {
	// Upsert crea o reemplaza el resultado. El caller (workflow de
	// tratamiento) decide el ID: nuevo uuid en el primer guardado, el ID
	// existente en re-guardados.
	Upsert(ctx context.Context, r ClinicResult) error

	GetByID(ctx context.Context, id string) (ClinicResult, error)
	GetByBooking(ctx context.Context, bookingID string) (ClinicResult, error)
	ListByGuardian(ctx context.Context, userID string, onlyShared bool) ([]ClinicResult, error)
}
