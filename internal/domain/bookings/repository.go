package bookings

import "context"

type Repository interface {
	Create(ctx context.Context, b Booking) error
	GetByID(ctx context.Context, id string) (Booking, error)

	// Update aplica solo si la Version guardada es exactamente b.Version-1
	// (optimistic concurrency); si no, ErrStaleVersion.
	Update(ctx context.Context, b Booking) error

	// ListForClinicDay devuelve los turnos del día ordenados asc por hora.
	ListForClinicDay(ctx context.Context, clinicID, date string) ([]Booking, error)

	// ListLegacyByClinicName devuelve turnos sin ClinicID cuyo ClinicName
	// coincide; los consume el backfill de canonización.
	ListLegacyByClinicName(ctx context.Context, clinicName string) ([]Booking, error)
}
