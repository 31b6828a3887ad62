package livesync

import (
	"context"

	"pet-clinic-booking/internal/domain/bookings"
)

// Source emite snapshots confirmados de los turnos de un día de clínica.
// Hay una sola suscripción por clave canónica (clinic id + fecha); la doble
// query legacy por nombre se resuelve antes, vía backfill + ResolveKey.
//
// El canal entrega el snapshot completo del día en cada cambio y se cierra
// cuando el ctx termina. Implementaciones: watch hub in-memory y polling
// sobre postgres.
type Source interface {
	Snapshots(ctx context.Context, clinicID, date string) (<-chan []bookings.Booking, error)
}
