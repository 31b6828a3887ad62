package bookings

import "time"

// Booking es un turno de atención en una clínica.
//
// ClinicName queda como campo legacy: turnos viejos se crearon solo con el
// nombre de la clínica y sin ClinicID. El backfill (clinics.Service) los
// canoniza; el sync en vivo trabaja únicamente sobre ClinicID.
type Booking struct {
	ID         string
	ClinicID   string
	ClinicName string // legacy, solo para backfill

	PetID   string
	PetName string // denormalizado, fallback de enrichment
	UserID  string // guardián dueño del turno

	Date string // YYYY-MM-DD
	Time string // HH:MM

	Status  Status
	Message string

	TriageScore int    // 0 = sin triage
	AIDiagnosis string // texto best-effort del scorer
	DiagnosisID string // ClinicResult pareado, si existe

	// Version es monotónica: sube en cada escritura. El reducer del live view
	// la usa para ordenar updates optimistas vs confirmados, y los repos para
	// rechazar escrituras stale.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
