package results

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// SOAP es la nota clínica estructurada de la visita.
type SOAP struct {
	Subjective string
	Objective  string
	Assessment string
	Plan       string
}

// ClinicResult es el resultado de un tratamiento: a lo sumo uno por booking.
// El upsert por BookingID conserva el ID original del documento, así un
// re-guardado no duplica resultados.
type ClinicResult struct {
	ID        string
	BookingID string
	ClinicID  string
	PetID     string
	UserID    string // guardián

	VisitDate string // YYYY-MM-DD
	VisitTime string // HH:MM

	TriageScore   int
	MainDiagnosis string
	SOAP          SOAP

	// SharedToGuardian pasa a true junto con booking.status=completed,
	// dentro de la misma transacción (nunca se ve uno sin el otro).
	SharedToGuardian bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
