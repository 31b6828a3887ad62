package patients

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

// ClinicPatient es el rollup denormalizado por clínica+mascota.
// VisitCount sube una vez por booking tratado, dentro de la transacción del
// tratamiento: no puede divergir del conteo real por fallas parciales.
type ClinicPatient struct {
	Key         string // `${clinicID}_${petID}`
	ClinicID    string
	PetID       string
	PetName     string
	OwnerUserID string

	VisitCount    int
	LastVisitDate string // YYYY-MM-DD

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RollupKey arma la clave compuesta del rollup.
func RollupKey(clinicID, petID string) string {
	return fmt.Sprintf("%s_%s", clinicID, petID)
}
