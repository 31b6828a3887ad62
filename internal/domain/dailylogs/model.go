package dailylogs

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Action clasifica la entrada del log diario de la clínica.
type Action string

const (
	ActionBookingConfirmed Action = "BOOKING_CONFIRMED"
	ActionBookingCancelled Action = "BOOKING_CANCELLED"
	ActionTreatmentSaved   Action = "TREATMENT_SAVED"
	ActionResultShared     Action = "RESULT_SHARED"
	ActionLegacyBackfill   Action = "LEGACY_BACKFILL"
)

// DailyLog es una entrada de auditoría por clínica. Se escribe dentro de la
// misma transacción que la transición que la origina.
type DailyLog struct {
	ID        string
	ClinicID  string
	BookingID string

	Action Action
	Detail string

	At time.Time
}
