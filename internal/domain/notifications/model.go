package notifications

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Kind string

const (
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingCancelled Kind = "booking_cancelled"
	KindResultShared     Kind = "result_shared"
)

type Status string

const (
	StatusQueued Status = "queued"
	StatusSent   Status = "sent"
)

// Notification es una fila de la cola de push para el guardián. La fila es
// la fuente de verdad; el publish al broker es best-effort.
type Notification struct {
	ID        string
	UserID    string
	BookingID string

	Kind  Kind
	Title string
	Body  string

	Status    Status
	CreatedAt time.Time
	SentAt    *time.Time
}
