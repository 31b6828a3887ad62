package bookings

// Status es el estado del turno dentro del flujo de atención.
// @Enum pending, waiting, confirmed, completed, cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusWaiting   Status = "waiting"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus valida valores que llegan por la API.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusWaiting, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition define el grafo de transiciones permitidas.
// completed solo se alcanza vía share (resultado compartido al guardián);
// no hay vuelta atrás desde completed ni cancelled.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending, StatusWaiting:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
