package users

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// User es el perfil mínimo del guardián; lo consume el enrichment del live
// view (nombre y teléfono en el dashboard de la clínica).
type User struct {
	ID    string
	Name  string
	Phone string
	Email string

	CreatedAt time.Time
	UpdatedAt time.Time
}
