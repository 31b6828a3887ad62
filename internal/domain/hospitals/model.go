package hospitals

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Hospital es una entrada del directorio público de hospitales veterinarios
// (colección animal_hospitals); distinto de Clinic, que es la cuenta
// operativa del sistema.
type Hospital struct {
	ID      string
	Name    string
	Address string
	Phone   string

	Lat float64
	Lng float64

	CreatedAt time.Time
}

// Nearby es un hospital anotado con la distancia al punto consultado.
type Nearby struct {
	Hospital
	DistanceKm float64
}
