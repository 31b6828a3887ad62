package documents

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Document es un registro médico subido por el guardián (foto o PDF de una
// historia clínica externa). El binario vive en el blob store; acá queda el
// metadata más el resumen best-effort del parser.
type Document struct {
	ID          string
	OwnerUserID string
	PetID       string

	Filename    string
	ContentType string
	BlobKey     string
	SizeBytes   int64

	// Summary lo arma el modelo generativo a partir del texto extraído;
	// vacío si el parser no estaba configurado o falló.
	Summary string

	UploadedAt time.Time
}
