package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

type Driver string

const (
	DriverMemory     Driver = "memory" // tests / dev
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

var ErrNotFound = errors.New("blob not found")

// Info describe un blob almacenado.
type Info struct {
	Key         string
	Size        int64
	ContentType string
	UploadedAt  time.Time
}

// Store es la abstracción mínima que necesitan los documentos clínicos:
// guardar bytes bajo una key y recuperarlos después.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Driver() Driver
}
