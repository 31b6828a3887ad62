package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.RWMutex
	objs map[string]memoryEntry
}

type memoryEntry struct {
	info Info
	data []byte
}

// NewMemory devuelve un Store en memoria (tests y modo dev).
func NewMemory() Store {
	return &memoryStore{objs: make(map[string]memoryEntry)}
}

func (s *memoryStore) Driver() Driver { return DriverMemory }

func (s *memoryStore) Put(_ context.Context, key string, r io.Reader, contentType string) (Info, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Key:         key,
		Size:        int64(len(b)),
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Put sobreescribe: el documento re-subido reemplaza al anterior.
	s.objs[key] = memoryEntry{info: info, data: b}
	return info, nil
}

func (s *memoryStore) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	s.mu.RLock()
	e, ok := s.objs[key]
	s.mu.RUnlock()

	if !ok {
		return Info{}, nil, ErrNotFound
	}

	data := make([]byte, len(e.data))
	copy(data, e.data)
	return e.info, io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objs[key]; !ok {
		return ErrNotFound
	}
	delete(s.objs, key)
	return nil
}
