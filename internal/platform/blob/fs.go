package blob

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type fsStore struct {
	root string
}

// NewFilesystem guarda blobs bajo root; el metadata va en un sidecar .meta.json
// al lado de cada objeto (suficiente para dev, sin índice aparte).
func NewFilesystem(root string) (Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "./blobdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &fsStore{root: root}, nil
}

func (s *fsStore) Driver() Driver { return DriverFilesystem }

func (s *fsStore) path(key string) string {
	// Keys son uuids generados por nosotros; igual se limpia por las dudas.
	clean := filepath.Clean("/" + key)
	return filepath.Join(s.root, clean)
}

func (s *fsStore) Put(_ context.Context, key string, r io.Reader, contentType string) (Info, error) {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return Info{}, err
	}

	f, err := os.Create(p)
	if err != nil {
		return Info{}, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Key:         key,
		Size:        n,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}

	meta, err := json.Marshal(info)
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(p+".meta.json", meta, 0o644); err != nil {
		return Info{}, err
	}

	return info, nil
}

func (s *fsStore) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	p := s.path(key)

	meta, err := os.ReadFile(p + ".meta.json")
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, nil, ErrNotFound
		}
		return Info{}, nil, err
	}

	var info Info
	if err := json.Unmarshal(meta, &info); err != nil {
		return Info{}, nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, nil, ErrNotFound
		}
		return Info{}, nil, err
	}

	return info, f, nil
}

func (s *fsStore) Delete(_ context.Context, key string) error {
	p := s.path(key)
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	_ = os.Remove(p + ".meta.json")
	return nil
}
