package memory

import (
	"context"
	"sort"
	"sync"

	"pet-clinic-booking/internal/domain/documents"
)

type DocumentRepository struct {
	mu   sync.RWMutex
	rows map[string]documents.Document
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{rows: map[string]documents.Document{}}
}

func (r *DocumentRepository) Create(ctx context.Context, d documents.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[d.ID] = d
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (documents.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.rows[id]
	if !ok {
		return documents.Document{}, documents.ErrNotFound
	}
	return d, nil
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]documents.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []documents.Document{}
	for _, d := range r.rows {
		if d.OwnerUserID == ownerUserID {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}
