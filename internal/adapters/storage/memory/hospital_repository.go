package memory

import (
	"context"
	"sort"
	"sync"

	"pet-clinic-booking/internal/domain/hospitals"
)

type HospitalRepository struct {
	mu   sync.RWMutex
	rows map[string]hospitals.Hospital
}

func NewHospitalRepository() *HospitalRepository {
	return &HospitalRepository{rows: map[string]hospitals.Hospital{}}
}

func (r *HospitalRepository) Create(ctx context.Context, h hospitals.Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[h.ID] = h
	return nil
}

func (r *HospitalRepository) GetByID(ctx context.Context, id string) (hospitals.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.rows[id]
	if !ok {
		return hospitals.Hospital{}, hospitals.ErrNotFound
	}
	return h, nil
}

func (r *HospitalRepository) List(ctx context.Context) ([]hospitals.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]hospitals.Hospital, 0, len(r.rows))
	for _, h := range r.rows {
		out = append(out, h)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
