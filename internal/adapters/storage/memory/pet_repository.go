package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pet-clinic-booking/internal/domain/pets"
)

type PetRepository struct {
	mu   sync.RWMutex
	rows map[string]pets.Pet
}

func NewPetRepository() *PetRepository {
	return &PetRepository{rows: map[string]pets.Pet{}}
}

func (r *PetRepository) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.rows[p.ID] = p
	return nil
}

func (r *PetRepository) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.rows[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []pets.Pet{}
	for _, p := range r.rows {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
