package memory

import (
	"context"
	"sync"

	"pet-clinic-booking/internal/domain/users"
)

type UserRepository struct {
	mu   sync.RWMutex
	rows map[string]users.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{rows: map[string]users.User{}}
}

func (r *UserRepository) Put(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[u.ID] = u
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.rows[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}
