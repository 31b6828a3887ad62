package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pet-clinic-booking/internal/domain/clinics"
)

type ClinicRepository struct {
	mu     sync.RWMutex
	rows   map[string]clinics.Clinic // por ID
	byName map[string]string         // nombre -> ID
	staff  map[string]clinics.Staff  // clinicID|userID
}

func NewClinicRepository() *ClinicRepository {
	return &ClinicRepository{
		rows:   map[string]clinics.Clinic{},
		byName: map[string]string{},
		staff:  map[string]clinics.Staff{},
	}
}

func staffKey(clinicID, userID string) string { return clinicID + "|" + userID }

func (r *ClinicRepository) Create(ctx context.Context, c clinics.Clinic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[c.Name]; taken {
		return errors.New("clinic name already taken")
	}

	r.rows[c.ID] = c
	r.byName[c.Name] = c.ID
	return nil
}

func (r *ClinicRepository) GetByID(ctx context.Context, id string) (clinics.Clinic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.rows[id]
	if !ok {
		return clinics.Clinic{}, clinics.ErrNotFound
	}
	return c, nil
}

func (r *ClinicRepository) GetByName(ctx context.Context, name string) (clinics.Clinic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return clinics.Clinic{}, clinics.ErrNotFound
	}
	return r.rows[id], nil
}

func (r *ClinicRepository) Update(ctx context.Context, c clinics.Clinic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.rows[c.ID]
	if !ok {
		return clinics.ErrNotFound
	}

	if old.Name != c.Name {
		if owner, taken := r.byName[c.Name]; taken && owner != c.ID {
			return errors.New("clinic name already taken")
		}
		delete(r.byName, old.Name)
		r.byName[c.Name] = c.ID
	}

	r.rows[c.ID] = c
	return nil
}

func (r *ClinicRepository) AddStaff(ctx context.Context, s clinics.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[staffKey(s.ClinicID, s.UserID)] = s
	return nil
}

func (r *ClinicRepository) GetStaff(ctx context.Context, clinicID, userID string) (clinics.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.staff[staffKey(clinicID, userID)]
	if !ok {
		return clinics.Staff{}, clinics.ErrNotFound
	}
	return s, nil
}
