package memory

import (
	"context"
	"sort"
	"sync"

	"pet-clinic-booking/internal/domain/patients"
)

type PatientRepository struct {
	mu   sync.RWMutex
	rows map[string]patients.ClinicPatient // por Key compuesta
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{rows: map[string]patients.ClinicPatient{}}
}

func (r *PatientRepository) Get(ctx context.Context, key string) (patients.ClinicPatient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.rows[key]
	if !ok {
		return patients.ClinicPatient{}, patients.ErrNotFound
	}
	return p, nil
}

func (r *PatientRepository) Put(ctx context.Context, p patients.ClinicPatient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.Key] = p
	return nil
}

func (r *PatientRepository) ListByClinic(ctx context.Context, clinicID string) ([]patients.ClinicPatient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []patients.ClinicPatient{}
	for _, p := range r.rows {
		if p.ClinicID == clinicID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastVisitDate != out[j].LastVisitDate {
			return out[i].LastVisitDate > out[j].LastVisitDate
		}
		return out[i].PetName < out[j].PetName
	})
	return out, nil
}
