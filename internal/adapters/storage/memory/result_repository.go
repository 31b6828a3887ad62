package memory

import (
	"context"
	"sort"
	"sync"

	"pet-clinic-booking/internal/domain/results"
)

type ResultRepository struct {
	mu   sync.RWMutex
	rows map[string]results.ClinicResult // por ID
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{rows: map[string]results.ClinicResult{}}
}

func (r *ResultRepository) Upsert(ctx context.Context, res results.ClinicResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[res.ID] = res
	return nil
}

func (r *ResultRepository) GetByID(ctx context.Context, id string) (results.ClinicResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.rows[id]
	if !ok {
		return results.ClinicResult{}, results.ErrNotFound
	}
	return res, nil
}

func (r *ResultRepository) GetByBooking(ctx context.Context, bookingID string) (results.ClinicResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, res := range r.rows {
		if res.BookingID == bookingID {
			return res, nil
		}
	}
	return results.ClinicResult{}, results.ErrNotFound
}

func (r *ResultRepository) ListByGuardian(ctx context.Context, userID string, onlyShared bool) ([]results.ClinicResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []results.ClinicResult{}
	for _, res := range r.rows {
		if res.UserID != userID {
			continue
		}
		if onlyShared && !res.SharedToGuardian {
			continue
		}
		out = append(out, res)
	}

	// Más reciente primero (fecha de visita desc, desempate por hora).
	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitDate != out[j].VisitDate {
			return out[i].VisitDate > out[j].VisitDate
		}
		return out[i].VisitTime > out[j].VisitTime
	})
	return out, nil
}
