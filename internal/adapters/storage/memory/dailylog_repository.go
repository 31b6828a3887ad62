package memory

import (
	"context"
	"sort"
	"sync"

	"pet-clinic-booking/internal/domain/dailylogs"
)

type DailyLogRepository struct {
	mu   sync.RWMutex
	rows []dailylogs.DailyLog
}

func NewDailyLogRepository() *DailyLogRepository {
	return &DailyLogRepository{}
}

func (r *DailyLogRepository) Append(ctx context.Context, e dailylogs.DailyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, e)
	return nil
}

func (r *DailyLogRepository) ListByClinic(ctx context.Context, clinicID string, filter dailylogs.ListFilter) ([]dailylogs.DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []dailylogs.DailyLog{}
	for _, e := range r.rows {
		if e.ClinicID != clinicID {
			continue
		}
		if filter.Date != "" && e.At.Format("2006-01-02") != filter.Date {
			continue
		}
		if len(filter.Actions) > 0 && !containsAction(filter.Actions, e.Action) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func containsAction(actions []dailylogs.Action, a dailylogs.Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
