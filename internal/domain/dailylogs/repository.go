package dailylogs

import "context"

type ListFilter struct {
	Actions []Action
	Date    string // YYYY-MM-DD sobre At; vacío = todas
	Limit   int
}

type Repository interface {
	Append(ctx context.Context, e DailyLog) error
	// ListByClinic devuelve entradas desc por At (lo más nuevo primero).
	ListByClinic(ctx context.Context, clinicID string, filter ListFilter) ([]DailyLog, error)
}
