package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pet-clinic-booking/internal/domain/dailylogs"
)

type DailyLogsRepo struct {
	db *sql.DB
}

func NewDailyLogsRepo(db *sql.DB) *DailyLogsRepo {
	return &DailyLogsRepo{db: db}
}

func (r *DailyLogsRepo) Append(ctx context.Context, e dailylogs.DailyLog) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO daily_logs (id, clinic_id, booking_id, action, detail, at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.ID, e.ClinicID, e.BookingID, string(e.Action), e.Detail, e.At)
	return err
}

func (r *DailyLogsRepo) ListByClinic(ctx context.Context, clinicID string, filter dailylogs.ListFilter) ([]dailylogs.DailyLog, error) {
	query := `
		SELECT id, clinic_id, booking_id, action, detail, at
		FROM daily_logs
		WHERE clinic_id = $1
	`
	args := []any{clinicID}

	if filter.Date != "" {
		args = append(args, filter.Date)
		query += fmt.Sprintf(" AND at::date = $%d", len(args))
	}
	if len(filter.Actions) > 0 {
		placeholders := ""
		for i, a := range filter.Actions {
			args = append(args, string(a))
			if i > 0 {
				placeholders += ","
			}
			placeholders += fmt.Sprintf("$%d", len(args))
		}
		query += " AND action IN (" + placeholders + ")"
	}

	query += " ORDER BY at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]dailylogs.DailyLog, 0)
	for rows.Next() {
		var e dailylogs.DailyLog
		if err := rows.Scan(&e.ID, &e.ClinicID, &e.BookingID, &e.Action, &e.Detail, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
