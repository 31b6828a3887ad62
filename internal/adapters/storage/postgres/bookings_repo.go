package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pet-clinic-booking/internal/domain/bookings"
)

type BookingsRepo struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewBookingsRepo(db *sql.DB, pollInterval time.Duration) *BookingsRepo {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &BookingsRepo{db: db, pollInterval: pollInterval}
}

const bookingCols = `
	id, clinic_id, clinic_name,
	pet_id, pet_name, user_id,
	visit_date, visit_time,
	status, message,
	triage_score, ai_diagnosis, diagnosis_id,
	version, created_at, updated_at
`

func (r *BookingsRepo) Create(ctx context.Context, b bookings.Booking) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO bookings (`+bookingCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		b.ID,
		nullStr(b.ClinicID),
		b.ClinicName,
		b.PetID,
		b.PetName,
		b.UserID,
		b.Date,
		b.Time,
		string(b.Status),
		b.Message,
		b.TriageScore,
		b.AIDiagnosis,
		nullStr(b.DiagnosisID),
		b.Version,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (bookings.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return bookings.Booking{}, bookings.ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE id = $1
	`, id)

	b, err := scanBooking(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return bookings.Booking{}, bookings.ErrNotFound
		}
		return bookings.Booking{}, err
	}
	return b, nil
}

// Update aplica solo si la versión guardada es exactamente la anterior;
// el WHERE por version es el candado de concurrencia optimista.
func (r *BookingsRepo) Update(ctx context.Context, b bookings.Booking) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE bookings
		SET
			clinic_id = $2,
			clinic_name = $3,
			status = $4,
			message = $5,
			triage_score = $6,
			ai_diagnosis = $7,
			diagnosis_id = $8,
			version = $9,
			updated_at = $10
		WHERE id = $1 AND version = $11
	`,
		b.ID,
		nullStr(b.ClinicID),
		b.ClinicName,
		string(b.Status),
		b.Message,
		b.TriageScore,
		b.AIDiagnosis,
		nullStr(b.DiagnosisID),
		b.Version,
		b.UpdatedAt,
		b.Version-1,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		if _, err := r.GetByID(ctx, b.ID); err != nil {
			return bookings.ErrNotFound
		}
		return bookings.ErrStaleVersion
	}
	return nil
}

func (r *BookingsRepo) ListForClinicDay(ctx context.Context, clinicID, date string) ([]bookings.Booking, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE clinic_id = $1 AND visit_date = $2
		ORDER BY visit_time ASC, id ASC
	`, clinicID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *BookingsRepo) ListLegacyByClinicName(ctx context.Context, clinicName string) ([]bookings.Booking, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE clinic_id IS NULL AND clinic_name = $1
		ORDER BY visit_date ASC, visit_time ASC
	`, strings.TrimSpace(clinicName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// Snapshots implementa el Source del live view por polling: consulta el día
// cada pollInterval y emite solo cuando algo cambió (count o suma de
// versiones distinta).
func (r *BookingsRepo) Snapshots(ctx context.Context, clinicID, date string) (<-chan []bookings.Booking, error) {
	ch := make(chan []bookings.Booking, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		lastFP := int64(-1)
		emit := func() {
			snap, err := r.ListForClinicDay(ctx, clinicID, date)
			if err != nil {
				return // transitorio; el próximo tick reintenta
			}

			fp := int64(len(snap))
			for _, b := range snap {
				fp += b.Version * 31
			}
			if fp == lastFP {
				return
			}
			lastFP = fp

			select {
			case ch <- snap:
			default:
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- snap:
				default:
				}
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit()
			}
		}
	}()

	return ch, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (bookings.Booking, error) {
	var b bookings.Booking
	var clinicID, diagnosisID sql.NullString

	if err := row.Scan(
		&b.ID,
		&clinicID,
		&b.ClinicName,
		&b.PetID,
		&b.PetName,
		&b.UserID,
		&b.Date,
		&b.Time,
		&b.Status,
		&b.Message,
		&b.TriageScore,
		&b.AIDiagnosis,
		&diagnosisID,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return bookings.Booking{}, err
	}

	b.ClinicID = clinicID.String
	b.DiagnosisID = diagnosisID.String
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]bookings.Booking, error) {
	out := make([]bookings.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
