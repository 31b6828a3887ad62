package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-clinic-booking/internal/domain/results"
)

type ResultsRepo struct {
	db *sql.DB
}

func NewResultsRepo(db *sql.DB) *ResultsRepo {
	return &ResultsRepo{db: db}
}

const resultCols = `
	id, booking_id, clinic_id, pet_id, user_id,
	visit_date, visit_time,
	triage_score, main_diagnosis,
	subjective, objective, assessment, plan,
	shared_to_guardian,
	created_at, updated_at
`

func (r *ResultsRepo) Upsert(ctx context.Context, res results.ClinicResult) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clinic_results (`+resultCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			triage_score = EXCLUDED.triage_score,
			main_diagnosis = EXCLUDED.main_diagnosis,
			subjective = EXCLUDED.subjective,
			objective = EXCLUDED.objective,
			assessment = EXCLUDED.assessment,
			plan = EXCLUDED.plan,
			shared_to_guardian = EXCLUDED.shared_to_guardian,
			updated_at = EXCLUDED.updated_at
	`,
		res.ID,
		res.BookingID,
		res.ClinicID,
		res.PetID,
		res.UserID,
		res.VisitDate,
		res.VisitTime,
		res.TriageScore,
		res.MainDiagnosis,
		res.SOAP.Subjective,
		res.SOAP.Objective,
		res.SOAP.Assessment,
		res.SOAP.Plan,
		res.SharedToGuardian,
		res.CreatedAt,
		res.UpdatedAt,
	)
	return err
}

func (r *ResultsRepo) GetByID(ctx context.Context, id string) (results.ClinicResult, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+resultCols+`
		FROM clinic_results
		WHERE id = $1
	`, strings.TrimSpace(id))

	return scanResult(row)
}

func (r *ResultsRepo) GetByBooking(ctx context.Context, bookingID string) (results.ClinicResult, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+resultCols+`
		FROM clinic_results
		WHERE booking_id = $1
	`, strings.TrimSpace(bookingID))

	return scanResult(row)
}

func (r *ResultsRepo) ListByGuardian(ctx context.Context, userID string, onlyShared bool) ([]results.ClinicResult, error) {
	query := `
		SELECT ` + resultCols + `
		FROM clinic_results
		WHERE user_id = $1
	`
	if onlyShared {
		query += ` AND shared_to_guardian = TRUE`
	}
	query += ` ORDER BY visit_date DESC, visit_time DESC`

	rows, err := q(ctx, r.db).QueryContext(ctx, query, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]results.ClinicResult, 0)
	for rows.Next() {
		res, err := scanResultRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanResult(row *sql.Row) (results.ClinicResult, error) {
	res, err := scanResultRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return results.ClinicResult{}, results.ErrNotFound
		}
		return results.ClinicResult{}, err
	}
	return res, nil
}

func scanResultRow(row rowScanner) (results.ClinicResult, error) {
	var res results.ClinicResult
	err := row.Scan(
		&res.ID,
		&res.BookingID,
		&res.ClinicID,
		&res.PetID,
		&res.UserID,
		&res.VisitDate,
		&res.VisitTime,
		&res.TriageScore,
		&res.MainDiagnosis,
		&res.SOAP.Subjective,
		&res.SOAP.Objective,
		&res.SOAP.Assessment,
		&res.SOAP.Plan,
		&res.SharedToGuardian,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	return res, err
}
