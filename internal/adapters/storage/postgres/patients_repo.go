package postgres

import (
	"context"
	"database/sql"

	"pet-clinic-booking/internal/domain/patients"
)

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

func (r *PatientsRepo) Get(ctx context.Context, key string) (patients.ClinicPatient, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT key, clinic_id, pet_id, pet_name, owner_user_id,
		       visit_count, last_visit_date,
		       created_at, updated_at
		FROM clinic_patients
		WHERE key = $1
	`, key)

	var p patients.ClinicPatient
	if err := row.Scan(
		&p.Key,
		&p.ClinicID,
		&p.PetID,
		&p.PetName,
		&p.OwnerUserID,
		&p.VisitCount,
		&p.LastVisitDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return patients.ClinicPatient{}, patients.ErrNotFound
		}
		return patients.ClinicPatient{}, err
	}
	return p, nil
}

func (r *PatientsRepo) Put(ctx context.Context, p patients.ClinicPatient) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clinic_patients (
			key, clinic_id, pet_id, pet_name, owner_user_id,
			visit_count, last_visit_date,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (key) DO UPDATE SET
			pet_name = EXCLUDED.pet_name,
			visit_count = EXCLUDED.visit_count,
			last_visit_date = EXCLUDED.last_visit_date,
			updated_at = EXCLUDED.updated_at
	`,
		p.Key,
		p.ClinicID,
		p.PetID,
		p.PetName,
		p.OwnerUserID,
		p.VisitCount,
		p.LastVisitDate,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PatientsRepo) ListByClinic(ctx context.Context, clinicID string) ([]patients.ClinicPatient, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT key, clinic_id, pet_id, pet_name, owner_user_id,
		       visit_count, last_visit_date,
		       created_at, updated_at
		FROM clinic_patients
		WHERE clinic_id = $1
		ORDER BY last_visit_date DESC, pet_name ASC
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.ClinicPatient, 0)
	for rows.Next() {
		var p patients.ClinicPatient
		if err := rows.Scan(
			&p.Key,
			&p.ClinicID,
			&p.PetID,
			&p.PetName,
			&p.OwnerUserID,
			&p.VisitCount,
			&p.LastVisitDate,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
