package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-clinic-booking/internal/domain/clinics"
)

type ClinicsRepo struct {
	db *sql.DB
}

func NewClinicsRepo(db *sql.DB) *ClinicsRepo {
	return &ClinicsRepo{db: db}
}

func (r *ClinicsRepo) Create(ctx context.Context, c clinics.Clinic) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clinics (id, name, address, phone, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.Name, c.Address, c.Phone, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ClinicsRepo) GetByID(ctx context.Context, id string) (clinics.Clinic, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, name, address, phone, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`, strings.TrimSpace(id))

	return scanClinic(row)
}

func (r *ClinicsRepo) GetByName(ctx context.Context, name string) (clinics.Clinic, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, name, address, phone, created_at, updated_at
		FROM clinics
		WHERE name = $1
	`, strings.TrimSpace(name))

	return scanClinic(row)
}

func (r *ClinicsRepo) Update(ctx context.Context, c clinics.Clinic) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE clinics
		SET name = $2, address = $3, phone = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Address, c.Phone, c.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return clinics.ErrNotFound
	}
	return nil
}

func (r *ClinicsRepo) AddStaff(ctx context.Context, s clinics.Staff) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clinic_staff (clinic_id, user_id, role, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (clinic_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, s.ClinicID, s.UserID, string(s.Role), s.CreatedAt)
	return err
}

func (r *ClinicsRepo) GetStaff(ctx context.Context, clinicID, userID string) (clinics.Staff, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT clinic_id, user_id, role, created_at
		FROM clinic_staff
		WHERE clinic_id = $1 AND user_id = $2
	`, clinicID, userID)

	var s clinics.Staff
	if err := row.Scan(&s.ClinicID, &s.UserID, &s.Role, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return clinics.Staff{}, clinics.ErrNotFound
		}
		return clinics.Staff{}, err
	}
	return s, nil
}

func scanClinic(row *sql.Row) (clinics.Clinic, error) {
	var c clinics.Clinic
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return clinics.Clinic{}, clinics.ErrNotFound
		}
		return clinics.Clinic{}, err
	}
	return c, nil
}
