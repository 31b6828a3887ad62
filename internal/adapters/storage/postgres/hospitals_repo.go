package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-clinic-booking/internal/domain/hospitals"
)

type HospitalsRepo struct {
	db *sql.DB
}

func NewHospitalsRepo(db *sql.DB) *HospitalsRepo {
	return &HospitalsRepo{db: db}
}

func (r *HospitalsRepo) Create(ctx context.Context, h hospitals.Hospital) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO animal_hospitals (id, name, address, phone, lat, lng, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, h.ID, h.Name, h.Address, h.Phone, h.Lat, h.Lng, h.CreatedAt)
	return err
}

func (r *HospitalsRepo) GetByID(ctx context.Context, id string) (hospitals.Hospital, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, name, address, phone, lat, lng, created_at
		FROM animal_hospitals
		WHERE id = $1
	`, strings.TrimSpace(id))

	var h hospitals.Hospital
	if err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Phone, &h.Lat, &h.Lng, &h.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return hospitals.Hospital{}, hospitals.ErrNotFound
		}
		return hospitals.Hospital{}, err
	}
	return h, nil
}

func (r *HospitalsRepo) List(ctx context.Context) ([]hospitals.Hospital, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT id, name, address, phone, lat, lng, created_at
		FROM animal_hospitals
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]hospitals.Hospital, 0)
	for rows.Next() {
		var h hospitals.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Phone, &h.Lat, &h.Lng, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
