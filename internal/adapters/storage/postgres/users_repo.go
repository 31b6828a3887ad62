package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-clinic-booking/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Put(ctx context.Context, u users.User) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO users (id, name, phone, email, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
	`, u.ID, u.Name, u.Phone, u.Email, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, name, phone, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`, strings.TrimSpace(id))

	var u users.User
	if err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}
