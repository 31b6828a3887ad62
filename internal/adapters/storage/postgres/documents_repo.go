package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-clinic-booking/internal/domain/documents"
)

type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

func (r *DocumentsRepo) Create(ctx context.Context, d documents.Document) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO documents (
			id, owner_user_id, pet_id,
			filename, content_type, blob_key, size_bytes,
			summary, uploaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		d.ID,
		d.OwnerUserID,
		d.PetID,
		d.Filename,
		d.ContentType,
		d.BlobKey,
		d.SizeBytes,
		d.Summary,
		d.UploadedAt,
	)
	return err
}

func (r *DocumentsRepo) GetByID(ctx context.Context, id string) (documents.Document, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, owner_user_id, pet_id,
		       filename, content_type, blob_key, size_bytes,
		       summary, uploaded_at
		FROM documents
		WHERE id = $1
	`, strings.TrimSpace(id))

	var d documents.Document
	if err := row.Scan(
		&d.ID,
		&d.OwnerUserID,
		&d.PetID,
		&d.Filename,
		&d.ContentType,
		&d.BlobKey,
		&d.SizeBytes,
		&d.Summary,
		&d.UploadedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return documents.Document{}, documents.ErrNotFound
		}
		return documents.Document{}, err
	}
	return d, nil
}

func (r *DocumentsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]documents.Document, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT id, owner_user_id, pet_id,
		       filename, content_type, blob_key, size_bytes,
		       summary, uploaded_at
		FROM documents
		WHERE owner_user_id = $1
		ORDER BY uploaded_at DESC
	`, strings.TrimSpace(ownerUserID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]documents.Document, 0)
	for rows.Next() {
		var d documents.Document
		if err := rows.Scan(
			&d.ID,
			&d.OwnerUserID,
			&d.PetID,
			&d.Filename,
			&d.ContentType,
			&d.BlobKey,
			&d.SizeBytes,
			&d.Summary,
			&d.UploadedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
