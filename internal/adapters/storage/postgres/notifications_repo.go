package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-clinic-booking/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Enqueue(ctx context.Context, n notifications.Notification) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, booking_id, kind, title, body, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, n.ID, n.UserID, n.BookingID, string(n.Kind), n.Title, n.Body, string(n.Status), n.CreatedAt)
	return err
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]notifications.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT id, user_id, booking_id, kind, title, body, status, created_at, sent_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		var n notifications.Notification
		var sentAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.BookingID, &n.Kind, &n.Title, &n.Body, &n.Status, &n.CreatedAt, &sentAt); err != nil {
			return nil, err
		}
		if sentAt.Valid {
			t := sentAt.Time
			n.SentAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) MarkSent(ctx context.Context, id string) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE notifications
		SET status = $2, sent_at = $3
		WHERE id = $1
	`, id, string(notifications.StatusSent), time.Now())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}
