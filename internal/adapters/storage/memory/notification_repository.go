package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pet-clinic-booking/internal/domain/notifications"
)

type NotificationRepository struct {
	mu   sync.RWMutex
	rows map[string]notifications.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{rows: map[string]notifications.Notification{}}
}

func (r *NotificationRepository) Enqueue(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[n.ID] = n
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []notifications.Notification{}
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.rows[id]
	if !ok {
		return notifications.ErrNotFound
	}

	now := time.Now()
	n.Status = notifications.StatusSent
	n.SentAt = &now
	r.rows[id] = n
	return nil
}
