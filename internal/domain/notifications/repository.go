package notifications

import "context"

type Repository interface {
	Enqueue(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkSent(ctx context.Context, id string) error
}

// Publisher empuja la notificación a un broker externo (kafka). Opcional:
// si no hay broker configurado, la cola queda en queued y listo.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}
