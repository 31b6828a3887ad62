package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"pet-clinic-booking/internal/domain/notifications"
)

// Publisher empuja notificaciones al broker. La fila queued en el repo es la
// fuente de verdad; esto es el fan-out best-effort hacia el push real.
type Publisher struct {
	writer *kafkago.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: kafkago.NewWriter(kafkago.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafkago.LeastBytes{},
		}),
	}
}

type message struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	BookingID string `json:"booking_id,omitempty"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func (p *Publisher) Publish(ctx context.Context, n notifications.Notification) error {
	payload, err := json.Marshal(message{
		ID:        n.ID,
		UserID:    n.UserID,
		BookingID: n.BookingID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	// Key por usuario: mantiene orden por destinatario entre particiones.
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(n.UserID),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
