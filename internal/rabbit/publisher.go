package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"delivered-status-service/internal/model"
)

const StatusChangedExchange = "order_status_changed"

// Publisher es la parte de *amqp091.Channel que usamos para publicar.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// StatusChangedMessage sigue el mismo sobre que los mensajes que consumimos.
type StatusChangedMessage struct {
	CorrelationID string             `json:"correlation_id"`
	Exchange      string             `json:"exchange"`
	RoutingKey    string             `json:"routing_key"`
	Message       model.StatusChange `json:"message"`
}

type StatusChangedPublisher struct {
	ch Publisher
}

func NewStatusChangedPublisher(ch Publisher) *StatusChangedPublisher {
	return &StatusChangedPublisher{ch: ch}
}

// Handle es el suscriptor del evento order_status_changed.
// La routing key es el estado nuevo.
func (p *StatusChangedPublisher) Handle(ctx context.Context, payload any) error {
	change, ok := payload.(model.StatusChange)
	if !ok {
		return nil
	}

	msg := StatusChangedMessage{
		CorrelationID: uuid.NewString(),
		Exchange:      StatusChangedExchange,
		RoutingKey:    change.To,
		Message:       change,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, StatusChangedExchange, change.To, false, false, amqp091.Publishing{
		ContentType:   "application/json",
		CorrelationId: msg.CorrelationID,
		MessageId:     uuid.NewString(),
		Timestamp:     change.At,
		DeliveryMode:  amqp091.Persistent,
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", StatusChangedExchange, err)
	}
	return nil
}
