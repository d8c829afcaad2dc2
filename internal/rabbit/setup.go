// setup.go
package rabbit

import (
	"context"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"
)

// SetupConsumers declara la cola del servicio, la bindea a order_placed y
// empieza a consumir en una goroutine.
func SetupConsumers(ctx context.Context, ch *amqp091.Channel, consumer *PlaceOrderConsumer, logger *slog.Logger) error {
	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		"delivered_status_service_orders", // cola exclusiva para este micro
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	// 2. Bindear al exchange fanout
	err = ch.QueueBind(
		q.Name,
		"",             // fanout ignora routing key
		"order_placed", // exchange de órdenes nuevas
		false,
		nil,
	)
	if err != nil {
		return err
	}

	// 3. Consumir
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for m := range msgs {
			_ = consumer.Handle(ctx, m.Body)
		}
	}()

	logger.Info("subscribed to exchange", "exchange", "order_placed", "queue", q.Name)
	return nil
}

// SetupPublisher declara el exchange topic donde se publican los cambios de estado.
func SetupPublisher(ch *amqp091.Channel) (*StatusChangedPublisher, error) {
	err := ch.ExchangeDeclare(
		StatusChangedExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return NewStatusChangedPublisher(ch), nil
}
