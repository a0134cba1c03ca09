// setup.go
package rabbit

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
)

const (
	NotificationsExchange = "order_notifications"
	NotificationsQueue    = "print_order_service_notifications"
)

// Channel is the subset of *amqp091.Channel used here.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// DeclareExchange declares the durable fanout exchange notifications are
// published to.
func DeclareExchange(ch Channel) error {
	if err := ch.ExchangeDeclare(NotificationsExchange, amqp091.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", NotificationsExchange, err)
	}
	return nil
}

// SetupConsumers binds the service queue to the notifications exchange and
// hands every delivery to the consumer until ctx ends or the channel closes.
func SetupConsumers(ctx context.Context, ch Channel, consumer *NotificationConsumer) error {
	logger := logging.FromContext(ctx)

	if err := DeclareExchange(ch); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// fanout ignores the routing key
	if err := ch.QueueBind(q.Name, "", NotificationsExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logger.Warn("notification deliveries closed")
					return
				}
				consumer.Deliver(ctx, d)
			}
		}
	}()

	logger.Info("subscribed to notifications exchange",
		zap.String("exchange", NotificationsExchange),
		zap.String("queue", q.Name),
	)
	return nil
}
