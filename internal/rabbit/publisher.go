package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"print-order-service/internal/model"
)

// Publisher queues notifications instead of sending them inline. A
// NotificationConsumer performs the actual delivery.
type Publisher struct {
	ch  Channel
	now func() time.Time
}

func NewPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch, now: time.Now}
}

func (p *Publisher) SendOrderConfirmation(ctx context.Context, to model.Recipient, order *model.Order) error {
	return p.publish(ctx, NotificationMessage{
		Kind:        KindOrderConfirmation,
		To:          to,
		Order:       order,
		OrderNumber: order.OrderNumber,
	})
}

func (p *Publisher) SendStatusUpdate(ctx context.Context, to model.Recipient, orderNumber string, status model.OrderStatus, note string) error {
	return p.publish(ctx, NotificationMessage{
		Kind:        KindStatusUpdate,
		To:          to,
		OrderNumber: orderNumber,
		Status:      status,
		Note:        note,
	})
}

func (p *Publisher) publish(ctx context.Context, msg NotificationMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = p.now().UTC()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, NotificationsExchange, "", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    msg.ID,
		Type:         msg.Kind,
		Timestamp:    msg.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Kind, err)
	}
	return nil
}
