package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/metrics"
	"print-order-service/internal/service"
)

var (
	ErrUnknownKind = errors.New("unknown notification kind")
	ErrMalformed   = errors.New("malformed notification")
)

// NotificationConsumer delivers queued notifications through a Notifier,
// normally the SMTP mailer.
type NotificationConsumer struct {
	sender  service.Notifier
	metrics *metrics.Metrics
}

func NewNotificationConsumer(sender service.Notifier, m *metrics.Metrics) *NotificationConsumer {
	return &NotificationConsumer{sender: sender, metrics: m}
}

// Handle decodes one message body and sends it.
func (c *NotificationConsumer) Handle(ctx context.Context, body []byte) error {
	var msg NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	switch msg.Kind {
	case KindOrderConfirmation:
		if msg.Order == nil {
			return fmt.Errorf("%w: %s without order", ErrMalformed, msg.ID)
		}
		return c.sender.SendOrderConfirmation(ctx, msg.To, msg.Order)
	case KindStatusUpdate:
		return c.sender.SendStatusUpdate(ctx, msg.To, msg.OrderNumber, msg.Status, msg.Note)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
}

// Deliver handles a delivery and settles it. A failed send is requeued once;
// a second failure or an undecodable body is dropped.
func (c *NotificationConsumer) Deliver(ctx context.Context, d amqp091.Delivery) {
	logger := logging.FromContext(ctx).With(
		zap.String("message_id", d.MessageId),
		zap.String("kind", d.Type),
	)

	err := c.Handle(ctx, d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			logger.Warn("ack failed", zap.Error(ackErr))
		}
		return
	}

	requeue := !d.Redelivered && !isPermanent(err)
	if !requeue {
		c.metrics.NotificationFailed(d.Type)
	}
	logger.Warn("notification delivery failed", zap.Error(err), zap.Bool("requeue", requeue))
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		logger.Warn("nack failed", zap.Error(nackErr))
	}
}

func isPermanent(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, ErrUnknownKind) || errors.Is(err, ErrMalformed) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
