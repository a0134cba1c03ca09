package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/metrics"
)

const notifyTimeout = 30 * time.Second

// dispatcher runs notifications in the background. Failures are logged and
// counted, never returned.
type dispatcher struct {
	notifier Notifier
	metrics  *metrics.Metrics
}

func (d dispatcher) send(ctx context.Context, kind string, fn func(ctx context.Context, n Notifier) error) {
	if d.notifier == nil {
		return
	}
	logger := logging.FromContext(ctx).With(zap.String("notification", kind))
	ctx = context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				d.metrics.NotificationFailed(kind)
				logger.Error("notification panicked", zap.Any("panic", r))
			}
		}()

		if err := fn(ctx, d.notifier); err != nil {
			d.metrics.NotificationFailed(kind)
			logger.Warn("notification failed", zap.Error(err))
			return
		}
		logger.Debug("notification sent")
	}()
}
