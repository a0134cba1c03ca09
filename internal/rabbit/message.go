package rabbit

import (
	"time"

	"print-order-service/internal/model"
)

const (
	KindOrderConfirmation = "order_confirmation"
	KindStatusUpdate      = "status_update"
)

// NotificationMessage is the body published to the notifications exchange.
type NotificationMessage struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	To          model.Recipient   `json:"to"`
	Order       *model.Order      `json:"order,omitempty"`
	OrderNumber string            `json:"orderNumber,omitempty"`
	Status      model.OrderStatus `json:"status,omitempty"`
	Note        string            `json:"note,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}
