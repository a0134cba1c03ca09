package service

import (
	"context"
	"time"

	"print-order-service/internal/model"
	"print-order-service/internal/repository"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindForUser(ctx context.Context, id, userID string) (*model.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Order, error)
	AppendStatus(ctx context.Context, id string, rec model.StatusRecord) (*model.Order, error)
	SetAdminNotes(ctx context.Context, id, note string) (*model.Order, error)
	UpdateShipping(ctx context.Context, id string, upd model.ShippingUpdate) (*model.Order, error)
	List(ctx context.Context, q repository.OrderQuery) ([]*model.Order, int64, error)
	FindSince(ctx context.Context, since time.Time) ([]*model.Order, error)
	Recent(ctx context.Context, n int64) ([]*model.Order, error)
}

type CartRepository interface {
	Insert(ctx context.Context, line *model.CartLine) error
	InsertMany(ctx context.Context, lines []*model.CartLine) error
	ListByUser(ctx context.Context, userID string) ([]model.CartLine, error)
	FindByID(ctx context.Context, id string) (*model.CartLine, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.CartLine, error)
	DeleteForUser(ctx context.Context, userID string, ids []string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.ApparelProduct) error
	FindAll(ctx context.Context) ([]model.ApparelProduct, error)
	FindByID(ctx context.Context, id string) (*model.ApparelProduct, error)
	Replace(ctx context.Context, id string, p *model.ApparelProduct) error
	Delete(ctx context.Context, id string) error
}

// NumberSource issues order numbers.
type NumberSource interface {
	Next(ctx context.Context) (string, error)
}

// Notifier delivers buyer-facing messages. Callers treat every error as a
// logged loss.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, to model.Recipient, order *model.Order) error
	SendStatusUpdate(ctx context.Context, to model.Recipient, orderNumber string, status model.OrderStatus, note string) error
}
