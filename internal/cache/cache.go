package cache

import (
	"context"
	"errors"

	"print-order-service/internal/model"
)

// CartCache holds a read copy of each user's cart. Every write to the cart
// calls Invalidate, which bumps the user's version; Set only stores lines
// read under the version it is given, so a slow reader cannot put back a
// cart that was changed after it looked.
type CartCache interface {
	Get(ctx context.Context, userID string) ([]model.CartLine, error)
	Version(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, version int64, lines []model.CartLine) error
	Invalidate(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrStale     = errors.New("cart changed since it was read")
)
