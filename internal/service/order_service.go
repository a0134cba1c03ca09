package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/metrics"
	"print-order-service/internal/model"
	"print-order-service/internal/repository"
)

const (
	DefaultPageSize  = 20
	DefaultStatsDays = 30
	recentOrderCount = 5
)

// CartFiller receives reordered items.
type CartFiller interface {
	AddMany(ctx context.Context, userID string, lines []model.CartLine) (int, error)
}

type OrderService struct {
	repo    OrderRepository
	cart    CartFiller
	notify  dispatcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOrderService(repo OrderRepository, cart CartFiller, notifier Notifier, m *metrics.Metrics) *OrderService {
	return &OrderService{
		repo:    repo,
		cart:    cart,
		notify:  dispatcher{notifier: notifier, metrics: m},
		metrics: m,
		now:     time.Now,
	}
}

// UpdateStatus sets the order's status and appends a history entry, even
// when the status is unchanged. The buyer is notified in the background.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, note string) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	rec := model.StatusRecord{
		Status:    status,
		Timestamp: s.now().UTC(),
		Note:      strings.TrimSpace(note),
	}
	order, err := s.repo.AppendStatus(ctx, orderID, rec)
	if err != nil {
		return nil, err
	}
	s.metrics.StatusUpdated(string(status))

	logger := logging.FromContext(ctx).With(
		zap.String("order_id", orderID),
		zap.String("order_number", order.OrderNumber),
	)
	logger.Info("order status updated", zap.String("status", string(status)))

	to := order.CustomerInfo.Recipient()
	number := order.OrderNumber
	s.notify.send(logging.ContextWithLogger(ctx, logger), "status_update", func(ctx context.Context, n Notifier) error {
		return n.SendStatusUpdate(ctx, to, number, status, rec.Note)
	})
	return order, nil
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

type OrderPage struct {
	Orders     []*model.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

func (s *OrderService) ListOrders(ctx context.Context, q repository.OrderQuery) (*OrderPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}

	orders, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	pages := int(math.Ceil(float64(total) / float64(q.Limit)))
	return &OrderPage{
		Orders: orders,
		Pagination: Pagination{
			CurrentPage: q.Page,
			TotalPages:  pages,
			TotalOrders: total,
			HasNextPage: q.Page < pages,
			HasPrevPage: q.Page > 1,
			Limit:       q.Limit,
		},
	}, nil
}

// ExportOrders returns every order matching q, newest first.
func (s *OrderService) ExportOrders(ctx context.Context, q repository.OrderQuery) ([]*model.Order, error) {
	q.Page, q.Limit = 0, 0
	q.SortBy, q.SortDesc = "createdAt", true
	orders, _, err := s.repo.List(ctx, q)
	return orders, err
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.FindByID(ctx, orderID)
}

func (s *OrderService) AddAdminNote(ctx context.Context, orderID, note string) (*model.Order, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrEmptyNote
	}
	return s.repo.SetAdminNotes(ctx, orderID, note)
}

func (s *OrderService) UpdateShipping(ctx context.Context, orderID string, upd model.ShippingUpdate) (*model.Order, error) {
	return s.repo.UpdateShipping(ctx, orderID, upd)
}

type RecentOrder struct {
	ID          string            `json:"id"`
	OrderNumber string            `json:"orderNumber"`
	Status      model.OrderStatus `json:"status"`
	Total       float64           `json:"total"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type OrderStats struct {
	Period            int            `json:"period"`
	TotalOrders       int            `json:"totalOrders"`
	TotalRevenue      float64        `json:"totalRevenue"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	StatusCounts      map[string]int `json:"statusCounts"`
	RecentOrders      []RecentOrder  `json:"recentOrders"`
}

// Stats summarises orders created in the last periodDays days.
func (s *OrderService) Stats(ctx context.Context, periodDays int) (*OrderStats, error) {
	if periodDays <= 0 {
		periodDays = DefaultStatsDays
	}
	since := s.now().AddDate(0, 0, -periodDays)

	orders, err := s.repo.FindSince(ctx, since)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.Recent(ctx, recentOrderCount)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	counts := make(map[string]int)
	for _, o := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		counts[string(o.Status)]++
	}
	avg := decimal.Zero
	if len(orders) > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(len(orders))))
	}

	stats := &OrderStats{
		Period:            periodDays,
		TotalOrders:       len(orders),
		TotalRevenue:      revenue.Round(2).InexactFloat64(),
		AverageOrderValue: avg.Round(2).InexactFloat64(),
		StatusCounts:      counts,
		RecentOrders:      make([]RecentOrder, 0, len(recent)),
	}
	for _, o := range recent {
		stats.RecentOrders = append(stats.RecentOrders, RecentOrder{
			ID:          o.ID.Hex(),
			OrderNumber: o.OrderNumber,
			Status:      o.Status,
			Total:       o.Total,
			CreatedAt:   o.CreatedAt,
		})
	}
	return stats, nil
}

// UserOrders lists the buyer's own orders without admin notes.
func (s *OrderService) UserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		out[i] = o.ForOwner()
	}
	return out, nil
}

// UserOrder returns one of the buyer's orders. Orders owned by someone else
// are reported as not found.
func (s *OrderService) UserOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	o, err := s.repo.FindForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	owned := o.ForOwner()
	return &owned, nil
}

// Reorder copies the items of one of the buyer's orders back into their cart.
func (s *OrderService) Reorder(ctx context.Context, userID, orderID string) (int, error) {
	o, err := s.UserOrder(ctx, userID, orderID)
	if err != nil {
		return 0, err
	}
	lines := make([]model.CartLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = model.LineFromItem(userID, item)
	}
	n, err := s.cart.AddMany(ctx, userID, lines)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("order items copied to cart",
		zap.String("user_id", userID),
		zap.String("order_number", o.OrderNumber),
		zap.Int("lines", n),
	)
	return n, nil
}
