package mocks

import (
	"context"
	"time"

	"print-order-service/internal/model"
	"print-order-service/internal/payment"
	"print-order-service/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockCartRepository struct {
	mock.Mock
}

type MockProductRepository struct {
	mock.Mock
}

type MockCartCache struct {
	mock.Mock
}

type MockGateway struct {
	mock.Mock
}

type MockNumberSource struct {
	mock.Mock
}

type MockNotifier struct {
	mock.Mock
}

type MockCartClearer struct {
	mock.Mock
}

type MockCartFiller struct {
	mock.Mock
}

type MockFileRemover struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *model.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindForUser(ctx context.Context, id, userID string) (*model.Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) AppendStatus(ctx context.Context, id string, rec model.StatusRecord) (*model.Order, error) {
	args := m.Called(ctx, id, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) SetAdminNotes(ctx context.Context, id, note string) (*model.Order, error) {
	args := m.Called(ctx, id, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateShipping(ctx context.Context, id string, upd model.ShippingUpdate) (*model.Order, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, q repository.OrderQuery) ([]*model.Order, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindSince(ctx context.Context, since time.Time) ([]*model.Order, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) Recent(ctx context.Context, n int64) ([]*model.Order, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockCartRepository) Insert(ctx context.Context, line *model.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCartRepository) InsertMany(ctx context.Context, lines []*model.CartLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID string) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) FindByID(ctx context.Context, id string) (*model.CartLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartRepository) FindByIDs(ctx context.Context, ids []string) ([]model.CartLine, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) DeleteForUser(ctx context.Context, userID string, ids []string) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.ApparelProduct) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]model.ApparelProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ApparelProduct), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*model.ApparelProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApparelProduct), args.Error(1)
}

func (m *MockProductRepository) Replace(ctx context.Context, id string, p *model.ApparelProduct) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartCache) Get(ctx context.Context, userID string) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartCache) Version(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartCache) Set(ctx context.Context, userID string, version int64, lines []model.CartLine) error {
	args := m.Called(ctx, userID, version, lines)
	return args.Error(0)
}

func (m *MockCartCache) Invalidate(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockGateway) AuthorizeAndCapture(ctx context.Context, card payment.CardInfo, amount float64) (payment.Outcome, error) {
	args := m.Called(ctx, card, amount)
	return args.Get(0).(payment.Outcome), args.Error(1)
}

func (m *MockGateway) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockNumberSource) Next(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockNotifier) SendOrderConfirmation(ctx context.Context, to model.Recipient, order *model.Order) error {
	args := m.Called(ctx, to, order)
	return args.Error(0)
}

func (m *MockNotifier) SendStatusUpdate(ctx context.Context, to model.Recipient, orderNumber string, status model.OrderStatus, note string) error {
	args := m.Called(ctx, to, orderNumber, status, note)
	return args.Error(0)
}

func (m *MockCartClearer) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartFiller) AddMany(ctx context.Context, userID string, lines []model.CartLine) (int, error) {
	args := m.Called(ctx, userID, lines)
	return args.Int(0), args.Error(1)
}

func (m *MockFileRemover) RemoveDir(subdir ...string) error {
	args := m.Called(subdir)
	return args.Error(0)
}
