package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"print-order-service/internal/mocks"
	"print-order-service/internal/model"
	"print-order-service/internal/repository"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newOrderService() (*OrderService, *mocks.MockOrderRepository, *mocks.MockCartFiller, *mocks.MockNotifier) {
	repo := new(mocks.MockOrderRepository)
	cart := new(mocks.MockCartFiller)
	notifier := new(mocks.MockNotifier)
	svc := NewOrderService(repo, cart, notifier, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, cart, notifier
}

func placedOrder() *model.Order {
	return &model.Order{
		ID:           primitive.NewObjectID(),
		UserID:       testUserID,
		OrderNumber:  "ORD250314001",
		Status:       model.StatusOrderPlaced,
		CustomerInfo: model.CustomerInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		StatusHistory: []model.StatusRecord{
			{Status: model.StatusOrderPlaced, Timestamp: fixedNow.Add(-time.Hour)},
		},
		AdminNotes: "fragile",
	}
}

func TestUpdateStatusAppendsAndNotifies(t *testing.T) {
	svc, repo, _, notifier := newOrderService()
	sent := make(chan string, 1)

	updated := placedOrder()
	updated.Status = model.StatusOrderDispatched
	updated.StatusHistory = append(updated.StatusHistory, model.StatusRecord{
		Status: model.StatusOrderDispatched, Timestamp: fixedNow, Note: "left warehouse",
	})

	rec := model.StatusRecord{Status: model.StatusOrderDispatched, Timestamp: fixedNow, Note: "left warehouse"}
	repo.On("AppendStatus", mock.Anything, "abc", rec).Return(updated, nil)
	notifier.On("SendStatusUpdate", mock.Anything, model.Recipient{Email: "ada@example.com", Name: "Ada Lovelace"},
		"ORD250314001", model.StatusOrderDispatched, "left warehouse").
		Return(errors.New("smtp down")).
		Run(func(args mock.Arguments) { sent <- args.String(4) })

	got, err := svc.UpdateStatus(context.Background(), "abc", model.StatusOrderDispatched, " left warehouse ")
	require.NoError(t, err)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, "left warehouse", got.StatusHistory[1].Note)
	assert.Equal(t, model.StatusOrderDispatched, got.Status)

	select {
	case note := <-sent:
		assert.Equal(t, "left warehouse", note)
	case <-time.After(time.Second):
		t.Fatal("status update was not dispatched")
	}
}

func TestUpdateStatusSameStatusTwiceAppendsTwice(t *testing.T) {
	svc, repo, _, notifier := newOrderService()
	notifier.On("SendStatusUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	rec := model.StatusRecord{Status: model.StatusInPrinting, Timestamp: fixedNow}
	repo.On("AppendStatus", mock.Anything, "abc", rec).Return(placedOrder(), nil).Twice()

	_, err := svc.UpdateStatus(context.Background(), "abc", model.StatusInPrinting, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "abc", model.StatusInPrinting, "")
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "AppendStatus", 2)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, repo, _, _ := newOrderService()

	_, err := svc.UpdateStatus(context.Background(), "abc", model.OrderStatus("shipped"), "")

	assert.ErrorIs(t, err, ErrInvalidStatus)
	repo.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, repo, _, notifier := newOrderService()
	repo.On("AppendStatus", mock.Anything, "missing", mock.Anything).Return(nil, repository.ErrNotFound)

	_, err := svc.UpdateStatus(context.Background(), "missing", model.StatusCompleted, "")

	assert.ErrorIs(t, err, ErrNotFound)
	notifier.AssertNotCalled(t, "SendStatusUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListOrdersPagination(t *testing.T) {
	svc, repo, _, _ := newOrderService()
	q := repository.OrderQuery{Page: 2, Limit: 20, Status: model.StatusCompleted}
	repo.On("List", mock.Anything, q).Return([]*model.Order{placedOrder()}, int64(45), nil)

	page, err := svc.ListOrders(context.Background(), repository.OrderQuery{Page: 2, Status: model.StatusCompleted})
	require.NoError(t, err)

	assert.Equal(t, Pagination{
		CurrentPage: 2,
		TotalPages:  3,
		TotalOrders: 45,
		HasNextPage: true,
		HasPrevPage: true,
		Limit:       20,
	}, page.Pagination)
}

func TestAddAdminNoteRequiresText(t *testing.T) {
	svc, repo, _, _ := newOrderService()

	_, err := svc.AddAdminNote(context.Background(), "abc", "   ")
	assert.ErrorIs(t, err, ErrEmptyNote)
	repo.AssertNotCalled(t, "SetAdminNotes", mock.Anything, mock.Anything, mock.Anything)
}

func TestStats(t *testing.T) {
	svc, repo, _, _ := newOrderService()
	a, b, c := placedOrder(), placedOrder(), placedOrder()
	a.Total, b.Total, c.Total = 10.10, 20.20, 30.30
	c.Status = model.StatusCompleted

	repo.On("FindSince", mock.Anything, fixedNow.AddDate(0, 0, -7)).Return([]*model.Order{a, b, c}, nil)
	repo.On("Recent", mock.Anything, int64(5)).Return([]*model.Order{c}, nil)

	stats, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 60.6, stats.TotalRevenue)
	assert.Equal(t, 20.2, stats.AverageOrderValue)
	assert.Equal(t, map[string]int{"order_placed": 2, "completed": 1}, stats.StatusCounts)
	require.Len(t, stats.RecentOrders, 1)
	assert.Equal(t, "ORD250314001", stats.RecentOrders[0].OrderNumber)
}

func TestUserOrdersHideAdminNotes(t *testing.T) {
	svc, repo, _, _ := newOrderService()
	repo.On("FindByUserID", mock.Anything, testUserID).Return([]*model.Order{placedOrder()}, nil)
	repo.On("FindForUser", mock.Anything, "abc", testUserID).Return(placedOrder(), nil)

	list, err := svc.UserOrders(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].AdminNotes)

	one, err := svc.UserOrder(context.Background(), testUserID, "abc")
	require.NoError(t, err)
	assert.Empty(t, one.AdminNotes)
}

func TestReorderCopiesItemsToCart(t *testing.T) {
	svc, repo, cart, _ := newOrderService()
	o := placedOrder()
	o.Items = []model.OrderItem{
		{Title: "Tee", Size: "M", SizeAndQuantity: map[string]int{"M": 2}, Quantity: 2, TotalPrice: 30},
		{Title: "Sticker", Quantity: 10, TotalPrice: 12, ImprintFiles: []string{"/uploads/a.png"}},
	}
	repo.On("FindForUser", mock.Anything, "abc", testUserID).Return(o, nil)
	cart.On("AddMany", mock.Anything, testUserID, mock.MatchedBy(func(lines []model.CartLine) bool {
		return len(lines) == 2 &&
			lines[0].Kind == model.LineApparel && lines[0].Apparel.Size == "M" &&
			lines[1].Kind == model.LineCustomDesign && lines[1].Design.StickerImageURLs[0] == "/uploads/a.png"
	})).Return(2, nil)

	n, err := svc.Reorder(context.Background(), testUserID, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReorderForeignOrderNotFound(t *testing.T) {
	svc, repo, cart, _ := newOrderService()
	repo.On("FindForUser", mock.Anything, "abc", "intruder").Return(nil, repository.ErrNotFound)

	_, err := svc.Reorder(context.Background(), "intruder", "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	cart.AssertNotCalled(t, "AddMany", mock.Anything, mock.Anything, mock.Anything)
}
