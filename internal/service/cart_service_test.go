package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"print-order-service/internal/cache"
	"print-order-service/internal/mocks"
	"print-order-service/internal/model"
	"print-order-service/internal/repository"
)

func TestAddDefaultsTitleAndKind(t *testing.T) {
	repo := new(mocks.MockCartRepository)
	c := new(mocks.MockCartCache)
	svc := NewCartService(repo, c)

	repo.On("Insert", mock.Anything, mock.AnythingOfType("*model.CartLine")).Return(nil)
	c.On("Invalidate", mock.Anything, testUserID).Return(nil)

	line, err := svc.Add(context.Background(), testUserID, model.CartLine{Quantity: 3, Total: 15})
	require.NoError(t, err)

	assert.Equal(t, model.DefaultLineTitle, line.Title)
	assert.Equal(t, model.LineCustomDesign, line.Kind)
	assert.Equal(t, testUserID, line.UserID)
	assert.False(t, line.CreatedAt.IsZero())
	c.AssertExpectations(t)
}

func TestAddInfersApparel(t *testing.T) {
	repo := new(mocks.MockCartRepository)
	svc := NewCartService(repo, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	line, err := svc.Add(context.Background(), testUserID, model.CartLine{
		Title:   "Tee",
		Apparel: &model.ApparelDetails{SizeAndQuantity: map[string]int{"M": 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.LineApparel, line.Kind)
}

func TestAddNormalizesQuantityAndTotal(t *testing.T) {
	tests := []struct {
		name      string
		line      model.CartLine
		wantQty   int
		wantTotal float64
	}{
		{
			name: "apparel sizes override quantity",
			line: model.CartLine{
				Quantity:     1,
				ProductTotal: 30,
				Apparel:      &model.ApparelDetails{SizeAndQuantity: map[string]int{"M": 2, "L": 1}},
			},
			wantQty:   3,
			wantTotal: 30,
		},
		{
			name: "bulk sizes with explicit total",
			line: model.CartLine{
				Total: 96,
				Bulk:  &model.BulkDetails{SizeAndQuantity: map[string]int{"M": 6, "L": 6}},
			},
			wantQty:   12,
			wantTotal: 96,
		},
		{
			name:      "component totals summed",
			line:      model.CartLine{Quantity: 4, ProductTotal: 10.1, ImprintTotal: 2.2, OptionsTotal: 0.3},
			wantQty:   4,
			wantTotal: 12.6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockCartRepository)
			svc := NewCartService(repo, nil)
			repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

			line, err := svc.Add(context.Background(), testUserID, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, line.Quantity)
			assert.Equal(t, tt.wantTotal, line.Total)
		})
	}
}

func TestAddRequiresIdentity(t *testing.T) {
	svc := NewCartService(new(mocks.MockCartRepository), nil)
	_, err := svc.Add(context.Background(), "", model.CartLine{Title: "x"})
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestListServesFromCache(t *testing.T) {
	repo := new(mocks.MockCartRepository)
	c := new(mocks.MockCartCache)
	svc := NewCartService(repo, c)

	cached := []model.CartLine{{Title: "cached", ImageURL: "/uploads/a.png"}}
	c.On("Get", mock.Anything, testUserID).Return(cached, nil)

	lines, err := svc.List(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	lines[0].MapURLs(func(u string) string { return "http://x" + u })
	assert.Equal(t, "/uploads/a.png", cached[0].ImageURL)
	repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestListFallsBackToRepoOnMiss(t *testing.T) {
	repo := new(mocks.MockCartRepository)
	c := new(mocks.MockCartCache)
	svc := NewCartService(repo, c)

	stored := []model.CartLine{{Title: "stored"}}
	c.On("Get", mock.Anything, testUserID).Return(nil, cache.ErrCacheMiss)
	c.On("Version", mock.Anything, testUserID).Return(int64(4), nil)
	c.On("Set", mock.Anything, testUserID, int64(4), stored).Return(nil)
	repo.On("ListByUser", mock.Anything, testUserID).Return(stored, nil)

	lines, err := svc.List(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "stored", lines[0].Title)
	c.AssertExpectations(t)
}

func TestListSkipsFillWhenVersionUnavailable(t *testing.T) {
	repo := new(mocks.MockCartRepository)
	c := new(mocks.MockCartCache)
	svc := NewCartService(repo, c)

	c.On("Get", mock.Anything, testUserID).Return(nil, cache.ErrCacheMiss)
	c.On("Version", mock.Anything, testUserID).Return(int64(0), errors.New("redis down"))
	repo.On("ListByUser", mock.Anything, testUserID).Return([]model.CartLine{{Title: "stored"}}, nil)

	lines, err := svc.List(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// A List that read the store before Clear must not cache what it read.
func TestListAfterClearIsEmptyWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := new(mocks.MockCartRepository)
	svc := NewCartService(repo, cache.NewRedisCartCache(client))
	ctx := context.Background()

	reading := make(chan struct{})
	release := make(chan struct{})
	repo.On("ListByUser", mock.Anything, testUserID).
		Return([]model.CartLine{{Title: "Custom Sticker", Quantity: 3, Total: 15}}, nil).
		Once().
		Run(func(mock.Arguments) {
			close(reading)
			<-release
		})
	repo.On("DeleteByUser", mock.Anything, testUserID).Return(int64(1), nil)
	repo.On("ListByUser", mock.Anything, testUserID).Return([]model.CartLine{}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		lines, err := svc.List(ctx, testUserID)
		assert.NoError(t, err)
		assert.Len(t, lines, 1)
	}()

	<-reading
	require.NoError(t, svc.Clear(ctx, testUserID))
	close(release)
	wg.Wait()

	lines, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRemove(t *testing.T) {
	id := primitive.NewObjectID()
	tests := []struct {
		name    string
		found   *model.CartLine
		findErr error
		wantErr error
	}{
		{name: "own line", found: &model.CartLine{ID: id, UserID: testUserID}},
		{name: "foreign line", found: &model.CartLine{ID: id, UserID: "other"}, wantErr: ErrForbidden},
		{name: "missing line", findErr: repository.ErrNotFound, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockCartRepository)
			svc := NewCartService(repo, nil)
			if tt.found != nil {
				repo.On("FindByID", mock.Anything, id.Hex()).Return(tt.found, nil)
			} else {
				repo.On("FindByID", mock.Anything, id.Hex()).Return(nil, tt.findErr)
			}
			repo.On("DeleteForUser", mock.Anything, testUserID, []string{id.Hex()}).Return(int64(1), nil).Maybe()

			_, err := svc.Remove(context.Background(), testUserID, id.Hex())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "DeleteForUser", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertCalled(t, "DeleteForUser", mock.Anything, testUserID, []string{id.Hex()})
		})
	}
}

func TestRemoveMany(t *testing.T) {
	mine1, mine2, theirs := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	t.Run("deletes owned lines", func(t *testing.T) {
		repo := new(mocks.MockCartRepository)
		svc := NewCartService(repo, nil)
		ids := []string{mine1.Hex(), mine2.Hex(), primitive.NewObjectID().Hex()}
		repo.On("FindByIDs", mock.Anything, ids).Return([]model.CartLine{
			{ID: mine1, UserID: testUserID}, {ID: mine2, UserID: testUserID},
		}, nil)
		repo.On("DeleteForUser", mock.Anything, testUserID, []string{mine1.Hex(), mine2.Hex()}).Return(int64(2), nil)

		removed, err := svc.RemoveMany(context.Background(), testUserID, ids)
		require.NoError(t, err)
		assert.Len(t, removed, 2)
	})

	t.Run("any foreign line forbids", func(t *testing.T) {
		repo := new(mocks.MockCartRepository)
		svc := NewCartService(repo, nil)
		ids := []string{mine1.Hex(), theirs.Hex()}
		repo.On("FindByIDs", mock.Anything, ids).Return([]model.CartLine{
			{ID: mine1, UserID: testUserID}, {ID: theirs, UserID: "other"},
		}, nil)

		_, err := svc.RemoveMany(context.Background(), testUserID, ids)
		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "DeleteForUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("none found", func(t *testing.T) {
		repo := new(mocks.MockCartRepository)
		svc := NewCartService(repo, nil)
		repo.On("FindByIDs", mock.Anything, []string{"x"}).Return([]model.CartLine{}, nil)

		_, err := svc.RemoveMany(context.Background(), testUserID, []string{"x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty selection", func(t *testing.T) {
		svc := NewCartService(new(mocks.MockCartRepository), nil)
		_, err := svc.RemoveMany(context.Background(), testUserID, nil)
		assert.ErrorIs(t, err, ErrNothingSelected)
	})
}

func TestClearInvalidatesEvenWhenCacheFails(t *testing.T) {
	repo := new(mocks.MockCartRepository)
	c := new(mocks.MockCartCache)
	svc := NewCartService(repo, c)

	repo.On("DeleteByUser", mock.Anything, testUserID).Return(int64(3), nil)
	c.On("Invalidate", mock.Anything, testUserID).Return(errors.New("redis down"))

	require.NoError(t, svc.Clear(context.Background(), testUserID))
	c.AssertExpectations(t)
}
