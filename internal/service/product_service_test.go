package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"print-order-service/internal/mocks"
	"print-order-service/internal/model"
)

func TestProductCreateRequiresTitle(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	svc := NewProductService(repo, nil)

	err := svc.Create(context.Background(), &model.ApparelProduct{})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUpdateKeepsImage(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	svc := NewProductService(repo, nil)

	repo.On("FindByID", mock.Anything, "p1").Return(&model.ApparelProduct{Title: "Tee", ProductImage: "/uploads/apparel/p1/a.png"}, nil)
	repo.On("Replace", mock.Anything, "p1", mock.AnythingOfType("*model.ApparelProduct")).Return(nil)

	got, err := svc.Update(context.Background(), "p1", &model.ApparelProduct{Title: "Heavy Tee"})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/apparel/p1/a.png", got.ProductImage)
}

func TestProductDeleteRemovesUploads(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	files := new(mocks.MockFileRemover)
	svc := NewProductService(repo, files)

	repo.On("Delete", mock.Anything, "p1").Return(nil)
	files.On("RemoveDir", []string{"apparel", "p1"}).Return(errors.New("permission denied"))

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	files.AssertExpectations(t)
}

func TestProductDeleteNotFoundKeepsFiles(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	files := new(mocks.MockFileRemover)
	svc := NewProductService(repo, files)

	repo.On("Delete", mock.Anything, "p1").Return(ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), "p1"), ErrNotFound)
	files.AssertNotCalled(t, "RemoveDir", mock.Anything)
}
