package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/model"
)

// FileRemover deletes an uploaded asset directory.
type FileRemover interface {
	RemoveDir(subdir ...string) error
}

const productUploadDir = "apparel"

type ProductService struct {
	repo  ProductRepository
	files FileRemover
}

func NewProductService(repo ProductRepository, files FileRemover) *ProductService {
	return &ProductService{repo: repo, files: files}
}

// UploadDir returns the upload subdirectory for a product's assets.
func UploadDir(productID string) []string {
	return []string{productUploadDir, productID}
}

func (s *ProductService) Create(ctx context.Context, p *model.ApparelProduct) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidProduct
	}
	return s.repo.Create(ctx, p)
}

func (s *ProductService) List(ctx context.Context) ([]model.ApparelProduct, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.ApparelProduct, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces the product. An empty ProductImage keeps the stored one.
func (s *ProductService) Update(ctx context.Context, id string, p *model.ApparelProduct) (*model.ApparelProduct, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, ErrInvalidProduct
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ProductImage == "" {
		p.ProductImage = current.ProductImage
	}
	if err := s.repo.Replace(ctx, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the product and then its uploaded files. A failure to
// remove the files is logged only.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.files == nil {
		return nil
	}
	if err := s.files.RemoveDir(UploadDir(id)...); err != nil {
		logging.FromContext(ctx).Warn("product upload cleanup failed", zap.String("product_id", id), zap.Error(err))
	}
	return nil
}
