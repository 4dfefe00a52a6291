package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace/internal/cache"
	"marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/repository"
)

const (
	productCacheTTL = 5 * time.Minute

	defaultPageSize = 10
	maxPageSize     = 100
)

// ProductService handles catalog operations.
type ProductService interface {
	CreateProduct(ctx context.Context, creatorID uuid.UUID, name, description string, price decimal.Decimal, available bool) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, name, description string, price decimal.Decimal, available bool) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error)
	Search(ctx context.Context, q repository.ProductQuery) ([]model.Product, error)
}

type productService struct {
	products repository.ProductRepository
	cache    *cache.Client
}

// NewProductService builds a ProductService.
func NewProductService(products repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{products: products, cache: cache}
}

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

// CreateProduct adds a catalog item. Price must be strictly positive.
func (s *productService) CreateProduct(ctx context.Context, creatorID uuid.UUID, name, description string, price decimal.Decimal, available bool) (*model.Product, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.ErrInvalidPrice
	}

	product := &model.Product{
		Name:          name,
		Description:   description,
		Price:         price,
		IsAvailable:   available,
		CreatorUserID: creatorID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// GetProduct retrieves a non-deleted product by ID with caching.
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var cached model.Product
	if s.cache.GetJSON(ctx, productCacheKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}

	s.cache.SetJSON(ctx, productCacheKey(id), product, productCacheTTL)
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, name, description string, price decimal.Decimal, available bool) (*model.Product, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.ErrInvalidPrice
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}

	product.Name = name
	product.Description = description
	product.Price = price
	product.IsAvailable = available
	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	_ = s.cache.Delete(ctx, productCacheKey(id))
	return product, nil
}

// DeleteProduct sets the soft-delete flag; the row stays in storage.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrProductNotFound
		}
		return err
	}

	product.IsDeleted = true
	if err := s.products.Update(ctx, product); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	_ = s.cache.Delete(ctx, productCacheKey(id))
	return nil
}

// ListByCreator returns the owner's products, excluding soft-deleted rows.
func (s *productService) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error) {
	return s.products.FindActiveByCreatorID(ctx, creatorID)
}

// Search normalizes pagination and delegates to the repository. Page and
// pageSize at or below zero clamp to 1 and the default size; oversized
// pages clamp to maxPageSize.
func (s *productService) Search(ctx context.Context, q repository.ProductQuery) ([]model.Product, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return s.products.Search(ctx, q)
}
