package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace/internal/model"
)

// ProductQuery carries the optional filters and pagination for a catalog
// search. Nil price bounds mean the predicate is not applied.
type ProductQuery struct {
	Name     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	PageSize int
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindByCreatorID returns every product owned by the user, including
	// soft-deleted rows. The activation cascade depends on seeing them.
	FindByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error)
	// FindActiveByCreatorID returns the owner's products with the
	// soft-delete flag clear; this is the normal listing path.
	FindActiveByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error)
	Search(ctx context.Context, q ProductQuery) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository builds a GORM-backed repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("creator_user_id = ?", creatorID).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindActiveByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("creator_user_id = ? AND is_deleted = ?", creatorID, false).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Search applies the supplied filters over non-deleted products with a
// stable order. Pagination values are assumed to be normalized by the
// caller.
func (r *productRepository) Search(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_deleted = ?", false)

	if q.Name != "" {
		tx = tx.Where("name LIKE ?", "%"+q.Name+"%")
	}
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	var products []model.Product
	err := tx.Order("created_at, id").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
