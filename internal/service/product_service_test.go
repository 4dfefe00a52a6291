package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/repository"
)

func TestProductService_CreateProduct(t *testing.T) {
	creatorID := uuid.New()

	tests := []struct {
		name    string
		price   decimal.Decimal
		wantErr error
	}{
		{name: "accepts a positive price", price: decimal.NewFromFloat(19.99)},
		{name: "rejects a zero price", price: decimal.Zero, wantErr: apperrors.ErrInvalidPrice},
		{name: "rejects a negative price", price: decimal.NewFromInt(-5), wantErr: apperrors.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepository)
			svc := NewProductService(products, nil)

			if tt.wantErr == nil {
				products.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
					return p.CreatorUserID == creatorID && p.Price.Equal(tt.price) && !p.IsDeleted
				})).Return(nil)
			}

			product, err := svc.CreateProduct(context.Background(), creatorID, "Desk", "", tt.price, true)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, product)
				products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				products.AssertExpectations(t)
			}
		})
	}
}

func TestProductService_DeleteProduct(t *testing.T) {
	productID := uuid.New()

	t.Run("sets the soft-delete flag", func(t *testing.T) {
		products := new(MockProductRepository)
		svc := NewProductService(products, nil)

		products.On("FindByID", mock.Anything, productID).Return(&model.Product{ID: productID}, nil)
		products.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
			return p.ID == productID && p.IsDeleted
		})).Return(nil)

		err := svc.DeleteProduct(context.Background(), productID)

		assert.NoError(t, err)
		products.AssertExpectations(t)
	})

	t.Run("fails with not found for unknown product", func(t *testing.T) {
		products := new(MockProductRepository)
		svc := NewProductService(products, nil)

		products.On("FindByID", mock.Anything, productID).Return(nil, gorm.ErrRecordNotFound)

		err := svc.DeleteProduct(context.Background(), productID)

		assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	})
}

func TestProductService_Search(t *testing.T) {
	min := decimal.NewFromInt(50)
	max := decimal.NewFromInt(100)

	tests := []struct {
		name     string
		query    repository.ProductQuery
		expected repository.ProductQuery
	}{
		{
			name:     "passes through a normal query",
			query:    repository.ProductQuery{Name: "desk", MinPrice: &min, MaxPrice: &max, Page: 2, PageSize: 25},
			expected: repository.ProductQuery{Name: "desk", MinPrice: &min, MaxPrice: &max, Page: 2, PageSize: 25},
		},
		{
			name:     "clamps zero page and page size to defaults",
			query:    repository.ProductQuery{Page: 0, PageSize: 0},
			expected: repository.ProductQuery{Page: 1, PageSize: 10},
		},
		{
			name:     "clamps negative pagination to defaults",
			query:    repository.ProductQuery{Page: -3, PageSize: -1},
			expected: repository.ProductQuery{Page: 1, PageSize: 10},
		},
		{
			name:     "caps an oversized page size",
			query:    repository.ProductQuery{Page: 1, PageSize: 5000},
			expected: repository.ProductQuery{Page: 1, PageSize: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepository)
			svc := NewProductService(products, nil)

			products.On("Search", mock.Anything, tt.expected).Return([]model.Product{}, nil)

			_, err := svc.Search(context.Background(), tt.query)

			assert.NoError(t, err)
			products.AssertExpectations(t)
		})
	}
}

func TestProductService_ListByCreator(t *testing.T) {
	creatorID := uuid.New()
	products := new(MockProductRepository)
	svc := NewProductService(products, nil)

	visible := []model.Product{{ID: uuid.New(), CreatorUserID: creatorID}}
	products.On("FindActiveByCreatorID", mock.Anything, creatorID).Return(visible, nil)

	got, err := svc.ListByCreator(context.Background(), creatorID)

	assert.NoError(t, err)
	assert.Equal(t, visible, got)
	products.AssertNotCalled(t, "FindByCreatorID", mock.Anything, mock.Anything)
}
