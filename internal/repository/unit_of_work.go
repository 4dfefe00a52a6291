package repository

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork runs a function against repositories bound to a single
// database transaction. Either every write inside the function commits,
// or the whole group rolls back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, users UserRepository, products ProductRepository) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a GORM-backed unit of work.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, users UserRepository, products ProductRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewUserRepository(tx), NewProductRepository(tx))
	})
}
