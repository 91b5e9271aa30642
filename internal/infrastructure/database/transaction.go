package database

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out request-scoped handles and runs functions inside a transaction.
type Transactor interface {
	DB(ctx context.Context) *gorm.DB
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) DB(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

// WithTransaction commits when fn returns nil and rolls back otherwise.
func (t *gormTransactor) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
