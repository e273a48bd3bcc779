package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, db *gorm.DB, collection string, id int64) (*Document, error)
	ListByCollection(ctx context.Context, db *gorm.DB, collection string, limit int) ([]Document, error)
	Update(ctx context.Context, db *gorm.DB, doc *Document) error
	Delete(ctx context.Context, db *gorm.DB, collection string, id int64) error
}
