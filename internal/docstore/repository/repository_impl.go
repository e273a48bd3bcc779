package repository

import (
	"context"

	"github.com/tracesphere/campusasset/internal/docstore/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO documents (id, collection, fields, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ID,
		doc.Collection,
		doc.Fields,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, collection string, id int64) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).Raw(
		`SELECT id, collection, fields, created_at, updated_at
		 FROM documents WHERE collection = ? AND id = ?`,
		collection,
		id,
	).Scan(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.ID == 0 {
		return nil, nil
	}
	return &doc, nil
}

func (r *repo) ListByCollection(ctx context.Context, db *gorm.DB, collection string, limit int) ([]domain.Document, error) {
	var items []domain.Document
	stmt := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("collection = ?", collection).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	if doc == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE documents
		 SET fields = ?, updated_at = ?
		 WHERE collection = ? AND id = ?`,
		doc.Fields,
		doc.UpdatedAt,
		doc.Collection,
		doc.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, collection string, id int64) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection,
		id,
	).Error
}
