package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Collections managed by the console.
const (
	CollectionAssets      = "assets"
	CollectionApprovals   = "approvals"
	CollectionProcurement = "procurement"
)

// Document is one record in a named collection. Fields carry the
// schemaless payload; typed record packages own the field layout.
type Document struct {
	ID         int64             `json:"id" gorm:"primaryKey"`
	Collection string            `json:"collection" gorm:"type:text;not null;index:ix_documents_collection_created,priority:1"`
	Fields     datatypes.JSONMap `json:"fields" gorm:"type:jsonb"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_documents_collection_created,priority:2"`
	UpdatedAt  time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Document) TableName() string { return "documents" }

// Snapshot is one subscription event: the complete collection contents,
// never a diff. Err is set instead of Docs when reading failed.
type Snapshot struct {
	Docs []Document
	Err  error
}
