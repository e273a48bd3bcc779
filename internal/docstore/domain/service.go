package domain

import (
	"context"
	"errors"
)

// Store is the document store the reconciling list stores sit on top of.
// Every successful write republishes a full snapshot of the collection.
type Store interface {
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, serverID string, fields map[string]any) error
	Delete(ctx context.Context, collection, serverID string) error
	List(ctx context.Context, collection string, limit int) ([]Document, error)

	// Subscribe delivers the current snapshot as the first event, then a
	// replacement snapshot after every write to the collection. The cancel
	// func releases the subscription.
	Subscribe(ctx context.Context, collection string, limit int) (<-chan Snapshot, func(), error)

	// CountWhere counts documents matching the predicate. Collections are
	// small (tens to low hundreds), so it counts in memory over List.
	CountWhere(ctx context.Context, collection string, pred func(Document) bool) (int, error)
}

var (
	ErrInvalidCollection = errors.New("invalid_collection")
	ErrInvalidDocumentID = errors.New("invalid_document_id")
	ErrNotFound          = errors.New("not_found")
)
