package domain

import (
	"context"
	"errors"
)

type Service interface {
	Start(ctx context.Context) error
	Stop()

	List(ctx context.Context, q Query) ListResult
	Create(ctx context.Context, req SaveRequest) (*PurchaseOrder, error)
	Update(ctx context.Context, poNumber string, req SaveRequest) error
	UpdateStatus(ctx context.Context, poNumber, status string) error
	Delete(ctx context.Context, poNumber string, confirmed bool) error
	ExportCSV(ctx context.Context, q Query) string
	Watch() (<-chan []PurchaseOrder, func())
}

type Query struct {
	Search string
	Status string
}

type ListResult struct {
	Records    []PurchaseOrder `json:"records"`
	Mode       string          `json:"mode"`
	Loading    bool            `json:"loading"`
	Pending    int             `json:"pending"`
	Ordered    int             `json:"ordered"`
	Delivered  int             `json:"delivered"`
	TotalSpend float64         `json:"total_spend"`
}

// SaveRequest carries the order form for both create and edit.
type SaveRequest struct {
	PONumber     string   `json:"poNumber"`
	ItemName     string   `json:"itemName"`
	Category     string   `json:"category"`
	Supplier     string   `json:"supplier"`
	Quantity     *int     `json:"quantity"`
	Unit         string   `json:"unit"`
	UnitCost     *float64 `json:"unitCost"`
	Department   string   `json:"department"`
	ExpectedDate string   `json:"expectedDate"`
	Priority     string   `json:"priority"`
	Notes        string   `json:"notes"`
}

var (
	ErrInvalidItemName = errors.New("invalid_item_name")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
)
